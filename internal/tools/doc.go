// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools runs model-generated scripts as separate processes.
//
// A script is written to a temporary file and started under the configured
// interpreter. On unix the child gets a new session on a pseudo-terminal
// (creack/pty) so interpreters flush line by line; on Windows, or when no pty
// can be opened, output is captured through a pipe. Output is read through a
// ChunkStream, split into lines, optionally echoed live and kept in a bounded
// output.RingBuffer. A TimeoutGuard kills the process group when the run
// exceeds its deadline.
//
// # Key Types
//
//   - Executor: launches scripts and reports a Result
//   - Result: success flag, captured output, exit code, timing
//   - TimeoutGuard: scoped deadline with expiry hooks
//   - ChunkStream: cancellable, polling source of output chunks
//
// # Usage
//
//	exec := tools.NewExecutor(tools.Config{Interpreter: "python3", FileSuffix: ".py"}, logger)
//	res := exec.Execute(ctx, code, tools.Options{
//		Live:          os.Stdout,
//		MaxOutputSize: 1000,
//		Timeout:       60 * time.Second,
//	})
//	if !res.Success {
//		fmt.Println(res.Output)
//	}
package tools
