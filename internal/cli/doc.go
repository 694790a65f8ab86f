// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the interactive code-genie-cli session.
//
// The Orchestrator is a small state machine. It opens the session by sending
// the generated system prompt, then loops: read a request, send it, extract
// the fenced code from the reply, ask whether to run it, run it, and ask
// whether to send the output back. Input comes from a liner-backed
// LineReader; replies are rendered with glamour and scripts are previewed
// with chroma highlighting.
//
// # Key Types
//
//   - Orchestrator: the conversation loop and its States
//   - Prompter, LineReader: line input, yes/no questions, secret input
//   - Runner, ExecutorRunner: script execution with live configuration
//   - Renderer: styled or plain session output
//   - DebugInspector: opt-in view of traffic in --debug mode
//   - FatalError: errors that end the process with a non-zero status
//
// # Usage
//
//	orch := cli.NewOrchestrator(cli.Options{
//		Completer:    client,
//		Runner:       cli.ExecutorRunner{Logger: logger},
//		Prompter:     reader,
//		SystemPrompt: cli.BuildSystemPrompt(cli.CollectSystemInfo(ctx, "python3")),
//	})
//	os.Exit(cli.ExitCode(orch.Run(ctx)))
package cli
