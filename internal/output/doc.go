// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package output provides bounded sinks for captured process output.
//
// Both implementations keep a suffix of everything written and never hold
// more than their configured number of bytes.
//
// # Key Types
//
//   - Buffer: the io.Writer interface shared by both variants
//   - RingBuffer: deque of chunks, drops whole chunks from the front
//   - TailBuffer: one byte slice, trimmed from the front on rune boundaries
//
// # Usage
//
//	buf := output.New(output.ModeLines, 1000)
//	fmt.Fprintln(buf, line)
//	captured := buf.String()
package output
