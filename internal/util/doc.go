// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across code-genie-cli.
//
// # Key Functions
//
//   - Deque: generic double-ended queue used by the history and ring buffers
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - StringWidth, TruncateWidth: terminal cell width via go-runewidth
//   - NormalizeInput: NFC normalisation of user input
//
// # Usage
//
//	var q util.Deque[string]
//	q.PushBack("a")
//	v, ok := q.PopFront()
//
//	err := util.AtomicWriteFile(path, data, 0o600)
package util
