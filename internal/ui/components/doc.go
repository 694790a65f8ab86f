// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the terminal widgets of the REPL.
//
// # Key Types
//
//   - Spinner: background progress indicator driven by an atomic flag
//   - CodePreview: bordered, line-numbered and highlighted script preview
package components
