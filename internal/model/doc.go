// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Role: Message role enumeration (system, user, assistant)
//   - Message: Role and content as sent to the completion API
//   - Turn: A stored message plus the tokens it occupies in the budget
//
// # Usage
//
//	turn := model.NewTurn(model.RoleUser, "list my files", 12)
//	msg := turn.Message() // cost stripped for transmission
package model
