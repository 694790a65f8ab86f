// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history keeps the conversation within a token budget.
//
// The first turn is pinned (the system instructions) and the rest form a
// FIFO tail. Snapshot evicts from the front of the tail until the summed
// token cost fits the limit. If only the pinned turn is left and the budget
// is still exceeded, Snapshot returns ErrSystemTurnOverBudget.
//
// # Usage
//
//	h := history.New(2048)
//	_ = h.Add(model.NewTurn(model.RoleSystem, prompt, 0))
//	msgs, err := h.Snapshot()
package history
