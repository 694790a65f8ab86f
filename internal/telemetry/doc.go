// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry tracks token and execution usage for the current session.
//
// # Usage
//
//	usage := telemetry.NewUsageTracker()
//	usage.RecordCompletion(reply.Usage.PromptTokens, reply.Usage.CompletionTokens, reply.Truncated, elapsed)
//	summary := usage.Summary()
package telemetry
