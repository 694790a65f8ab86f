// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud talks to an OpenAI-compatible chat completion API.
//
// Client wraps github.com/sashabaranov/go-openai. Each Send builds the
// outbound message list from a history.BoundedHistory, paces the request
// with a token bucket, and appends the new message and the reply to the
// history with their token costs. API failures are mapped to sentinel
// errors; none are retried except an opt-in retry of a truncated reply.
//
// # Key Types
//
//   - Client: completion client bound to one conversation history
//   - Reply: trimmed reply text, finish reason and token usage
//   - CompletionError: API failure without a dedicated sentinel
//   - Inspector: debug hook around each request
//
// # Usage
//
//	h := history.New(2048)
//	client, err := cloud.NewClient(apiKey, "", h, cloud.DefaultConfig())
//	reply, err := client.Send(ctx, systemPrompt, model.RoleSystem)
//
// # Security
//
// API keys are never logged. Use Fingerprint for log correlation.
package cloud
