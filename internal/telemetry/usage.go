// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// USAGE TRACKER
// =============================================================================

// UsageTracker accumulates token and execution counts for one session.
// Nothing is persisted. Safe for concurrent use.
type UsageTracker struct {
	mu      sync.RWMutex
	summary Summary
	now     func() time.Time
}

// Summary is a point-in-time copy of session usage.
type Summary struct {
	SessionID string    `json:"session_id"`
	StartTime time.Time `json:"start_time"`

	Completions      int           `json:"completions"`
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	Truncations      int           `json:"truncations"`
	Evictions        int           `json:"evictions"`
	APITime          time.Duration `json:"api_time"`

	Executions     int           `json:"executions"`
	ExecSucceeded  int           `json:"exec_succeeded"`
	ExecFailed     int           `json:"exec_failed"`
	ExecTimedOut   int           `json:"exec_timed_out"`
	ExecutionTime  time.Duration `json:"execution_time"`
	FeedbackSent   int           `json:"feedback_sent"`
	SessionElapsed time.Duration `json:"session_elapsed"`
}

// TotalTokens returns prompt plus completion tokens.
func (s Summary) TotalTokens() int {
	return s.PromptTokens + s.CompletionTokens
}

// NewUsageTracker starts a new session with a random ID.
func NewUsageTracker() *UsageTracker {
	return newUsageTracker(time.Now)
}

func newUsageTracker(now func() time.Time) *UsageTracker {
	return &UsageTracker{
		now: now,
		summary: Summary{
			SessionID: uuid.NewString(),
			StartTime: now(),
		},
	}
}

// SessionID returns the session's identifier.
func (u *UsageTracker) SessionID() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.summary.SessionID
}

// RecordCompletion records one completion request.
func (u *UsageTracker) RecordCompletion(promptTokens, completionTokens int, truncated bool, d time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.summary.Completions++
	u.summary.PromptTokens += promptTokens
	u.summary.CompletionTokens += completionTokens
	u.summary.APITime += d
	if truncated {
		u.summary.Truncations++
	}
}

// RecordExecution records one script run.
func (u *UsageTracker) RecordExecution(success, timedOut bool, d time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.summary.Executions++
	u.summary.ExecutionTime += d
	switch {
	case success:
		u.summary.ExecSucceeded++
	case timedOut:
		u.summary.ExecTimedOut++
	default:
		u.summary.ExecFailed++
	}
}

// RecordEviction counts a turn dropped from the conversation budget.
func (u *UsageTracker) RecordEviction() {
	u.mu.Lock()
	u.summary.Evictions++
	u.mu.Unlock()
}

// RecordFeedback counts execution output sent back to the model.
func (u *UsageTracker) RecordFeedback() {
	u.mu.Lock()
	u.summary.FeedbackSent++
	u.mu.Unlock()
}

// Summary returns a copy of the current totals.
func (u *UsageTracker) Summary() Summary {
	u.mu.RLock()
	defer u.mu.RUnlock()

	s := u.summary
	s.SessionElapsed = u.now().Sub(s.StartTime)
	return s
}
