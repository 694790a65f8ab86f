// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrTimeout is matched by every error a TimeoutGuard reports on expiry.
var ErrTimeout = errors.New("execution timed out")

// TimeoutError reports that a guarded operation ran past its deadline.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execution timed out after %s", e.After)
}

// Unwrap lets errors.Is(err, ErrTimeout) match.
func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// =============================================================================
// TIMEOUT GUARD
// =============================================================================

// TimeoutGuard limits how long a unit of work may run.
//
// Run arms a timer, calls the work with a derived context and disarms the
// timer on return, whether the work succeeded, failed or panicked. When the
// timer fires first, the context is cancelled with a *TimeoutError as its
// cause and every OnExpire hook runs, so work blocked outside the context
// (a child process, a read) can be interrupted too.
//
// A guard with a non-positive duration is a no-op and runs the work directly.
type TimeoutGuard struct {
	d time.Duration

	mu       sync.Mutex
	onExpire []func()
}

// NewTimeoutGuard creates a guard with deadline d.
func NewTimeoutGuard(d time.Duration) *TimeoutGuard {
	return &TimeoutGuard{d: d}
}

// Duration returns the configured deadline.
func (g *TimeoutGuard) Duration() time.Duration {
	return g.d
}

// Enabled reports whether the guard enforces a deadline.
func (g *TimeoutGuard) Enabled() bool {
	return g.d > 0
}

// OnExpire registers fn to run when the deadline passes.
func (g *TimeoutGuard) OnExpire(fn func()) {
	g.mu.Lock()
	g.onExpire = append(g.onExpire, fn)
	g.mu.Unlock()
}

// Run executes fn under the deadline. It returns a *TimeoutError when the
// deadline passed before fn returned, otherwise fn's own error.
func (g *TimeoutGuard) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if !g.Enabled() {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	expired := &TimeoutError{After: g.d}
	timer := time.AfterFunc(g.d, func() {
		cancel(expired)
		g.mu.Lock()
		hooks := append([]func(){}, g.onExpire...)
		g.mu.Unlock()
		for _, hook := range hooks {
			hook()
		}
	})
	defer timer.Stop()

	err := fn(ctx)
	if !timer.Stop() {
		// Fired, or firing: the work did not finish in time.
		return expired
	}
	return err
}
