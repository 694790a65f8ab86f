// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "sync"

// PausableProgress wraps a Progress so that code running inside a request
// (the debug inspector) can take the terminal for a prompt and hand it
// back. A nil inner Progress makes every method a no-op.
type PausableProgress struct {
	inner Progress

	mu      sync.Mutex
	active  bool
	paused  bool
	message string
}

// NewPausableProgress wraps p, which may be nil.
func NewPausableProgress(p Progress) *PausableProgress {
	return &PausableProgress{inner: p}
}

// Start shows message.
func (p *PausableProgress) Start(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.message = message
	p.active = true
	p.paused = false
	if p.inner != nil {
		p.inner.Start(message)
	}
}

// Stop hides the indicator and forgets any pause.
func (p *PausableProgress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	wasShowing := p.active && !p.paused
	p.active = false
	p.paused = false
	if wasShowing && p.inner != nil {
		p.inner.Stop()
	}
}

// Pause hides a running indicator until Resume. It does nothing when the
// indicator is idle or already paused.
func (p *PausableProgress) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active || p.paused {
		return
	}
	p.paused = true
	if p.inner != nil {
		p.inner.Stop()
	}
}

// Resume restarts an indicator hidden by Pause with its last message.
func (p *PausableProgress) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active || !p.paused {
		return
	}
	p.paused = false
	if p.inner != nil {
		p.inner.Start(p.message)
	}
}
