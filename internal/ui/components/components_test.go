// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer guards a bytes.Buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_StartStop(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinner(out)

	s.Start("Thinking")
	assert.True(t, s.Active())
	time.Sleep(250 * time.Millisecond)
	s.Stop()

	assert.False(t, s.Active())
	got := out.String()
	assert.Contains(t, got, "Thinking")
	assert.True(t, strings.HasSuffix(got, clearLine), "spinner line not cleared")

	// Idempotent both ways.
	s.Stop()
	s.Start("Again")
	s.Start("Again")
	s.Stop()
}

func TestCodePreview_Plain(t *testing.T) {
	p := CodePreview{Code: "print(1)\nprint(2)\n", MaxWidth: 80}
	got := p.Render()

	assert.Contains(t, got, "print(1)")
	assert.Contains(t, got, "print(2)")
	assert.Contains(t, got, "2 ")
}

func TestHighlight(t *testing.T) {
	got := Highlight("def f():\n    return 1", "python")
	assert.Contains(t, got, "\x1b[")
	assert.Contains(t, got, "return")
}
