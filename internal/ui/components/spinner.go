// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/Shardj/code-genie-cli/internal/ui/styles"
)

// =============================================================================
// SPINNER
// =============================================================================

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\x1b[K"

// Spinner animates a one-line progress indicator while the foreground
// goroutine blocks. The animation goroutine reads only the atomic active
// flag to decide when to stop.
type Spinner struct {
	out    io.Writer
	frames spinner.Spinner

	active atomic.Bool
	done   chan struct{}
	mu     sync.Mutex
}

// NewSpinner creates a spinner writing to out with ASCII line frames.
func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{
		out:    out,
		frames: spinner.Line,
	}
}

// Active reports whether the spinner is running.
func (s *Spinner) Active() bool {
	return s.active.Load()
}

// Start begins animating message. Starting a running spinner does nothing.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active.Load() {
		return
	}
	s.active.Store(true)
	s.done = make(chan struct{})
	go s.run(message, s.done)
}

// Stop ends the animation and clears its line. Stopping an idle spinner
// does nothing.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active.Load() {
		return
	}
	s.active.Store(false)
	<-s.done
}

func (s *Spinner) run(message string, done chan struct{}) {
	defer close(done)

	start := time.Now()
	ticker := time.NewTicker(s.frames.FPS)
	defer ticker.Stop()

	for i := 0; s.active.Load(); i++ {
		frame := s.frames.Frames[i%len(s.frames.Frames)]
		fmt.Fprintf(s.out, "%s%s %s %s", clearLine,
			styles.Prompt.Render(frame),
			message,
			styles.Muted.Render(fmt.Sprintf("(%.0fs)", time.Since(start).Seconds())))
		<-ticker.C
	}
	fmt.Fprint(s.out, clearLine)
}
