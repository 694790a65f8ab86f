// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package output

import (
	"io"
	"strings"

	"github.com/Shardj/code-genie-cli/internal/util"
)

// DefaultMaxSize is the number of bytes retained when no size is configured.
const DefaultMaxSize = 1000

// Buffer is a bounded sink that retains only the most recent output.
type Buffer interface {
	io.Writer
	// String returns the retained output, oldest first.
	String() string
	// Len returns the number of retained bytes.
	Len() int
}

// Capture modes accepted by New.
const (
	// ModeLines keeps whole lines. It is the default.
	ModeLines = "lines"
	// ModeBytes keeps the exact byte tail, which may start mid-line.
	ModeBytes = "bytes"
)

// New returns the buffer for mode, holding at most max bytes. An unknown
// mode falls back to ModeLines.
func New(mode string, max int) Buffer {
	if mode == ModeBytes {
		return NewTailBuffer(max)
	}
	return NewRingBuffer(max)
}

// =============================================================================
// RING BUFFER (record style)
// =============================================================================

// RingBuffer keeps whole chunks and drops the oldest ones once the summed
// length exceeds the maximum. A single chunk larger than the maximum is
// dropped entirely, so callers that need a tail of every record should clamp
// chunks before writing them.
type RingBuffer struct {
	max    int
	size   int
	chunks util.Deque[string]
}

// NewRingBuffer creates a chunk ring holding at most max bytes.
func NewRingBuffer(max int) *RingBuffer {
	if max <= 0 {
		max = DefaultMaxSize
	}
	return &RingBuffer{max: max}
}

// Write appends p as one chunk. It never fails.
func (r *RingBuffer) Write(p []byte) (int, error) {
	r.WriteString(string(p))
	return len(p), nil
}

// WriteString appends s as one chunk.
func (r *RingBuffer) WriteString(s string) {
	if s == "" {
		return
	}
	r.chunks.PushBack(s)
	r.size += len(s)
	for r.size > r.max {
		old, ok := r.chunks.PopFront()
		if !ok {
			break
		}
		r.size -= len(old)
	}
}

// String concatenates the retained chunks in order.
func (r *RingBuffer) String() string {
	var sb strings.Builder
	sb.Grow(r.size)
	r.chunks.Each(func(_ int, c string) {
		sb.WriteString(c)
	})
	return sb.String()
}

// Len returns the number of retained bytes.
func (r *RingBuffer) Len() int {
	return r.size
}

// Chunks returns the number of retained chunks.
func (r *RingBuffer) Chunks() int {
	return r.chunks.Len()
}

// Max returns the byte bound.
func (r *RingBuffer) Max() int {
	return r.max
}

// =============================================================================
// TAIL BUFFER (byte style)
// =============================================================================

// TailBuffer is a single growing byte buffer trimmed from the front after
// each write. Trimming lands on a UTF-8 rune boundary, so it may retain a
// few bytes fewer than the maximum.
type TailBuffer struct {
	max int
	buf []byte
}

// NewTailBuffer creates a byte buffer holding at most max bytes.
func NewTailBuffer(max int) *TailBuffer {
	if max <= 0 {
		max = DefaultMaxSize
	}
	return &TailBuffer{max: max}
}

// Write appends p and trims the front. It never fails.
func (t *TailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		kept := util.TrimToValidUTF8Suffix(t.buf[over:])
		// Compact so the backing array does not grow without bound.
		t.buf = append(t.buf[:0], kept...)
	}
	return len(p), nil
}

// String returns the retained bytes as text.
func (t *TailBuffer) String() string {
	return string(t.buf)
}

// Len returns the number of retained bytes.
func (t *TailBuffer) Len() int {
	return len(t.buf)
}

// Max returns the byte bound.
func (t *TailBuffer) Max() int {
	return t.max
}

// ClampTail returns the last max bytes of s, starting on a rune boundary.
func ClampTail(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return string(util.TrimToValidUTF8Suffix([]byte(s[len(s)-max:])))
}
