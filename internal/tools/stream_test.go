// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderStream_ChunksThenEOF(t *testing.T) {
	r, w := io.Pipe()
	s := NewReaderStream(r, 20*time.Millisecond)
	defer s.Close()

	go func() {
		_, _ = w.Write([]byte("hello"))
		_ = w.Close()
	}()

	ctx := context.Background()
	chunk, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(chunk))

	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderStream_NoData(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	s := NewReaderStream(r, 20*time.Millisecond)
	defer s.Close()

	_, err := s.Next(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestReaderStream_ContextCancel(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	s := NewReaderStream(r, time.Second)
	defer s.Close()

	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(&TimeoutError{After: time.Second})

	_, err := s.Next(ctx)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestReaderStream_CloseUnblocksPump(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	s := NewReaderStream(r, 20*time.Millisecond)

	done := make(chan struct{})
	go func() {
		_ = s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
}
