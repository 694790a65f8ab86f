// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
)

// ErrNoData is returned by ChunkStream.Next when a poll interval elapsed
// without output. The stream is still open.
var ErrNoData = errors.New("no output within poll interval")

// DefaultPollInterval bounds how long Next blocks before returning ErrNoData.
const DefaultPollInterval = 100 * time.Millisecond

const readChunkSize = 4096

// ChunkStream is a cancellable source of output chunks.
//
// Next blocks until a chunk is available, the poll interval elapses
// (ErrNoData), the stream ends (io.EOF) or ctx is done (the context's cause).
// It makes no decision about timeouts or process exit; the caller does.
type ChunkStream interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// =============================================================================
// READER STREAM
// =============================================================================

// readerStream pumps an io.ReadCloser into a channel from one goroutine.
type readerStream struct {
	r    io.ReadCloser
	poll time.Duration

	chunks chan []byte
	stop   chan struct{}
	err    error // set before chunks is closed

	wg        conc.WaitGroup
	closeOnce sync.Once
}

// NewReaderStream starts pumping r. A non-positive poll uses
// DefaultPollInterval.
func NewReaderStream(r io.ReadCloser, poll time.Duration) ChunkStream {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	s := &readerStream{
		r:      r,
		poll:   poll,
		chunks: make(chan []byte, 16),
		stop:   make(chan struct{}),
	}
	s.wg.Go(s.pump)
	return s
}

func (s *readerStream) pump() {
	defer close(s.chunks)

	buf := make([]byte, readChunkSize)
	for {
		n, err := s.r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case s.chunks <- chunk:
			case <-s.stop:
				return
			}
		}
		if err != nil {
			if !isEndOfStream(err) {
				s.err = err
			}
			return
		}
	}
}

// Next implements ChunkStream.
func (s *readerStream) Next(ctx context.Context) ([]byte, error) {
	timer := time.NewTimer(s.poll)
	defer timer.Stop()

	select {
	case chunk, ok := <-s.chunks:
		if !ok {
			if s.err != nil {
				return nil, s.err
			}
			return nil, io.EOF
		}
		return chunk, nil
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	case <-timer.C:
		return nil, ErrNoData
	}
}

// Close stops the pump, closes the reader and waits for the pump to exit.
func (s *readerStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		err = s.r.Close()
		s.wg.Wait()
	})
	return err
}

// isEndOfStream reports whether a read error means the writer side is gone.
func isEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) || isPlatformEndOfStream(err)
}
