// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"errors"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
)

// process is a started child with its combined output stream.
type process struct {
	cmd    *exec.Cmd
	stream ChunkStream

	exited  chan struct{}
	waitErr error // valid once exited is closed

	wg       conc.WaitGroup
	killOnce sync.Once
}

func newProcess(cmd *exec.Cmd, stream ChunkStream) *process {
	p := &process{
		cmd:    cmd,
		stream: stream,
		exited: make(chan struct{}),
	}
	p.wg.Go(func() {
		p.waitErr = p.cmd.Wait()
		close(p.exited)
	})
	return p
}

// startWithPipe launches cmd with stdout and stderr joined on one pipe.
func startWithPipe(cmd *exec.Cmd, poll time.Duration) (*process, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, err
	}
	// The child holds its own copy; ours would keep the pipe open forever.
	_ = w.Close()

	return newProcess(cmd, NewReaderStream(r, poll)), nil
}

// hasExited reports whether Wait has returned.
func (p *process) hasExited() bool {
	select {
	case <-p.exited:
		return true
	default:
		return false
	}
}

// kill terminates the child and everything in its process group.
func (p *process) kill() {
	p.killOnce.Do(func() {
		if p.hasExited() {
			return
		}
		_ = killProcessTree(p.cmd.Process)
	})
}

// exitCode returns the child's exit status, -1 when it was killed by a
// signal and 0 on success. Only valid after exited is closed.
func (p *process) exitCode() int {
	if p.waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(p.waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// close kills a still running child, releases the stream and waits for the
// waiter goroutine.
func (p *process) close() {
	p.kill()
	_ = p.stream.Close()
	p.wg.Wait()
}
