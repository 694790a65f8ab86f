// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

package tools

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// startProcess runs cmd in a new session attached to a pseudo-terminal so
// the interpreter line-buffers its output. Without a usable pty it falls
// back to a plain pipe.
func startProcess(cmd *exec.Cmd, poll time.Duration, logger zerolog.Logger) (*process, error) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	ptmx, tty, err := pty.Open()
	if err != nil {
		logger.Debug().Err(err).Msg("pty unavailable, capturing through a pipe")
		return startWithPipe(cmd, poll)
	}

	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.SysProcAttr.Setctty = true

	if err := cmd.Start(); err != nil {
		_ = ptmx.Close()
		_ = tty.Close()
		return nil, err
	}
	// Once the child owns the slave, EIO on the master means it is gone.
	_ = tty.Close()

	return newProcess(cmd, NewReaderStream(ptmx, poll)), nil
}

// killProcessTree sends SIGKILL to the child's process group.
func killProcessTree(p *os.Process) error {
	if p == nil {
		return nil
	}
	err := unix.Kill(-p.Pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	if err != nil {
		return p.Kill()
	}
	return nil
}

// A pty master reports EIO after the last slave descriptor closes.
func isPlatformEndOfStream(err error) bool {
	return errors.Is(err, unix.EIO)
}
