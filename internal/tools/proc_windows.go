// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

package tools

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// startProcess runs cmd in its own process group with output on a pipe.
// Windows has no pty here, so interpreters may block-buffer their output.
func startProcess(cmd *exec.Cmd, poll time.Duration, logger zerolog.Logger) (*process, error) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
	logger.Debug().Msg("capturing output through a pipe")
	return startWithPipe(cmd, poll)
}

func killProcessTree(p *os.Process) error {
	if p == nil {
		return nil
	}
	if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func isPlatformEndOfStream(err error) bool {
	return errors.Is(err, syscall.ERROR_BROKEN_PIPE)
}
