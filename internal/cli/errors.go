// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess is returned after a graceful exit.
	ExitSuccess = 0
	// ExitFailure is returned for missing or invalid credentials and for
	// unrecoverable completion errors.
	ExitFailure = 1
)

// ErrInterrupted is returned by a Prompter when the user presses Ctrl+C at
// a prompt.
var ErrInterrupted = errors.New("input interrupted")

// =============================================================================
// FATAL ERRORS
// =============================================================================

// FatalError ends the session. The caller maps Code to the process exit
// status.
type FatalError struct {
	Code int
	Err  error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fatal error (exit %d)", e.Code)
	}
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal wraps err as a FatalError with ExitFailure.
func Fatal(err error) *FatalError {
	return &FatalError{Code: ExitFailure, Err: err}
}

// Fatalf formats a FatalError with ExitFailure.
func Fatalf(format string, args ...any) *FatalError {
	return Fatal(fmt.Errorf(format, args...))
}

// ExitCode maps an error returned by the session to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ExitFailure
}
