// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// Error variables for common completion API failures.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or revoked key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrInsufficientCredits indicates the account has no quota left.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrEmptyResponse indicates the response carried no choices.
	ErrEmptyResponse = errors.New("completion response contained no choices")
)

// CompletionError represents a failure from the completion API that does not
// map to one of the sentinel errors.
type CompletionError struct {
	Status  int
	Type    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *CompletionError) Error() string {
	switch {
	case e.Status != 0 && e.Type != "":
		return fmt.Sprintf("completion API error [%s] (HTTP %d): %s", e.Type, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("completion API error (HTTP %d): %s", e.Status, e.Message)
	default:
		return "completion request failed: " + e.Message
	}
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// mapError converts go-openai errors into this package's taxonomy.
// Context errors pass through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classify(apiErr.HTTPStatusCode, apiErr.Type, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := http.StatusText(reqErr.HTTPStatusCode)
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return classify(reqErr.HTTPStatusCode, "", msg, err)
	}

	return &CompletionError{Message: err.Error(), Err: err}
}

func classify(status int, typ, msg string, cause error) error {
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrAuthFailed, msg)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s", ErrInsufficientCredits, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrModelNotFound, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	default:
		return &CompletionError{Status: status, Type: typ, Message: msg, Err: cause}
	}
}
