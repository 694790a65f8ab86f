// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"errors"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	"github.com/Shardj/code-genie-cli/internal/util"
)

// Prompter reads user input. ReadLine and ReadSecret return ErrInterrupted
// on Ctrl+C and io.EOF when input ends.
type Prompter interface {
	ReadLine(prompt string) (string, error)
	Confirm(question string) (bool, error)
	ReadSecret(prompt string) (string, error)
}

// =============================================================================
// LINE READER
// =============================================================================

// LineReader is a Prompter with line editing and persistent input recall,
// backed by liner.
type LineReader struct {
	line        *liner.State
	historyFile string
	logger      zerolog.Logger
}

// NewLineReader creates a line reader. Previous input is loaded from
// historyFile when it exists; an empty path disables recall persistence.
func NewLineReader(historyFile string, logger zerolog.Logger) *LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &LineReader{
		line:        line,
		historyFile: historyFile,
		logger:      logger,
	}
	r.loadHistory()
	return r
}

func (r *LineReader) loadHistory() {
	if r.historyFile == "" {
		return
	}
	f, err := os.Open(r.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := r.line.ReadHistory(f); err != nil {
		r.logger.Debug().Err(err).Str("path", r.historyFile).Msg("failed to read input history")
	}
}

// ReadLine prompts for one line. Non-blank input is added to recall.
func (r *LineReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", mapLinerError(err)
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Confirm asks a yes/no question. Anything but "y" or "yes" is no.
func (r *LineReader) Confirm(question string) (bool, error) {
	answer, err := r.line.Prompt(question + " [y/N] ")
	if err != nil {
		return false, mapLinerError(err)
	}
	return isYes(answer), nil
}

// ReadSecret prompts without echoing the input.
func (r *LineReader) ReadSecret(prompt string) (string, error) {
	secret, err := r.line.PasswordPrompt(prompt)
	if err != nil {
		return "", mapLinerError(err)
	}
	return strings.TrimSpace(secret), nil
}

// SaveHistory writes input recall to the history file with 0600
// permissions.
func (r *LineReader) SaveHistory() error {
	if r.historyFile == "" {
		return nil
	}
	var buf bytes.Buffer
	if _, err := r.line.WriteHistory(&buf); err != nil {
		return err
	}
	return util.AtomicWriteFile(r.historyFile, buf.Bytes(), 0600)
}

// Close saves history and restores the terminal.
func (r *LineReader) Close() error {
	if err := r.SaveHistory(); err != nil {
		r.logger.Warn().Err(err).Str("path", r.historyFile).Msg("failed to save input history")
	}
	return r.line.Close()
}

func mapLinerError(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) {
		return ErrInterrupted
	}
	return err
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
