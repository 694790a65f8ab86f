// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"bytes"
	"io"

	"github.com/Shardj/code-genie-cli/internal/output"
)

// maxPartialLine forces a line break for output that never emits newlines.
const maxPartialLine = 64 * 1024

// lineSplitter assembles chunks into lines, echoes each complete line to
// live (when set) and records it in sink clamped to maxRecord bytes.
type lineSplitter struct {
	live      io.Writer
	sink      output.Buffer
	maxRecord int
	partial   []byte
}

func (l *lineSplitter) Write(p []byte) (int, error) {
	l.partial = append(l.partial, p...)
	for {
		i := bytes.IndexByte(l.partial, '\n')
		if i < 0 {
			break
		}
		l.emit(l.partial[:i])
		l.partial = l.partial[i+1:]
	}
	if len(l.partial) > maxPartialLine {
		l.emit(l.partial)
		l.partial = nil
	}
	return len(p), nil
}

// Flush emits a trailing line that had no newline.
func (l *lineSplitter) Flush() {
	if len(l.partial) > 0 {
		l.emit(l.partial)
		l.partial = nil
	}
}

// Note records an executor message as its own line.
func (l *lineSplitter) Note(msg string) {
	l.Flush()
	l.emit([]byte(msg))
}

func (l *lineSplitter) emit(raw []byte) {
	line := string(bytes.TrimRight(raw, "\r"))
	if l.live != nil {
		_, _ = io.WriteString(l.live, line+"\n")
	}
	_, _ = io.WriteString(l.sink, output.ClampTail(line+"\n", l.maxRecord))
}
