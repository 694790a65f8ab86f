// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Shardj/code-genie-cli/internal/output"
)

func TestLineSplitter(t *testing.T) {
	var live bytes.Buffer
	buf := output.NewRingBuffer(100)
	l := &lineSplitter{live: &live, sink: buf, maxRecord: 100}

	_, _ = l.Write([]byte("fir"))
	_, _ = l.Write([]byte("st\r\nsecond\nthi"))
	assert.Equal(t, "first\nsecond\n", live.String())

	l.Flush()
	assert.Equal(t, "first\nsecond\nthi\n", buf.String())
}

func TestLineSplitter_ClampsLongRecord(t *testing.T) {
	buf := output.NewRingBuffer(8)
	l := &lineSplitter{sink: buf, maxRecord: 8}

	_, _ = l.Write([]byte("0123456789abcdef\n"))
	assert.Equal(t, "9abcdef\n", buf.String())
	assert.Equal(t, 8, buf.Len())
}
