// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

package tools

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shardj/code-genie-cli/internal/output"
)

func newShellExecutor(t *testing.T) (*Executor, string) {
	t.Helper()
	dir := t.TempDir()
	return NewExecutor(Config{
		Interpreter:  "sh",
		FileSuffix:   ".sh",
		TempDir:      dir,
		PollInterval: 20 * time.Millisecond,
	}, zerolog.Nop()), dir
}

func assertNoScriptsLeft(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary script not removed")
}

func TestExecutor_Success(t *testing.T) {
	e, dir := newShellExecutor(t)

	res := e.Execute(context.Background(), "echo hello", Options{
		MaxOutputSize: 1000,
		Timeout:       10 * time.Second,
	})

	assert.True(t, res.Success)
	assert.Equal(t, "hello", res.Output)
	assert.Equal(t, 0, res.ExitCode)
	assertNoScriptsLeft(t, dir)
}

func TestExecutor_NonZeroExit(t *testing.T) {
	e, dir := newShellExecutor(t)

	res := e.Execute(context.Background(), "echo oops >&2\nexit 3", Options{
		MaxOutputSize: 1000,
		Timeout:       10 * time.Second,
	})

	assert.False(t, res.Success)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Output, "oops")
	assert.Contains(t, res.Output, "Error executing code: process exited with code 3.")
	assertNoScriptsLeft(t, dir)
}

func TestExecutor_Timeout(t *testing.T) {
	e, dir := newShellExecutor(t)

	start := time.Now()
	res := e.Execute(context.Background(), "echo started\nsleep 30", Options{
		MaxOutputSize: 1000,
		Timeout:       time.Second,
	})

	assert.False(t, res.Success)
	assert.True(t, res.TimedOut)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Contains(t, res.Output, "started")
	assert.Contains(t, res.Output,
		"Provided code took too long to finish execution. Timeout after 1 seconds.")
	assertNoScriptsLeft(t, dir)
}

func TestExecutor_LaunchError(t *testing.T) {
	dir := t.TempDir()
	e := NewExecutor(Config{
		Interpreter: "/nonexistent/interpreter",
		TempDir:     dir,
	}, zerolog.Nop())

	res := e.Execute(context.Background(), "print(1)", Options{Timeout: time.Second})

	assert.False(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Output, "Error executing code: "), res.Output)
	assertNoScriptsLeft(t, dir)
}

func TestExecutor_LiveOutputAndPartialLine(t *testing.T) {
	e, _ := newShellExecutor(t)
	var live bytes.Buffer

	res := e.Execute(context.Background(), `printf 'a\nb'`, Options{
		Live:          &live,
		MaxOutputSize: 1000,
		Timeout:       10 * time.Second,
	})

	assert.True(t, res.Success)
	assert.Equal(t, "a\nb", res.Output)
	assert.Equal(t, "a\nb\n", live.String())
}

func TestExecutor_OutputBounded(t *testing.T) {
	e, _ := newShellExecutor(t)

	res := e.Execute(context.Background(), "i=1\nwhile [ $i -le 500 ]; do echo $i; i=$((i+1)); done", Options{
		MaxOutputSize: 50,
		Timeout:       10 * time.Second,
	})

	assert.True(t, res.Success)
	assert.LessOrEqual(t, len(res.Output), 50)
	assert.True(t, strings.HasSuffix(res.Output, "499\n500"), res.Output)
}

func TestExecutor_ByteCaptureKeepsExactTail(t *testing.T) {
	e, _ := newShellExecutor(t)

	res := e.Execute(context.Background(), "i=1\nwhile [ $i -le 500 ]; do echo $i; i=$((i+1)); done", Options{
		MaxOutputSize: 50,
		Capture:       output.ModeBytes,
		Timeout:       10 * time.Second,
	})

	assert.True(t, res.Success)
	// The last 50 bytes begin two bytes into "488\n".
	assert.True(t, strings.HasPrefix(res.Output, "8\n489\n"), res.Output)
	assert.True(t, strings.HasSuffix(res.Output, "499\n500"), res.Output)
	assert.Len(t, res.Output, 49)
}

func TestExecutor_Cancelled(t *testing.T) {
	e, dir := newShellExecutor(t)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	res := e.Execute(ctx, "sleep 30", Options{Timeout: 20 * time.Second})

	assert.False(t, res.Success)
	assert.True(t, res.Cancelled)
	assert.False(t, res.TimedOut)
	assertNoScriptsLeft(t, dir)
}
