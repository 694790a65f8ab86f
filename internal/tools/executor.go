// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shardj/code-genie-cli/internal/output"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config describes how scripts are launched.
type Config struct {
	// Interpreter runs the script file, e.g. "python3".
	Interpreter string

	// Args are placed between the interpreter and the script path.
	Args []string

	// FileSuffix is appended to the temporary script name, e.g. ".py".
	FileSuffix string

	// TempDir holds the temporary script. Empty uses os.TempDir().
	TempDir string

	// PollInterval bounds each wait for output.
	PollInterval time.Duration

	// Env entries are appended to the inherited environment.
	Env []string
}

// DefaultInterpreter returns the interpreter used when none is configured.
func DefaultInterpreter() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// Options are per-run settings that may change between runs.
type Options struct {
	// Live receives each output line as it arrives. Nil disables echo.
	Live io.Writer

	// MaxOutputSize bounds the captured output in bytes.
	MaxOutputSize int

	// Capture is output.ModeLines (default) or output.ModeBytes.
	Capture string

	// Timeout bounds the run. Zero disables the limit.
	Timeout time.Duration
}

// Result is the outcome of one run. Failures never surface as errors; the
// reason is written into Output.
type Result struct {
	Success   bool
	Output    string
	ExitCode  int
	Duration  time.Duration
	TimedOut  bool
	Cancelled bool
}

// =============================================================================
// EXECUTOR
// =============================================================================

// Executor runs model-generated scripts as separate processes.
type Executor struct {
	cfg    Config
	logger zerolog.Logger
}

// NewExecutor creates an executor, filling unset fields with defaults.
func NewExecutor(cfg Config, logger zerolog.Logger) *Executor {
	if cfg.Interpreter == "" {
		cfg.Interpreter = DefaultInterpreter()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Executor{cfg: cfg, logger: logger}
}

// Config returns the executor's launch settings.
func (e *Executor) Config() Config {
	return e.cfg
}

// Execute writes code to a temporary file, runs it and returns the captured
// output. The temporary file is always removed.
func (e *Executor) Execute(ctx context.Context, code string, opts Options) Result {
	start := time.Now()
	if opts.MaxOutputSize <= 0 {
		opts.MaxOutputSize = output.DefaultMaxSize
	}

	buf := output.New(opts.Capture, opts.MaxOutputSize)
	lines := &lineSplitter{live: opts.Live, sink: buf, maxRecord: opts.MaxOutputSize}

	launchFailed := func(err error) Result {
		e.logger.Debug().Err(err).Msg("script launch failed")
		lines.Note("Error executing code: " + err.Error())
		return Result{
			Output:   finalOutput(buf),
			ExitCode: -1,
			Duration: time.Since(start),
		}
	}

	path, err := writeScript(e.cfg.TempDir, e.cfg.FileSuffix, code)
	if err != nil {
		return launchFailed(err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.logger.Warn().Err(err).Str("path", path).Msg("failed to remove temporary script")
		}
	}()

	args := append(append([]string{}, e.cfg.Args...), path)
	cmd := exec.Command(e.cfg.Interpreter, args...)
	cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1")
	cmd.Env = append(cmd.Env, e.cfg.Env...)

	proc, err := startProcess(cmd, e.cfg.PollInterval, e.logger)
	if err != nil {
		return launchFailed(err)
	}
	defer proc.close()

	e.logger.Debug().
		Str("interpreter", e.cfg.Interpreter).
		Str("script", path).
		Int("pid", cmd.Process.Pid).
		Dur("timeout", opts.Timeout).
		Msg("script started")

	guard := NewTimeoutGuard(opts.Timeout)
	guard.OnExpire(proc.kill)

	runErr := guard.Run(ctx, func(ctx context.Context) error {
		return e.collect(ctx, proc, lines)
	})
	lines.Flush()

	res := Result{Duration: time.Since(start)}
	switch {
	case errors.Is(runErr, ErrTimeout):
		proc.kill()
		res.TimedOut = true
		res.ExitCode = -1
		lines.Note(fmt.Sprintf("Provided code took too long to finish execution. Timeout after %s seconds.",
			formatSeconds(opts.Timeout)))
	case runErr != nil:
		proc.kill()
		res.Cancelled = ctx.Err() != nil
		res.ExitCode = -1
		lines.Note("Error executing code: " + cancelReason(ctx, runErr))
	default:
		res.ExitCode = proc.exitCode()
		if res.ExitCode == 0 {
			res.Success = true
		} else {
			lines.Note(fmt.Sprintf("Error executing code: process exited with code %d.", res.ExitCode))
		}
	}
	res.Output = finalOutput(buf)

	e.logger.Debug().
		Bool("success", res.Success).
		Int("exit_code", res.ExitCode).
		Bool("timed_out", res.TimedOut).
		Dur("duration", res.Duration).
		Msg("script finished")

	return res
}

// collect forwards output until the stream ends and the child has exited.
func (e *Executor) collect(ctx context.Context, proc *process, sink io.Writer) error {
	for {
		chunk, err := proc.stream.Next(ctx)
		switch {
		case err == nil:
			_, _ = sink.Write(chunk)
		case errors.Is(err, ErrNoData):
			if proc.hasExited() {
				return drain(ctx, proc.stream, sink)
			}
		case errors.Is(err, io.EOF):
			select {
			case <-proc.exited:
				return nil
			case <-ctx.Done():
				return context.Cause(ctx)
			}
		default:
			return err
		}
	}
}

// drain reads what the exited child left buffered. A descendant still
// holding the terminal open must not keep the run alive, so one empty poll
// ends the drain.
func drain(ctx context.Context, stream ChunkStream, sink io.Writer) error {
	for {
		chunk, err := stream.Next(ctx)
		switch {
		case err == nil:
			_, _ = sink.Write(chunk)
		case errors.Is(err, ErrNoData), errors.Is(err, io.EOF):
			return nil
		default:
			return err
		}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeScript(dir, suffix, code string) (string, error) {
	f, err := os.CreateTemp(dir, "codegenie-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("create script file: %w", err)
	}
	path := f.Name()

	if _, err := f.WriteString(code); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write script file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close script file: %w", err)
	}
	return path, nil
}

func finalOutput(buf output.Buffer) string {
	return strings.TrimRight(buf.String(), "\r\n")
}

func cancelReason(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return "execution cancelled."
	}
	return err.Error()
}

// formatSeconds prints whole seconds without a fraction.
func formatSeconds(d time.Duration) string {
	if d%time.Second == 0 {
		return strconv.FormatInt(int64(d/time.Second), 10)
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 1, 64)
}
