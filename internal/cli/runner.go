// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/Shardj/code-genie-cli/internal/config"
	"github.com/Shardj/code-genie-cli/internal/tools"
)

// Runner executes a candidate script with the executor settings current at
// the time of the run.
type Runner interface {
	Execute(ctx context.Context, code string, cfg config.ExecutorConfig, live io.Writer) tools.Result
}

// ExecutorRunner runs scripts through tools.Executor. A fresh executor is
// built per run so configuration reloads take effect immediately.
type ExecutorRunner struct {
	Logger zerolog.Logger

	// TempDir overrides where scripts are written. Empty uses the system
	// temporary directory.
	TempDir string
}

// Execute runs code and returns the result. live receives output as it
// arrives when cfg.LiveOutput is set.
func (r ExecutorRunner) Execute(ctx context.Context, code string, cfg config.ExecutorConfig, live io.Writer) tools.Result {
	exec := tools.NewExecutor(tools.Config{
		Interpreter:  cfg.Interpreter,
		Args:         cfg.Args,
		FileSuffix:   cfg.FileSuffix,
		TempDir:      r.TempDir,
		PollInterval: cfg.PollInterval(),
	}, r.Logger)

	opts := tools.Options{
		MaxOutputSize: cfg.MaxOutputSize,
		Capture:       cfg.OutputMode,
		Timeout:       cfg.Timeout(),
	}
	if cfg.LiveOutput {
		opts.Live = live
	}
	return exec.Execute(ctx, code, opts)
}
