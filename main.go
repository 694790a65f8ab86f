// code-genie-cli - chat with a language model that writes and runs code for you.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/Shardj/code-genie-cli/internal/cli"
	"github.com/Shardj/code-genie-cli/internal/cloud"
	"github.com/Shardj/code-genie-cli/internal/config"
	"github.com/Shardj/code-genie-cli/internal/history"
	"github.com/Shardj/code-genie-cli/internal/logging"
	"github.com/Shardj/code-genie-cli/internal/model"
	"github.com/Shardj/code-genie-cli/internal/telemetry"
	"github.com/Shardj/code-genie-cli/internal/ui/components"
	"github.com/Shardj/code-genie-cli/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.4.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("code-genie-cli", pflag.ContinueOnError)
	debug := fs.BoolP("debug", "d", false, "enable debug logging and the request inspector")
	help := fs.BoolP("help", "h", false, "show this help")
	version := fs.Bool("version", false, "print version information")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: code-genie-cli [flags]")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Chat with a language model that answers with code and runs it on request.")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Flags:")
		fmt.Fprint(os.Stderr, fs.FlagUsages())
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return cli.ExitSuccess
		}
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return cli.ExitFailure
	}
	if *help {
		fs.Usage()
		return cli.ExitSuccess
	}
	if *version {
		fmt.Printf("code-genie-cli %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		return cli.ExitSuccess
	}

	logger := logging.Setup(*debug, os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
		return cli.ExitFailure
	}
	if *debug {
		cfg.Debug = true
	} else if cfg.Debug {
		logger = logging.Setup(true, os.Stderr)
	}
	config.SetGlobal(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if path, err := config.ConfigPath(); err == nil {
		if created, err := config.WriteDefaultIfMissing(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("could not write default config")
		} else if created {
			logger.Debug().Str("path", path).Msg("wrote default config")
		}
		go watchConfig(ctx, path, logging.Component(logger, "config"))
	}

	historyPath, err := config.InputHistoryPath()
	if err != nil {
		historyPath = ""
	}
	reader := cli.NewLineReader(historyPath, logging.Component(logger, "input"))
	defer reader.Close()

	apiKey, err := cli.EnsureAPIKey(ctx, reader, os.Stdout, cfg.Model.BaseURL, cloud.ValidateKey)
	if err != nil {
		fatal(err)
		return cli.ExitCode(err)
	}

	usage := telemetry.NewUsageTracker()
	h := history.New(cfg.History.TokenLimit,
		history.WithLogger(logging.Component(logger, "history")),
		history.WithEvictHook(func(model.Turn) { usage.RecordEviction() }),
	)

	client, err := cloud.NewClient(apiKey, cfg.Model.BaseURL, h, cloud.Config{
		Model:             cfg.Model.Name,
		Temperature:       float32(cfg.Model.Temperature),
		MaxTokens:         cfg.Model.MaxTokens,
		RetryOnTruncation: cfg.Model.RetryOnTruncation,
		RetryMaxTokens:    cfg.Model.RetryMaxTokens,
		RequestsPerMinute: cfg.Model.RequestsPerMinute,
		RequestTimeout:    cfg.Model.RequestTimeout(),
	})
	if err != nil {
		fatal(err)
		return cli.ExitFailure
	}
	client = client.WithLogger(logging.Component(logger, "cloud"))

	logger.Debug().
		Str("session", usage.SessionID()).
		Str("model", client.Model()).
		Str("key", client.KeyFingerprint()).
		Msg("session starting")

	var spinner cli.Progress
	if cfg.UI.Spinner && cli.IsStderrTTY() {
		spinner = components.NewSpinner(os.Stderr)
	}
	progress := cli.NewPausableProgress(spinner)

	var observer cli.ExecutionObserver
	if cfg.Debug {
		inspector := cli.NewDebugInspector(reader, os.Stdout).WithProgress(progress)
		client = client.WithInspector(inspector)
		observer = inspector
	}

	styled := cli.IsStdoutTTY()
	renderer := cli.NewRenderer(os.Stdout,
		styled && cfg.UI.RenderMarkdown,
		styled && cfg.UI.HighlightCode,
		cli.GetTerminalWidth())

	info := cli.CollectSystemInfo(ctx, cfg.Executor.Interpreter)

	orch := cli.NewOrchestrator(cli.Options{
		Completer:    client,
		Runner:       cli.ExecutorRunner{Logger: logging.Component(logger, "executor")},
		Prompter:     reader,
		Out:          os.Stdout,
		Renderer:     renderer,
		SystemPrompt: cli.BuildSystemPrompt(info),
		Config:       config.Global,
		Usage:        usage,
		Progress:     progress,
		Observer:     observer,
		Pip:          info.Pip,
		Logger:       logging.Component(logger, "session"),
	})

	err = orch.Run(ctx)
	if err != nil {
		fatal(err)
	}
	return cli.ExitCode(err)
}

func watchConfig(ctx context.Context, path string, logger zerolog.Logger) {
	err := config.Watch(ctx, path, func(_ *config.Config, err error) {
		if err == nil {
			logger.Info().Str("path", path).Msg("configuration reloaded")
		}
	})
	if err != nil {
		logger.Debug().Err(err).Msg("config hot reload disabled")
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, styles.Indicator(styles.Error, styles.StatusIndicators.Error, "Error: "+err.Error()))
}
