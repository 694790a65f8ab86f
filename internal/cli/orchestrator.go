// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shardj/code-genie-cli/internal/cloud"
	"github.com/Shardj/code-genie-cli/internal/config"
	"github.com/Shardj/code-genie-cli/internal/history"
	"github.com/Shardj/code-genie-cli/internal/model"
	"github.com/Shardj/code-genie-cli/internal/telemetry"
	"github.com/Shardj/code-genie-cli/internal/tools"
	"github.com/Shardj/code-genie-cli/internal/ui/styles"
)

// truncationWarning is shown when a reply hit the completion token limit.
const truncationWarning = "Warning: the model returned a truncated response due to the token limit."

// =============================================================================
// STATES
// =============================================================================

// State is a step of the conversation loop.
type State int

const (
	StateAwaitingInput State = iota
	StateSending
	StateAwaitingCodeDecision
	StateExecuting
	StateAwaitingFeedbackDecision
	StateExited
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateSending:
		return "sending"
	case StateAwaitingCodeDecision:
		return "awaiting_code_decision"
	case StateExecuting:
		return "executing"
	case StateAwaitingFeedbackDecision:
		return "awaiting_feedback_decision"
	case StateExited:
		return "exited"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Completer sends a message with the bounded conversation and records the
// exchange. *cloud.Client implements it.
type Completer interface {
	Send(ctx context.Context, message string, role model.Role) (cloud.Reply, error)
	History() *history.BoundedHistory
	Model() string
}

// Progress shows that the loop is waiting on the completion API.
type Progress interface {
	Start(message string)
	Stop()
}

// ExecutionObserver is told about every finished run.
type ExecutionObserver interface {
	AfterExecution(res tools.Result)
}

// Options wires an Orchestrator. Completer, Runner and Prompter are
// required.
type Options struct {
	Completer Completer
	Runner    Runner
	Prompter  Prompter

	// Out receives all session output. Defaults to os.Stdout.
	Out io.Writer

	// Renderer formats output. Defaults to a plain renderer on Out.
	Renderer *Renderer

	// SystemPrompt opens the session with role system. Empty starts at
	// the input prompt.
	SystemPrompt string

	// Config returns the current configuration. Executor settings are read
	// before every run. Defaults to config.Global.
	Config func() *config.Config

	Usage    *telemetry.UsageTracker
	Progress Progress
	Observer ExecutionObserver

	// Pip is named in the remediation hint of error feedback.
	Pip string

	Logger zerolog.Logger

	// OnTransition is called after every state change.
	OnTransition func(from, to State)
}

type pendingMessage struct {
	text string
	role model.Role
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator drives the conversation loop. It is not safe for concurrent
// use; Run blocks the calling goroutine for the whole session.
type Orchestrator struct {
	opts   Options
	render *Renderer
	usage  *telemetry.UsageTracker
	state  State

	pending  pendingMessage
	code     string
	language string
	last     tools.Result
}

// NewOrchestrator creates an orchestrator, filling unset options.
func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Renderer == nil {
		opts.Renderer = NewRenderer(opts.Out, false, false, 0)
	}
	if opts.Config == nil {
		opts.Config = config.Global
	}
	if opts.Usage == nil {
		opts.Usage = telemetry.NewUsageTracker()
	}
	if opts.Pip == "" {
		opts.Pip = "pip"
	}
	return &Orchestrator{
		opts:   opts,
		render: opts.Renderer,
		usage:  opts.Usage,
		state:  StateAwaitingInput,
	}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	return o.state
}

// Usage returns the session usage tracker.
func (o *Orchestrator) Usage() *telemetry.UsageTracker {
	return o.usage
}

// Run drives the loop until the user leaves or a fatal error occurs. A
// graceful exit, including an interrupt, returns nil. Unrecoverable
// completion errors are returned as *FatalError. The session summary is
// printed in both cases.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer o.printExitSummary()
	o.printWelcome()

	if o.opts.SystemPrompt != "" {
		o.pending = pendingMessage{text: o.opts.SystemPrompt, role: model.RoleSystem}
		o.transition(StateSending)
	}

	for o.state != StateExited {
		var err error
		switch o.state {
		case StateAwaitingInput:
			err = o.awaitInput(ctx)
		case StateSending:
			err = o.send(ctx)
		case StateAwaitingCodeDecision:
			err = o.decideExecution(ctx)
		case StateExecuting:
			o.execute(ctx)
		case StateAwaitingFeedbackDecision:
			err = o.decideFeedback()
		}
		if err != nil {
			o.transition(StateExited)
			return err
		}
	}
	return nil
}

func (o *Orchestrator) transition(to State) {
	from := o.state
	o.state = to
	o.opts.Logger.Debug().Stringer("from", from).Stringer("to", to).Msg("state transition")
	if o.opts.OnTransition != nil {
		o.opts.OnTransition(from, to)
	}
}

// =============================================================================
// STEPS
// =============================================================================

func (o *Orchestrator) awaitInput(ctx context.Context) error {
	if ctx.Err() != nil {
		o.transition(StateExited)
		return nil
	}

	fmt.Fprintln(o.opts.Out)
	line, err := o.opts.Prompter.ReadLine(styles.Prompt.Render("Prompt: "))
	if err != nil {
		if isEndOfInput(err) || ctx.Err() != nil {
			fmt.Fprintln(o.opts.Out)
			o.transition(StateExited)
			return nil
		}
		return Fatalf("reading input: %w", err)
	}

	input := strings.TrimSpace(line)
	switch {
	case input == "":
		return nil
	case isExitCommand(input):
		o.transition(StateExited)
		return nil
	case strings.HasPrefix(input, "/"):
		if o.handleCommand(input) {
			o.transition(StateExited)
		}
		return nil
	}

	o.pending = pendingMessage{text: FormatUserPrompt(input), role: model.RoleUser}
	o.transition(StateSending)
	return nil
}

func (o *Orchestrator) send(ctx context.Context) error {
	msg := o.pending
	o.pending = pendingMessage{}

	o.startProgress("Thinking...")
	start := time.Now()
	reply, err := o.opts.Completer.Send(ctx, msg.text, msg.role)
	o.stopProgress()

	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(o.opts.Out)
			o.render.Warning("Interrupted.")
			o.transition(StateExited)
			return nil
		}
		o.render.Error("Failed to get a reply: " + err.Error())
		return Fatalf("completion request failed: %w", err)
	}

	o.usage.RecordCompletion(reply.Usage.PromptTokens, reply.Usage.CompletionTokens, reply.Truncated, time.Since(start))
	o.render.Reply(reply.Content)
	if reply.Truncated {
		o.render.Warning(truncationWarning)
	}

	blocks := ExtractCodeBlocks(reply.Content)
	if len(blocks) == 0 {
		o.transition(StateAwaitingInput)
		return nil
	}
	o.code = ExtractCode(reply.Content)
	o.language = blockLanguage(blocks)
	if o.language == "" {
		_, o.language = languageFor(o.opts.Config().Executor.Interpreter)
	}
	o.transition(StateAwaitingCodeDecision)
	return nil
}

func (o *Orchestrator) decideExecution(ctx context.Context) error {
	o.render.Code(o.code, o.language)
	run, err := o.opts.Prompter.Confirm(styles.Command.Render("Execute the provided code?"))
	if err != nil && (errors.Is(err, io.EOF) || ctx.Err() != nil) {
		o.transition(StateExited)
		return nil
	}
	if err != nil || !run {
		o.transition(StateAwaitingInput)
		return nil
	}
	o.transition(StateExecuting)
	return nil
}

func (o *Orchestrator) execute(ctx context.Context) {
	cfg := o.opts.Config().Executor

	o.render.Heading(styles.Command, "Execution output:")
	res := o.opts.Runner.Execute(ctx, o.code, cfg, o.opts.Out)
	if !cfg.LiveOutput && res.Output != "" {
		fmt.Fprintln(o.opts.Out, res.Output)
	}
	o.render.Rule(styles.Command)

	o.usage.RecordExecution(res.Success, res.TimedOut, res.Duration)
	switch {
	case res.Success:
		o.render.Success(fmt.Sprintf("Finished in %s.", res.Duration.Round(time.Millisecond)))
	case res.TimedOut:
		o.render.Warning("The code timed out and was stopped.")
	case res.Cancelled:
		o.render.Warning("Execution cancelled.")
	default:
		o.render.Error("The code failed.")
	}
	if o.opts.Observer != nil {
		o.opts.Observer.AfterExecution(res)
	}
	o.last = res

	switch {
	case res.Cancelled || ctx.Err() != nil:
		o.transition(StateExited)
	case strings.TrimSpace(res.Output) == "":
		o.transition(StateAwaitingInput)
	default:
		o.transition(StateAwaitingFeedbackDecision)
	}
}

func (o *Orchestrator) decideFeedback() error {
	question := "Send the output back to the genie?"
	if !o.last.Success {
		question = "Send the error back to the genie?"
	}
	send, err := o.opts.Prompter.Confirm(styles.Command.Render(question))
	if err != nil && errors.Is(err, io.EOF) {
		o.transition(StateExited)
		return nil
	}
	if err != nil || !send {
		o.transition(StateAwaitingInput)
		return nil
	}

	o.pending = pendingMessage{text: FeedbackMessage(o.last, o.opts.Pip), role: model.RoleUser}
	o.usage.RecordFeedback()
	o.transition(StateSending)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (o *Orchestrator) startProgress(msg string) {
	if o.opts.Progress != nil {
		o.opts.Progress.Start(msg)
	}
}

func (o *Orchestrator) stopProgress() {
	if o.opts.Progress != nil {
		o.opts.Progress.Stop()
	}
}

func isEndOfInput(err error) bool {
	return errors.Is(err, ErrInterrupted) || errors.Is(err, io.EOF)
}

func isExitCommand(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit":
		return true
	}
	return false
}
