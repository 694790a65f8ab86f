// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"

	"github.com/Shardj/code-genie-cli/internal/model"
	"github.com/Shardj/code-genie-cli/internal/tools"
	"github.com/Shardj/code-genie-cli/internal/ui/styles"
)

// DebugInspector lets a developer look at and steer traffic in --debug
// mode. Every step is opt-in through a yes/no prompt. A failed prompt is
// treated as no.
type DebugInspector struct {
	prompter Prompter
	out      io.Writer
	progress *PausableProgress
}

// NewDebugInspector creates an inspector that asks through p and prints to
// out.
func NewDebugInspector(p Prompter, out io.Writer) *DebugInspector {
	return &DebugInspector{prompter: p, out: out}
}

// WithProgress pauses p while the inspector prompts, so the indicator
// does not draw over the question.
func (d *DebugInspector) WithProgress(p *PausableProgress) *DebugInspector {
	d.progress = p
	return d
}

// BeforeSend offers to show the outbound message list.
func (d *DebugInspector) BeforeSend(msgs []model.Message) {
	defer d.hold()()
	if d.ask("Debug: show the messages about to be sent?") {
		d.dump("messages", msgs)
	}
}

// AfterReceive offers to show the raw response and to replace the reply.
func (d *DebugInspector) AfterReceive(resp openai.ChatCompletionResponse, reply string) string {
	defer d.hold()()
	if d.ask("Debug: show the raw response?") {
		d.dump("response", resp)
	}
	if !d.ask("Debug: override the reply?") {
		return reply
	}
	override, err := d.prompter.ReadLine(styles.Warning.Render("Reply: "))
	if err != nil || override == "" {
		return reply
	}
	return override
}

// AfterExecution offers to show the exit code and captured output.
func (d *DebugInspector) AfterExecution(res tools.Result) {
	defer d.hold()()
	if !d.ask("Debug: show the execution result?") {
		return
	}
	fmt.Fprintf(d.out, "%s exit=%d success=%t timed_out=%t cancelled=%t duration=%s\n",
		styles.Warning.Render("result:"), res.ExitCode, res.Success, res.TimedOut, res.Cancelled, res.Duration)
	fmt.Fprintf(d.out, "%s\n%s\n", styles.Warning.Render("output:"), res.Output)
}

// hold pauses the progress indicator and returns the matching resume.
func (d *DebugInspector) hold() func() {
	if d.progress == nil {
		return func() {}
	}
	d.progress.Pause()
	return d.progress.Resume
}

func (d *DebugInspector) ask(question string) bool {
	ok, err := d.prompter.Confirm(styles.Warning.Render(question))
	return err == nil && ok
}

func (d *DebugInspector) dump(label string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(d.out, "%s %v\n", styles.Warning.Render(label+":"), err)
		return
	}
	fmt.Fprintf(d.out, "%s\n%s\n", styles.Warning.Render(label+":"), data)
}
