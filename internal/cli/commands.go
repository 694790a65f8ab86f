// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Shardj/code-genie-cli/internal/model"
	"github.com/Shardj/code-genie-cli/internal/ui/styles"
	"github.com/Shardj/code-genie-cli/internal/util"
)

// historyPreviewRunes caps each turn shown by /history.
const historyPreviewRunes = 100

// handleCommand runs a slash command and reports whether the session
// should end.
func (o *Orchestrator) handleCommand(input string) (exit bool) {
	parts := strings.Fields(input)
	switch strings.ToLower(parts[0]) {
	case "/help", "/h", "/?":
		o.printHelp()
	case "/history":
		o.printHistory()
	case "/status", "/s":
		o.printStatus()
	case "/clear", "/c":
		o.opts.Completer.History().Reset()
		o.render.Success("Conversation cleared. The system prompt is kept.")
	case "/quit", "/q", "/exit":
		return true
	default:
		o.render.Warning(fmt.Sprintf("Unknown command %s. Type /help for a list.", parts[0]))
	}
	return false
}

// =============================================================================
// OUTPUT
// =============================================================================

func (o *Orchestrator) printWelcome() {
	out := o.opts.Out
	fmt.Fprintln(out, styles.Title.Render("Welcome to code-genie-cli!"))
	fmt.Fprintf(out, "%s %s   %s %s\n",
		styles.Info.Render("Model:"), styles.Command.Render(o.opts.Completer.Model()),
		styles.Info.Render("Interpreter:"), styles.Command.Render(o.opts.Config().Executor.Interpreter))
	fmt.Fprintln(out, styles.Muted.Render("Type a request and press Enter. Commands: /help, /quit"))
}

func (o *Orchestrator) printHelp() {
	out := o.opts.Out
	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.SummaryHeader.Render("Available Commands"))
	fmt.Fprintln(out, styles.Info.Render(strings.Repeat("─", 20)))

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/history", "Show the conversation with token costs"},
		{"/status, /s", "Show session usage and the token budget"},
		{"/clear, /c", "Forget the conversation, keep the system prompt"},
		{"/quit, /q", "Exit (also: exit, quit, Ctrl+D)"},
	}
	for _, c := range commands {
		fmt.Fprintf(out, "  %s  %s\n",
			styles.Command.Render(fmt.Sprintf("%-12s", c.cmd)),
			styles.Info.Render(c.desc))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.Muted.Render("Ctrl+C during a request or a run stops it and exits."))
}

func (o *Orchestrator) printHistory() {
	out := o.opts.Out
	turns := o.opts.Completer.History().Turns()
	if len(turns) == 0 {
		fmt.Fprintln(out, styles.Info.Render("[No messages yet]"))
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.SummaryHeader.Render("Conversation History"))
	fmt.Fprintln(out, styles.Info.Render(strings.Repeat("─", 25)))
	for i, t := range turns {
		content := strings.ReplaceAll(t.Content, "\n", " ")
		content = util.TruncateRunes(content, historyPreviewRunes)
		fmt.Fprintf(out, "  %d. %s %s %s\n",
			i+1,
			roleStyle(t.Role).Render(t.Role.DisplayName()+":"),
			styles.Muted.Render(fmt.Sprintf("(%d tokens)", t.TokenCost)),
			content)
	}
}

func (o *Orchestrator) printStatus() {
	out := o.opts.Out
	h := o.opts.Completer.History()
	s := o.usage.Summary()

	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.SummaryHeader.Render("Session Status"))
	fmt.Fprintln(out, styles.Info.Render(strings.Repeat("─", 20)))
	row := func(label, value string) {
		fmt.Fprintf(out, "  %s %s\n", styles.Info.Render(fmt.Sprintf("%-12s", label)), value)
	}
	row("Session:", s.SessionID)
	row("Model:", o.opts.Completer.Model())
	row("History:", fmt.Sprintf("%d turns, %d / %d tokens", h.Len(), h.TotalTokens(), h.Limit()))
	row("Evicted:", fmt.Sprintf("%d turns", s.Evictions))
	row("Requests:", fmt.Sprintf("%d (%d truncated)", s.Completions, s.Truncations))
	row("Tokens:", fmt.Sprintf("%d prompt, %d completion", s.PromptTokens, s.CompletionTokens))
	row("Executions:", executionCounts(s.Executions, s.ExecSucceeded, s.ExecFailed, s.ExecTimedOut))
	row("Duration:", s.SessionElapsed.Round(time.Second).String())
}

func (o *Orchestrator) printExitSummary() {
	out := o.opts.Out
	s := o.usage.Summary()
	if s.Completions == 0 {
		fmt.Fprintln(out, styles.Info.Render("Goodbye!"))
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.SummaryHeader.Render("Session Summary"))
	fmt.Fprintln(out, styles.Info.Render(strings.Repeat("─", 15)))
	fmt.Fprintf(out, "  %s %d\n", styles.Info.Render("Requests:"), s.Completions)
	fmt.Fprintf(out, "  %s %d (%d prompt, %d completion)\n",
		styles.Info.Render("Tokens:"), s.TotalTokens(), s.PromptTokens, s.CompletionTokens)
	if s.Truncations > 0 {
		fmt.Fprintf(out, "  %s %d\n", styles.Info.Render("Truncated:"), s.Truncations)
	}
	fmt.Fprintf(out, "  %s %s\n", styles.Info.Render("Executions:"),
		executionCounts(s.Executions, s.ExecSucceeded, s.ExecFailed, s.ExecTimedOut))
	fmt.Fprintf(out, "  %s %s\n", styles.Info.Render("Duration:"), s.SessionElapsed.Round(time.Second))
	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.Info.Render("Goodbye!"))
}

func executionCounts(total, ok, failed, timedOut int) string {
	return fmt.Sprintf("%d (%d ok, %d failed, %d timed out)", total, ok, failed, timedOut)
}

func roleStyle(r model.Role) lipgloss.Style {
	switch r {
	case model.RoleUser:
		return lipgloss.NewStyle().Foreground(styles.Cyan)
	case model.RoleAssistant:
		return lipgloss.NewStyle().Foreground(styles.Purple)
	default:
		return lipgloss.NewStyle().Foreground(styles.Amber)
	}
}
