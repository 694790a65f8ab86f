// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Text styles shared by the REPL and its components.
var (
	Prompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

	Genie = lipgloss.NewStyle().Foreground(Purple).Bold(true)

	Title = lipgloss.NewStyle().Foreground(Purple).Bold(true)

	Info = lipgloss.NewStyle().Foreground(TextSecondary)

	Muted = lipgloss.NewStyle().Foreground(TextMuted)

	Command = lipgloss.NewStyle().Foreground(Cyan)

	Success = lipgloss.NewStyle().Foreground(Emerald)

	Warning = lipgloss.NewStyle().Foreground(Amber)

	Error = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	SummaryHeader = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

	CodeBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Overlay).
			Padding(0, 1)

	LineNumber = lipgloss.NewStyle().Foreground(TextMuted)
)

// Indicator prefixes msg with the indicator styled by s.
func Indicator(s lipgloss.Style, indicator, msg string) string {
	return s.Render(indicator) + " " + msg
}
