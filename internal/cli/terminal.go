// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Replies and script output go to stdout; the spinner goes to stderr. Each
// stream is styled only when it reaches a terminal, so piping a session to
// a file yields plain text.
func init() {
	lipgloss.SetColorProfile(colorProfile(os.Getenv("NO_COLOR"), os.Getenv("FORCE_COLOR"), IsStdoutTTY()))
}

// IsStdoutTTY reports whether replies are shown on a terminal. Markdown
// rendering and code highlighting depend on it.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsStderrTTY reports whether the spinner has a terminal to draw on.
func IsStderrTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

const (
	// DefaultTerminalWidth wraps replies when stdout has no size.
	DefaultTerminalWidth = 80

	// MinTerminalWidth keeps code previews readable in narrow panes.
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the column count replies are wrapped to.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	return max(width, MinTerminalWidth)
}

// colorProfile picks the lipgloss profile. NO_COLOR (https://no-color.org/)
// beats FORCE_COLOR, which beats terminal detection.
func colorProfile(noColor, forceColor string, tty bool) termenv.Profile {
	switch {
	case noColor != "":
		return termenv.Ascii
	case forceColor != "", tty:
		return termenv.ColorProfile()
	}
	return termenv.Ascii
}
