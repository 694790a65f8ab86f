// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Shardj/code-genie-cli/internal/ui/components"
	"github.com/Shardj/code-genie-cli/internal/ui/styles"
)

// ruleWidth is the width of the separators around prompts and output.
const ruleWidth = 16

// Renderer writes styled session output. With markdown and highlighting
// off it produces plain text, which is what non-terminal output gets.
type Renderer struct {
	out       io.Writer
	markdown  bool
	highlight bool
	width     int

	md *glamour.TermRenderer
}

// NewRenderer creates a renderer for out. width limits wrapping and code
// previews; zero uses DefaultTerminalWidth.
func NewRenderer(out io.Writer, markdown, highlight bool, width int) *Renderer {
	if width <= 0 {
		width = DefaultTerminalWidth
	}
	r := &Renderer{
		out:       out,
		markdown:  markdown,
		highlight: highlight,
		width:     width,
	}
	if markdown {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width-4),
		)
		if err == nil {
			r.md = md
		}
	}
	return r
}

// Println writes a line.
func (r *Renderer) Println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

// Rule writes a horizontal separator.
func (r *Renderer) Rule(style lipgloss.Style) {
	fmt.Fprintln(r.out, style.Render(strings.Repeat("─", ruleWidth)))
}

// Heading writes a title followed by a separator.
func (r *Renderer) Heading(style lipgloss.Style, title string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, style.Render(title))
	r.Rule(style)
}

// Reply writes a model reply, as markdown when enabled.
func (r *Renderer) Reply(content string) {
	r.Heading(styles.Genie, "Genie:")
	if r.md != nil {
		if rendered, err := r.md.Render(content); err == nil {
			fmt.Fprint(r.out, strings.TrimRight(rendered, "\n")+"\n")
			r.Rule(styles.Genie)
			return
		}
	}
	fmt.Fprintln(r.out, content)
	r.Rule(styles.Genie)
}

// Code writes the candidate script in a numbered preview box.
func (r *Renderer) Code(code, language string) {
	preview := components.NewCodePreview(language, code)
	preview.Highlight = r.highlight
	preview.MaxWidth = r.width
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, preview.Render())
}

// Success writes an [OK] line.
func (r *Renderer) Success(msg string) {
	fmt.Fprintln(r.out, styles.Indicator(styles.Success, styles.StatusIndicators.Success, msg))
}

// Warning writes a [!] line.
func (r *Renderer) Warning(msg string) {
	fmt.Fprintln(r.out, styles.Indicator(styles.Warning, styles.StatusIndicators.Warning, msg))
}

// Error writes an [X] line.
func (r *Renderer) Error(msg string) {
	fmt.Fprintln(r.out, styles.Indicator(styles.Error, styles.StatusIndicators.Error, msg))
}

// Info writes an [i] line.
func (r *Renderer) Info(msg string) {
	fmt.Fprintln(r.out, styles.Indicator(styles.Info, styles.StatusIndicators.Info, msg))
}
