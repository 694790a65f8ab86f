// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/Shardj/code-genie-cli/internal/ui/styles"
	"github.com/Shardj/code-genie-cli/internal/util"
)

// =============================================================================
// CODE PREVIEW
// =============================================================================

// CodePreview renders a script with line numbers inside a rounded border,
// as shown before asking whether to run it.
type CodePreview struct {
	Language  string
	Code      string
	Highlight bool
	MaxWidth  int
}

// NewCodePreview creates a highlighted preview 80 cells wide.
func NewCodePreview(language, code string) CodePreview {
	return CodePreview{
		Language:  language,
		Code:      code,
		Highlight: true,
		MaxWidth:  80,
	}
}

// Render returns the bordered preview.
func (c CodePreview) Render() string {
	code := strings.TrimRight(c.Code, "\n")
	if c.Highlight {
		code = Highlight(code, c.Language)
	}

	lines := strings.Split(code, "\n")
	width := len(fmt.Sprint(len(lines)))
	// Border and padding take four cells.
	inner := c.MaxWidth - width - 5

	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(styles.LineNumber.Render(fmt.Sprintf("%*d", width, i+1)))
		sb.WriteString(" ")
		if !c.Highlight && inner > 0 {
			line = util.TruncateWidth(line, inner)
		}
		sb.WriteString(line)
	}
	return styles.CodeBorder.Render(sb.String())
}

// Highlight applies terminal syntax highlighting with chroma. Unknown
// languages are detected from the code; on any failure the code is
// returned unchanged.
func Highlight(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}
