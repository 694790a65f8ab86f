// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"regexp"
	"strings"
)

var (
	fencePattern    = regexp.MustCompile("```([\\s\\S]*?)```")
	languagePattern = regexp.MustCompile(`^[A-Za-z0-9_+#.\-]*$`)
)

// CodeBlock is one fenced region of a reply.
type CodeBlock struct {
	Language string
	Code     string
}

// ExtractCodeBlocks returns the fenced regions of reply in order. A language
// tag on the opening fence line is split off; block contents are trimmed.
// Blocks that are empty after trimming are skipped.
func ExtractCodeBlocks(reply string) []CodeBlock {
	matches := fencePattern.FindAllStringSubmatch(reply, -1)
	blocks := make([]CodeBlock, 0, len(matches))
	for _, m := range matches {
		lang, body := splitLanguage(m[1])
		body = strings.TrimSpace(body)
		if body == "" {
			continue
		}
		blocks = append(blocks, CodeBlock{Language: lang, Code: body})
	}
	return blocks
}

// ExtractCode joins every fenced block of reply with "\n" into one script.
// It returns "" when the reply contains no code.
func ExtractCode(reply string) string {
	blocks := ExtractCodeBlocks(reply)
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Code
	}
	return strings.Join(parts, "\n")
}

// blockLanguage returns the first language tag among blocks.
func blockLanguage(blocks []CodeBlock) string {
	for _, b := range blocks {
		if b.Language != "" {
			return b.Language
		}
	}
	return ""
}

// splitLanguage separates the opening fence line from the block body when
// it is a bare language tag. A single-line block is all code.
func splitLanguage(raw string) (lang, body string) {
	first, rest, ok := strings.Cut(raw, "\n")
	if !ok {
		return "", raw
	}
	tag := strings.TrimSpace(first)
	if !languagePattern.MatchString(tag) {
		return "", raw
	}
	return strings.ToLower(tag), rest
}
