// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// WIDTH AND TRUNCATION
// =============================================================================

// TruncateRunes shortens s to at most maxRunes runes, ending with "..." when
// anything was cut.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string([]rune(s)[:maxRunes])
	}
	return string([]rune(s)[:maxRunes-3]) + "..."
}

// StringWidth returns the number of terminal cells s occupies.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth shortens s to fit in maxWidth terminal cells, ending with "..."
// when anything was cut. Wide runes are never split.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// TrimToValidUTF8Suffix drops leading bytes of b until it starts on a rune
// boundary. Used after cutting a byte buffer from the front.
func TrimToValidUTF8Suffix(b []byte) []byte {
	for i := 0; i < len(b) && i < utf8.UTFMax; i++ {
		if utf8.RuneStart(b[i]) {
			return b[i:]
		}
	}
	return b
}

// =============================================================================
// INPUT
// =============================================================================

// NormalizeInput trims surrounding whitespace and converts s to Unicode NFC so
// composed and decomposed forms of the same text compare and count equally.
func NormalizeInput(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// EscapeDoubleQuotes escapes every `"` in s with a backslash.
func EscapeDoubleQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
