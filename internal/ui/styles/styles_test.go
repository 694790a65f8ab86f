// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndicator(t *testing.T) {
	got := Indicator(Warning, StatusIndicators.Warning, "truncated")
	assert.Contains(t, got, "[!]")
	assert.Contains(t, got, "truncated")
}

func TestStatusIndicatorsAreASCII(t *testing.T) {
	for _, s := range []string{
		StatusIndicators.Success, StatusIndicators.Error,
		StatusIndicators.Warning, StatusIndicators.Info,
	} {
		for _, r := range s {
			assert.Less(t, r, rune(128), "indicator %q", s)
		}
	}
}
