// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles holds the color palette and text styles of the CLI.
//
// All colors are Lip Gloss AdaptiveColor values, so they follow the
// terminal's light or dark background. Every status message also carries an
// ASCII indicator from StatusIndicators for readers who cannot rely on color.
//
// # Usage
//
//	fmt.Println(styles.Indicator(styles.Warning, styles.StatusIndicators.Warning, "reply truncated"))
package styles
