// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// validateTimeout bounds the key check.
const validateTimeout = 15 * time.Second

// ValidateKey checks key against the model listing endpoint, the cheapest
// authenticated call the API offers.
func ValidateKey(ctx context.Context, key, baseURL string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrNotConfigured
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: validateTimeout}

	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	_, err := openai.NewClientWithConfig(cfg).ListModels(ctx)
	return mapError(err)
}
