// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Shardj/code-genie-cli/internal/config"
	"github.com/Shardj/code-genie-cli/internal/ui/styles"
)

// KeyValidator checks an API key against the completion service.
type KeyValidator func(ctx context.Context, key, baseURL string) error

// EnsureAPIKey returns the stored API key. When none is stored it asks for
// one, validates it and saves it to the credential file. A missing or
// rejected key is a FatalError.
func EnsureAPIKey(ctx context.Context, p Prompter, out io.Writer, baseURL string, validate KeyValidator) (string, error) {
	key, err := config.LoadAPIKey()
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, config.ErrNoCredentials) {
		return "", Fatal(err)
	}

	path, _ := config.APIKeyPath()
	fmt.Fprintln(out, styles.Title.Render("Welcome to code-genie-cli!"))
	fmt.Fprintln(out, styles.Info.Render("No API key found. Create one at https://platform.openai.com/account/api-keys"))
	if path != "" {
		fmt.Fprintln(out, styles.Muted.Render("It will be stored in "+path))
	}

	key, err = p.ReadSecret("API key: ")
	if err != nil {
		return "", Fatalf("reading API key: %w", err)
	}
	if key == "" {
		return "", Fatal(config.ErrNoCredentials)
	}

	if validate != nil {
		if err := validate(ctx, key, baseURL); err != nil {
			fmt.Fprintln(out, styles.Indicator(styles.Error, styles.StatusIndicators.Error, "The API key was rejected."))
			return "", Fatalf("invalid API key: %w", err)
		}
	}

	saved, err := config.SaveAPIKey(key)
	if err != nil {
		return "", Fatalf("saving API key: %w", err)
	}
	fmt.Fprintln(out, styles.Indicator(styles.Success, styles.StatusIndicators.Success, "API key saved to "+saved))
	return key, nil
}
