// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Shardj/code-genie-cli/internal/util"
)

// APIKeyEnv takes precedence over the credential file.
const APIKeyEnv = "CODEGENIE_API_KEY"

// ErrNoCredentials means no API key is configured anywhere.
var ErrNoCredentials = errors.New("no API key configured")

// APIKeyPath returns the path of the plain-text credential file.
func APIKeyPath() (string, error) {
	return inConfigDir("openai_key.txt")
}

// LoadAPIKey returns the API key from the environment or the credential
// file, trimmed of surrounding whitespace.
func LoadAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		return key, nil
	}

	path, err := APIKeyPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential file: %w", err)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", ErrNoCredentials
	}
	return key, nil
}

// SaveAPIKey stores key in the credential file readable only by the owner
// and returns the file's path.
func SaveAPIKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrNoCredentials
	}
	path, err := APIKeyPath()
	if err != nil {
		return "", err
	}
	if err := util.AtomicWriteFile(path, []byte(key+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to save API key: %w", err)
	}
	return path, nil
}
