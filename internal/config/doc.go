// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// code-genie-cli.
//
// Settings live in ~/.code-genie-cli/config.toml (BurntSushi/toml). Missing
// keys keep their defaults, CODEGENIE_* environment variables override the
// file, and Validate reports every invalid field at once. The same directory
// holds the plain-text API key file and the line editor's input history.
//
// # Key Types
//
//   - Config: model, history, executor and UI sections
//   - ValidationError, ValidateErrors: field-level validation failures
//
// # Usage
//
//	cfg, err := config.Load()
//	config.SetGlobal(cfg)
//	go config.Watch(ctx, path, onReload)
//
//	key, err := config.LoadAPIKey()
//	if errors.Is(err, config.ErrNoCredentials) {
//		// prompt, validate, then config.SaveAPIKey(key)
//	}
package config
