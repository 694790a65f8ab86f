// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watch reloads the config file at path whenever it is written or
// replaced, installs the result with SetGlobal and reports it to onReload.
// A file that fails to load leaves the global config unchanged; onReload
// then receives the error. Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file, because editors and
// AtomicWriteFile replace the file by renaming over it.
func Watch(ctx context.Context, path string, onReload func(*Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			cfg, err := LoadFromPath(path)
			if err == nil {
				SetGlobal(cfg)
				log.Debug().Str("path", path).Msg("config reloaded")
			} else {
				log.Warn().Err(err).Str("path", path).Msg("config reload failed, keeping previous settings")
			}
			if onReload != nil {
				onReload(cfg, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("config watcher error")
		}
	}
}
