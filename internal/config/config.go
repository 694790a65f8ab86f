// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"

	"github.com/Shardj/code-genie-cli/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete code-genie-cli configuration.
type Config struct {
	// Debug enables debug logging and the request inspector.
	Debug bool `toml:"debug"`

	Model    ModelConfig    `toml:"model"`
	History  HistoryConfig  `toml:"history"`
	Executor ExecutorConfig `toml:"executor"`
	UI       UIConfig       `toml:"ui"`
}

// ModelConfig contains completion API settings. They are read once when a
// session starts.
type ModelConfig struct {
	Name               string  `toml:"name"`
	BaseURL            string  `toml:"base_url"`
	Temperature        float64 `toml:"temperature"`
	MaxTokens          int     `toml:"max_tokens"`
	RetryOnTruncation  bool    `toml:"retry_on_truncation"`
	RetryMaxTokens     int     `toml:"retry_max_tokens"`
	RequestTimeoutSecs int     `toml:"request_timeout_secs"`
	RequestsPerMinute  int     `toml:"requests_per_minute"`
}

// RequestTimeout returns the per-request timeout.
func (m ModelConfig) RequestTimeout() time.Duration {
	return time.Duration(m.RequestTimeoutSecs) * time.Second
}

// HistoryConfig contains conversation memory settings.
type HistoryConfig struct {
	TokenLimit int `toml:"token_limit"`
}

// ExecutorConfig contains script execution settings. They are re-read before
// every run, so edits apply without a restart.
type ExecutorConfig struct {
	Interpreter    string   `toml:"interpreter"`
	Args           []string `toml:"args"`
	FileSuffix     string   `toml:"file_suffix"`
	TimeoutSecs    int      `toml:"timeout_secs"`
	MaxOutputSize  int      `toml:"max_output_size"`
	OutputMode     string   `toml:"output_mode"`
	LiveOutput     bool     `toml:"live_output"`
	PollIntervalMs int      `toml:"poll_interval_ms"`
}

// Timeout returns the execution deadline. Zero disables it.
func (e ExecutorConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSecs) * time.Second
}

// PollInterval returns how long a single output wait may block.
func (e ExecutorConfig) PollInterval() time.Duration {
	return time.Duration(e.PollIntervalMs) * time.Millisecond
}

// UIConfig contains terminal presentation settings.
type UIConfig struct {
	RenderMarkdown bool `toml:"render_markdown"`
	HighlightCode  bool `toml:"highlight_code"`
	Spinner        bool `toml:"spinner"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultModelName      = "gpt-3.5-turbo"
	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultTemperature    = 0.3
	DefaultRetryMaxTokens = 4096
	DefaultRequestTimeout = 120
	DefaultTokenLimit     = 2048
	DefaultFileSuffix     = ".py"
	DefaultExecTimeout    = 60
	DefaultMaxOutputSize  = 1000
	DefaultOutputMode     = "lines"
	DefaultPollIntervalMs = 100
)

// DefaultInterpreter returns the script interpreter for this platform.
func DefaultInterpreter() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// Default returns a configuration with every setting at its default.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Name:               DefaultModelName,
			BaseURL:            DefaultBaseURL,
			Temperature:        DefaultTemperature,
			RetryMaxTokens:     DefaultRetryMaxTokens,
			RequestTimeoutSecs: DefaultRequestTimeout,
		},
		History: HistoryConfig{
			TokenLimit: DefaultTokenLimit,
		},
		Executor: ExecutorConfig{
			Interpreter:    DefaultInterpreter(),
			Args:           []string{},
			FileSuffix:     DefaultFileSuffix,
			TimeoutSecs:    DefaultExecTimeout,
			MaxOutputSize:  DefaultMaxOutputSize,
			OutputMode:     DefaultOutputMode,
			LiveOutput:     true,
			PollIntervalMs: DefaultPollIntervalMs,
		},
		UI: UIConfig{
			RenderMarkdown: true,
			HighlightCode:  true,
			Spinner:        true,
		},
	}
}

// SetDefaults fills settings whose zero value is never meaningful.
func (c *Config) SetDefaults() {
	if c.Model.Name == "" {
		c.Model.Name = DefaultModelName
	}
	if c.Model.BaseURL == "" {
		c.Model.BaseURL = DefaultBaseURL
	}
	if c.Model.RetryMaxTokens == 0 {
		c.Model.RetryMaxTokens = DefaultRetryMaxTokens
	}
	if c.Model.RequestTimeoutSecs == 0 {
		c.Model.RequestTimeoutSecs = DefaultRequestTimeout
	}
	if c.History.TokenLimit == 0 {
		c.History.TokenLimit = DefaultTokenLimit
	}
	if c.Executor.Interpreter == "" {
		c.Executor.Interpreter = DefaultInterpreter()
	}
	if c.Executor.FileSuffix == "" {
		c.Executor.FileSuffix = DefaultFileSuffix
	}
	if c.Executor.MaxOutputSize == 0 {
		c.Executor.MaxOutputSize = DefaultMaxOutputSize
	}
	if c.Executor.PollIntervalMs == 0 {
		c.Executor.PollIntervalMs = DefaultPollIntervalMs
	}
	if c.Executor.OutputMode == "" {
		c.Executor.OutputMode = DefaultOutputMode
	}
	if c.Executor.Args == nil {
		c.Executor.Args = []string{}
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Executor.Args = append([]string{}, c.Executor.Args...)
	return &clone
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDirEnv overrides the configuration directory.
const ConfigDirEnv = "CODEGENIE_CONFIG_DIR"

// ConfigDir returns the code-genie-cli configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".code-genie-cli"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	return inConfigDir("config.toml")
}

// InputHistoryPath returns the path of the line editor's recall file.
func InputHistoryPath() (string, error) {
	return inConfigDir("chat_history")
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return dir, os.MkdirAll(dir, 0o700)
}

func inConfigDir(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// =============================================================================
// LOAD AND SAVE
// =============================================================================

// Load reads the default config file. A missing file yields the defaults.
// Environment overrides are applied before validation.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the config file at path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML with 0600 permissions.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# code-genie-cli configuration\n")
	buf.WriteString("# Executor and UI settings apply to the next run without a restart.\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// WriteDefaultIfMissing creates the config file with defaults so users have
// something to edit. It reports whether a file was written.
func WriteDefaultIfMissing(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	return true, Save(Default(), path)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
//   - CODEGENIE_MODEL: overrides model.name
//   - CODEGENIE_BASE_URL: overrides model.base_url
//   - CODEGENIE_INTERPRETER: overrides executor.interpreter
//   - CODEGENIE_TIMEOUT: overrides executor.timeout_secs
//   - CODEGENIE_TOKEN_LIMIT: overrides history.token_limit
//   - CODEGENIE_DEBUG: overrides debug
//
// CODEGENIE_API_KEY is read by LoadAPIKey, not stored here.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CODEGENIE_MODEL"); v != "" {
		c.Model.Name = v
	}
	if v := os.Getenv("CODEGENIE_BASE_URL"); v != "" {
		c.Model.BaseURL = v
	}
	if v := os.Getenv("CODEGENIE_INTERPRETER"); v != "" {
		c.Executor.Interpreter = v
	}
	if v := os.Getenv("CODEGENIE_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Executor.TimeoutSecs = n
		} else {
			log.Warn().Str("value", v).Msg("ignoring non-numeric CODEGENIE_TIMEOUT")
		}
	}
	if v := os.Getenv("CODEGENIE_TOKEN_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.History.TokenLimit = n
		} else {
			log.Warn().Str("value", v).Msg("ignoring non-numeric CODEGENIE_TOKEN_LIMIT")
		}
	}
	if v := os.Getenv("CODEGENIE_DEBUG"); v != "" {
		c.Debug = v == "1" || strings.EqualFold(v, "true")
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every setting and returns all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Model
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		add("model.temperature", "must be between 0 and 2, got %g", c.Model.Temperature)
	}
	if c.Model.MaxTokens < 0 {
		add("model.max_tokens", "must not be negative, got %d", c.Model.MaxTokens)
	}
	if c.Model.RetryMaxTokens <= 0 {
		add("model.retry_max_tokens", "must be positive, got %d", c.Model.RetryMaxTokens)
	}
	if c.Model.RequestTimeoutSecs < 0 {
		add("model.request_timeout_secs", "must not be negative, got %d", c.Model.RequestTimeoutSecs)
	}
	if c.Model.RequestsPerMinute < 0 {
		add("model.requests_per_minute", "must not be negative, got %d", c.Model.RequestsPerMinute)
	}
	if u, err := url.Parse(c.Model.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("model.base_url", "must be an http(s) URL, got %q", c.Model.BaseURL)
	}

	// History
	if c.History.TokenLimit <= 0 {
		add("history.token_limit", "must be positive, got %d", c.History.TokenLimit)
	}

	// Executor
	if strings.TrimSpace(c.Executor.Interpreter) == "" {
		add("executor.interpreter", "must not be empty")
	}
	if c.Executor.TimeoutSecs < 0 {
		add("executor.timeout_secs", "must not be negative (0 disables the limit), got %d", c.Executor.TimeoutSecs)
	}
	if c.Executor.MaxOutputSize <= 0 {
		add("executor.max_output_size", "must be positive, got %d", c.Executor.MaxOutputSize)
	}
	if m := c.Executor.OutputMode; m != "lines" && m != "bytes" {
		add("executor.output_mode", "must be \"lines\" or \"bytes\", got %q", m)
	}
	if c.Executor.PollIntervalMs <= 0 {
		add("executor.poll_interval_ms", "must be positive, got %d", c.Executor.PollIntervalMs)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			log.Warn().Err(err).Msg("using default configuration")
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
