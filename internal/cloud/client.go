// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/Shardj/code-genie-cli/internal/history"
	"github.com/Shardj/code-genie-cli/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = openai.GPT3Dot5Turbo

	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTemperature keeps replies close to deterministic.
	DefaultTemperature = 0.3

	// DefaultRetryMaxTokens is the completion budget of a truncation retry.
	DefaultRetryMaxTokens = 4096

	// DefaultRequestTimeout bounds a single completion request.
	DefaultRequestTimeout = 120 * time.Second
)

// =============================================================================
// TYPES
// =============================================================================

// ChatAPI is the part of the go-openai client the completion client needs.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Inspector observes traffic in debug mode. AfterReceive may replace the
// reply text before it is stored and returned.
type Inspector interface {
	BeforeSend(msgs []model.Message)
	AfterReceive(resp openai.ChatCompletionResponse, reply string) string
}

// Config holds the completion settings fixed for a session.
type Config struct {
	Model             string
	Temperature       float32
	MaxTokens         int // 0 leaves the limit to the server
	RetryOnTruncation bool
	RetryMaxTokens    int
	RequestsPerMinute int // 0 means unlimited
	RequestTimeout    time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Model:          DefaultModel,
		Temperature:    DefaultTemperature,
		RetryMaxTokens: DefaultRetryMaxTokens,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// Usage reports the token counts of one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Reply is the result of Send.
type Reply struct {
	Content      string
	FinishReason string
	Usage        Usage
	Truncated    bool
	Retried      bool
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends the bounded conversation to a chat completion endpoint and
// records each exchange in the history.
type Client struct {
	api       ChatAPI
	history   *history.BoundedHistory
	cfg       Config
	limiter   *rate.Limiter
	logger    zerolog.Logger
	inspector Inspector
	apiKey    string
}

// NewClient creates a client for the OpenAI-compatible API at baseURL.
// An empty baseURL uses DefaultBaseURL.
func NewClient(apiKey, baseURL string, h *history.BoundedHistory, cfg Config) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	oc := openai.DefaultConfig(apiKey)
	oc.BaseURL = strings.TrimRight(baseURL, "/")
	oc.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}

	c := newClient(openai.NewClientWithConfig(oc), h, cfg)
	c.apiKey = apiKey
	return c, nil
}

// NewClientWithAPI creates a client over an existing ChatAPI.
func NewClientWithAPI(api ChatAPI, h *history.BoundedHistory, cfg Config) *Client {
	return newClient(api, h, cfg)
}

func newClient(api ChatAPI, h *history.BoundedHistory, cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.RetryMaxTokens <= 0 {
		cfg.RetryMaxTokens = DefaultRetryMaxTokens
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	return &Client{
		api:     api,
		history: h,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  zerolog.Nop(),
	}
}

// WithLogger sets the logger.
func (c *Client) WithLogger(logger zerolog.Logger) *Client {
	c.logger = logger
	return c
}

// WithInspector installs a debug inspector.
func (c *Client) WithInspector(i Inspector) *Client {
	c.inspector = i
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// History returns the conversation the client appends to.
func (c *Client) History() *history.BoundedHistory {
	return c.history
}

// KeyFingerprint returns the first 8 hex chars of the key's SHA-256 hash,
// safe for logs.
func (c *Client) KeyFingerprint() string {
	return Fingerprint(c.apiKey)
}

// Fingerprint hashes key for logging without exposing it.
func Fingerprint(key string) string {
	if key == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:4])
}

// Send appends message with the given role to the bounded conversation,
// requests a completion and stores both turns in the history.
//
// The new message's token cost is the prompt token count minus the history
// total before the call. The reply's cost is the completion token count.
// On any error the history is left as it was after restraining.
func (c *Client) Send(ctx context.Context, message string, role model.Role) (Reply, error) {
	msgs, err := c.history.Snapshot()
	if err != nil {
		return Reply{}, err
	}
	before := c.history.TotalTokens()
	msgs = append(msgs, model.Message{Role: role, Content: message})

	if c.inspector != nil {
		c.inspector.BeforeSend(msgs)
	}

	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    toOpenAI(msgs),
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	resp, err := c.create(ctx, req)
	if err != nil {
		return Reply{}, err
	}

	retried := false
	if isTruncated(resp) && c.cfg.RetryOnTruncation && c.cfg.MaxTokens < c.cfg.RetryMaxTokens {
		c.logger.Debug().
			Int("max_tokens", c.cfg.RetryMaxTokens).
			Msg("response truncated, retrying with a larger completion budget")
		req.MaxTokens = c.cfg.RetryMaxTokens
		resp, err = c.create(ctx, req)
		if err != nil {
			return Reply{}, err
		}
		retried = true
	}

	choice := resp.Choices[0]
	content := choice.Message.Content
	if c.inspector != nil {
		content = c.inspector.AfterReceive(resp, content)
	}
	content = strings.TrimSpace(content)

	cost := resp.Usage.PromptTokens - before
	if cost < 0 {
		c.logger.Debug().
			Int("prompt_tokens", resp.Usage.PromptTokens).
			Int("history_tokens", before).
			Msg("prompt tokens below history total, recording zero cost")
		cost = 0
	}
	if err := c.history.Add(model.NewTurn(role, message, cost)); err != nil {
		return Reply{}, err
	}
	if err := c.history.Add(model.NewTurn(model.RoleAssistant, content, resp.Usage.CompletionTokens)); err != nil {
		return Reply{}, err
	}

	reply := Reply{
		Content:      content,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
		Truncated: isTruncated(resp),
		Retried:   retried,
	}
	if reply.Truncated {
		c.logger.Warn().Str("model", c.cfg.Model).Msg("completion truncated by token limit")
	}
	return reply, nil
}

// create paces and performs one request.
func (c *Client) create(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("waiting for request slot: %w", err)
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	c.logger.Debug().
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Int("max_tokens", req.MaxTokens).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("chat completion")
	if err != nil {
		return resp, mapError(err)
	}
	if len(resp.Choices) == 0 {
		return resp, ErrEmptyResponse
	}
	return resp, nil
}

func isTruncated(resp openai.ChatCompletionResponse) bool {
	return len(resp.Choices) > 0 && resp.Choices[0].FinishReason == openai.FinishReasonLength
}

func toOpenAI(msgs []model.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(msgs))
	for i, m := range msgs {
		out[i] = openai.ChatCompletionMessage{Role: m.Role.String(), Content: m.Content}
	}
	return out
}
