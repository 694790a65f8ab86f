// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shardj/code-genie-cli/internal/history"
	"github.com/Shardj/code-genie-cli/internal/model"
)

// =============================================================================
// TEST SERVER
// =============================================================================

type cannedResponse struct {
	status       int
	content      string
	finishReason string
	prompt       int
	completion   int
	noChoices    bool
}

// fakeAPI serves /chat/completions from a queue of canned responses and
// records every request it receives.
type fakeAPI struct {
	t         *testing.T
	mu        sync.Mutex
	responses []cannedResponse
	requests  []openai.ChatCompletionRequest
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/v1/models":
		if r.Header.Get("Authorization") != "Bearer good-key" {
			writeError(w, http.StatusUnauthorized, "Incorrect API key provided")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-3.5-turbo","object":"model"}]}`))
		return
	case "/v1/chat/completions":
	default:
		http.NotFound(w, r)
		return
	}

	var req openai.ChatCompletionRequest
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
	f.requests = append(f.requests, req)

	require.NotEmpty(f.t, f.responses, "unexpected request")
	resp := f.responses[0]
	f.responses = f.responses[1:]

	if resp.status != 0 && resp.status != http.StatusOK {
		writeError(w, resp.status, "upstream says no")
		return
	}

	choices := `[]`
	if !resp.noChoices {
		choices = fmt.Sprintf(`[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":%q}]`,
			resp.content, resp.finishReason)
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"id":"cmpl-1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo",`+
		`"choices":%s,"usage":{"prompt_tokens":%d,"completion_tokens":%d,"total_tokens":%d}}`,
		choices, resp.prompt, resp.completion, resp.prompt+resp.completion)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":{"message":%q,"type":"invalid_request_error","code":null}}`, msg)
}

func newTestClient(t *testing.T, cfg Config, responses ...cannedResponse) (*Client, *fakeAPI, *history.BoundedHistory) {
	t.Helper()
	api := &fakeAPI{t: t, responses: responses}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	h := history.New(2048)
	c, err := NewClient("good-key", srv.URL+"/v1", h, cfg)
	require.NoError(t, err)
	return c, api, h
}

// =============================================================================
// SEND
// =============================================================================

func TestSend_RecordsTurnsWithCosts(t *testing.T) {
	c, api, h := newTestClient(t, DefaultConfig(),
		cannedResponse{content: "Hello, I am ready.", finishReason: "stop", prompt: 50, completion: 10},
		cannedResponse{content: "  ```python\nprint(1)\n```  ", finishReason: "stop", prompt: 80, completion: 12},
	)
	ctx := context.Background()

	reply, err := c.Send(ctx, "system rules", model.RoleSystem)
	require.NoError(t, err)
	assert.Equal(t, "Hello, I am ready.", reply.Content)
	assert.Equal(t, 60, h.TotalTokens())

	reply, err = c.Send(ctx, "print one", model.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "```python\nprint(1)\n```", reply.Content)
	assert.Equal(t, Usage{PromptTokens: 80, CompletionTokens: 12}, reply.Usage)
	assert.False(t, reply.Truncated)

	turns := h.Turns()
	require.Len(t, turns, 4)
	assert.Equal(t, model.NewTurn(model.RoleSystem, "system rules", 50), turns[0])
	assert.Equal(t, model.NewTurn(model.RoleAssistant, "Hello, I am ready.", 10), turns[1])
	assert.Equal(t, model.NewTurn(model.RoleUser, "print one", 20), turns[2])
	assert.Equal(t, 12, turns[3].TokenCost)

	require.Len(t, api.requests, 2)
	second := api.requests[1]
	assert.Equal(t, "gpt-3.5-turbo", second.Model)
	assert.InDelta(t, 0.3, second.Temperature, 0.0001)
	require.Len(t, second.Messages, 3)
	assert.Equal(t, "system", second.Messages[0].Role)
	assert.Equal(t, "assistant", second.Messages[1].Role)
	assert.Equal(t, openai.ChatCompletionMessage{Role: "user", Content: "print one"}, second.Messages[2])
}

func TestSend_NegativeCostClampedToZero(t *testing.T) {
	c, _, h := newTestClient(t, DefaultConfig(),
		cannedResponse{content: "a", finishReason: "stop", prompt: 50, completion: 30},
		cannedResponse{content: "b", finishReason: "stop", prompt: 70, completion: 5},
	)

	_, err := c.Send(context.Background(), "sys", model.RoleSystem)
	require.NoError(t, err)
	_, err = c.Send(context.Background(), "hi", model.RoleUser)
	require.NoError(t, err)

	turns := h.Turns()
	assert.Equal(t, 0, turns[2].TokenCost)
}

func TestSend_Truncated(t *testing.T) {
	c, api, h := newTestClient(t, DefaultConfig(),
		cannedResponse{content: "partial", finishReason: "length", prompt: 10, completion: 100},
	)

	reply, err := c.Send(context.Background(), "sys", model.RoleSystem)
	require.NoError(t, err)
	assert.True(t, reply.Truncated)
	assert.False(t, reply.Retried)
	assert.Equal(t, "partial", reply.Content)
	assert.Len(t, api.requests, 1)
	assert.Equal(t, 2, h.Len())
}

func TestSend_TruncationRetry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RetryOnTruncation = true
	cfg.MaxTokens = 256
	c, api, h := newTestClient(t, cfg,
		cannedResponse{content: "partial", finishReason: "length", prompt: 10, completion: 256},
		cannedResponse{content: "complete", finishReason: "stop", prompt: 10, completion: 400},
	)

	reply, err := c.Send(context.Background(), "sys", model.RoleSystem)
	require.NoError(t, err)
	assert.True(t, reply.Retried)
	assert.False(t, reply.Truncated)
	assert.Equal(t, "complete", reply.Content)

	require.Len(t, api.requests, 2)
	assert.Equal(t, 256, api.requests[0].MaxTokens)
	assert.Equal(t, DefaultRetryMaxTokens, api.requests[1].MaxTokens)
	assert.Equal(t, 410, h.TotalTokens(), "only the final response is recorded")
}

func TestSend_RequestPacing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequestsPerMinute = 600
	c, api, _ := newTestClient(t, cfg,
		cannedResponse{content: "one", finishReason: "stop", prompt: 10, completion: 1},
		cannedResponse{content: "two", finishReason: "stop", prompt: 20, completion: 1},
	)
	ctx := context.Background()

	start := time.Now()
	_, err := c.Send(ctx, "sys", model.RoleSystem)
	require.NoError(t, err)
	_, err = c.Send(ctx, "again", model.RoleUser)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Len(t, api.requests, 2)
}

func TestSend_PacingHonoursCancellation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequestsPerMinute = 1
	c, _, _ := newTestClient(t, cfg,
		cannedResponse{content: "one", finishReason: "stop", prompt: 10, completion: 1},
	)
	_, err := c.Send(context.Background(), "sys", model.RoleSystem)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Send(ctx, "again", model.RoleUser)
	require.Error(t, err)
}

func TestSend_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrAuthFailed},
		{http.StatusPaymentRequired, ErrInsufficientCredits},
		{http.StatusNotFound, ErrModelNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c, _, h := newTestClient(t, DefaultConfig(), cannedResponse{status: tt.status})

			_, err := c.Send(context.Background(), "sys", model.RoleSystem)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, h.Len(), "history untouched on error")
		})
	}
}

func TestSend_ServerErrorIsCompletionError(t *testing.T) {
	c, _, _ := newTestClient(t, DefaultConfig(), cannedResponse{status: http.StatusInternalServerError})

	_, err := c.Send(context.Background(), "sys", model.RoleSystem)
	var ce *CompletionError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, http.StatusInternalServerError, ce.Status)
}

func TestSend_EmptyChoices(t *testing.T) {
	c, _, _ := newTestClient(t, DefaultConfig(), cannedResponse{noChoices: true})

	_, err := c.Send(context.Background(), "sys", model.RoleSystem)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestSend_SystemTurnOverBudget(t *testing.T) {
	h := history.New(10)
	require.NoError(t, h.Add(model.NewTurn(model.RoleSystem, "huge", 50)))
	c := NewClientWithAPI(&scriptedAPI{}, h, DefaultConfig())

	_, err := c.Send(context.Background(), "hi", model.RoleUser)
	assert.ErrorIs(t, err, history.ErrSystemTurnOverBudget)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("", "", history.New(0), DefaultConfig())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// =============================================================================
// INSPECTOR
// =============================================================================

type scriptedAPI struct {
	reply string
}

func (s *scriptedAPI) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: "assistant", Content: s.reply},
			FinishReason: openai.FinishReasonStop,
		}},
		Usage: openai.Usage{PromptTokens: 5, CompletionTokens: 3},
	}, nil
}

type overrideInspector struct {
	seen []model.Message
}

func (o *overrideInspector) BeforeSend(msgs []model.Message) { o.seen = msgs }

func (o *overrideInspector) AfterReceive(_ openai.ChatCompletionResponse, _ string) string {
	return "overridden"
}

func TestSend_InspectorOverridesReply(t *testing.T) {
	h := history.New(100)
	insp := &overrideInspector{}
	c := NewClientWithAPI(&scriptedAPI{reply: "original"}, h, DefaultConfig()).WithInspector(insp)

	reply, err := c.Send(context.Background(), "sys", model.RoleSystem)
	require.NoError(t, err)

	assert.Equal(t, "overridden", reply.Content)
	assert.Equal(t, []model.Message{{Role: model.RoleSystem, Content: "sys"}}, insp.seen)
	assert.Equal(t, "overridden", h.Turns()[1].Content)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func TestValidateKey(t *testing.T) {
	srv := httptest.NewServer(&fakeAPI{t: t})
	defer srv.Close()

	assert.NoError(t, ValidateKey(context.Background(), "good-key", srv.URL+"/v1"))
	assert.ErrorIs(t, ValidateKey(context.Background(), "bad-key", srv.URL+"/v1"), ErrAuthFailed)
	assert.ErrorIs(t, ValidateKey(context.Background(), "  ", srv.URL+"/v1"), ErrNotConfigured)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "none", Fingerprint(""))
	fp := Fingerprint("sk-secret")
	assert.Len(t, fp, 8)
	assert.NotContains(t, fp, "secret")
	assert.Equal(t, fp, Fingerprint("sk-secret"))
}
