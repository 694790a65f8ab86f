// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Shardj/code-genie-cli/internal/model"
	"github.com/Shardj/code-genie-cli/internal/util"
)

// DefaultTokenLimit leaves room in a 4K context for the next prompt and reply.
const DefaultTokenLimit = 2048

var (
	// ErrNegativeCost is returned by Add for a turn with a negative token cost.
	ErrNegativeCost = errors.New("turn token cost is negative")

	// ErrSystemTurnOverBudget means the pinned turn alone exceeds the limit.
	// Nothing can be evicted to fix it, so callers treat it as fatal.
	ErrSystemTurnOverBudget = errors.New("system turn alone exceeds the history token limit")
)

// =============================================================================
// BOUNDED HISTORY
// =============================================================================

// BoundedHistory stores conversation turns under a cumulative token budget.
//
// The first turn added is pinned and never evicted; it carries the system
// instructions. Every later turn lives in a FIFO tail from which the oldest
// entry is dropped whenever the budget is exceeded. Not safe for concurrent
// use: only the foreground loop touches it.
type BoundedHistory struct {
	limit int
	head  *model.Turn
	tail  util.Deque[model.Turn]
	total int

	logger  zerolog.Logger
	onEvict func(model.Turn)
}

// Option configures a BoundedHistory.
type Option func(*BoundedHistory)

// WithLogger attaches a logger that records evictions at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *BoundedHistory) {
		h.logger = logger
	}
}

// WithEvictHook registers fn to be called for each evicted turn.
func WithEvictHook(fn func(model.Turn)) Option {
	return func(h *BoundedHistory) {
		h.onEvict = fn
	}
}

// New creates a history with the given token limit. A non-positive limit
// falls back to DefaultTokenLimit.
func New(limit int, opts ...Option) *BoundedHistory {
	if limit <= 0 {
		limit = DefaultTokenLimit
	}
	h := &BoundedHistory{
		limit:  limit,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Limit returns the configured token budget.
func (h *BoundedHistory) Limit() int {
	return h.limit
}

// Add appends a turn. The first turn ever added becomes the pinned head.
// The budget is not enforced here; Snapshot runs the restraining pass.
func (h *BoundedHistory) Add(turn model.Turn) error {
	if turn.TokenCost < 0 {
		return fmt.Errorf("%w: %s turn cost %d", ErrNegativeCost, turn.Role, turn.TokenCost)
	}

	h.logger.Debug().
		Str("role", turn.Role.String()).
		Int("tokens", turn.TokenCost).
		Msg("history add")

	if h.head == nil {
		t := turn
		h.head = &t
	} else {
		h.tail.PushBack(turn)
	}
	h.total += turn.TokenCost
	return nil
}

// TotalTokens returns the summed cost of every stored turn.
func (h *BoundedHistory) TotalTokens() int {
	return h.total
}

// Len returns the number of stored turns including the pinned head.
func (h *BoundedHistory) Len() int {
	if h.head == nil {
		return 0
	}
	return 1 + h.tail.Len()
}

// Pinned returns the pinned head turn, if one has been added.
func (h *BoundedHistory) Pinned() (model.Turn, bool) {
	if h.head == nil {
		return model.Turn{}, false
	}
	return *h.head, true
}

// Turns returns a copy of all stored turns, head first.
func (h *BoundedHistory) Turns() []model.Turn {
	turns := make([]model.Turn, 0, h.Len())
	if h.head != nil {
		turns = append(turns, *h.head)
	}
	h.tail.Each(func(_ int, t model.Turn) {
		turns = append(turns, t)
	})
	return turns
}

// Snapshot restrains the history to the budget and returns the turns as
// role/content messages in chronological order.
func (h *BoundedHistory) Snapshot() ([]model.Message, error) {
	if err := h.Restrain(); err != nil {
		return nil, err
	}

	msgs := make([]model.Message, 0, h.Len())
	for _, t := range h.Turns() {
		msgs = append(msgs, t.Message())
	}
	return msgs, nil
}

// Restrain evicts the oldest unpinned turns until the total fits the limit.
func (h *BoundedHistory) Restrain() error {
	for h.total > h.limit {
		evicted, ok := h.tail.PopFront()
		if !ok {
			return fmt.Errorf("%w: %d tokens over a limit of %d", ErrSystemTurnOverBudget, h.total, h.limit)
		}
		h.total -= evicted.TokenCost

		h.logger.Debug().
			Str("role", evicted.Role.String()).
			Int("tokens", evicted.TokenCost).
			Int("total", h.total).
			Msg("history evicted oldest turn")

		if h.onEvict != nil {
			h.onEvict(evicted)
		}
	}
	return nil
}

// Reset drops every turn except the pinned head.
func (h *BoundedHistory) Reset() {
	h.tail.Clear()
	h.total = 0
	if h.head != nil {
		h.total = h.head.TokenCost
	}
}
