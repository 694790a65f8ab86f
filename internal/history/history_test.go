// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shardj/code-genie-cli/internal/model"
)

func TestBoundedHistory_EvictionScenario(t *testing.T) {
	h := New(100)

	require.NoError(t, h.Add(model.NewTurn(model.RoleSystem, "sys", 50)))
	require.NoError(t, h.Add(model.NewTurn(model.RoleUser, "question", 40)))

	msgs, err := h.Snapshot()
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, 90, h.TotalTokens())

	require.NoError(t, h.Add(model.NewTurn(model.RoleAssistant, "answer", 40)))
	assert.Equal(t, 130, h.TotalTokens(), "add does not restrain")

	msgs, err = h.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []model.Message{
		{Role: model.RoleSystem, Content: "sys"},
		{Role: model.RoleAssistant, Content: "answer"},
	}, msgs)
	assert.Equal(t, 90, h.TotalTokens())
}

func TestBoundedHistory_PinnedTurnSurvives(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	h := New(500)
	require.NoError(t, h.Add(model.NewTurn(model.RoleSystem, "pinned", 120)))

	for i := 0; i < 300; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		require.NoError(t, h.Add(model.NewTurn(role, "x", rng.Intn(200))))

		msgs, err := h.Snapshot()
		require.NoError(t, err)
		require.NotEmpty(t, msgs)
		assert.Equal(t, model.RoleSystem, msgs[0].Role)
		assert.Equal(t, "pinned", msgs[0].Content)
		assert.True(t, h.TotalTokens() <= h.Limit() || h.Len() == 1,
			"total %d over limit %d with %d turns", h.TotalTokens(), h.Limit(), h.Len())
	}
}

func TestBoundedHistory_SnapshotKeepsOrder(t *testing.T) {
	h := New(1000)
	require.NoError(t, h.Add(model.NewTurn(model.RoleSystem, "s", 1)))
	for _, c := range []string{"a", "b", "c", "d"} {
		require.NoError(t, h.Add(model.NewTurn(model.RoleUser, c, 1)))
	}

	msgs, err := h.Snapshot()
	require.NoError(t, err)

	var got []string
	for _, m := range msgs {
		got = append(got, m.Content)
	}
	assert.Equal(t, []string{"s", "a", "b", "c", "d"}, got)
}

func TestBoundedHistory_SystemTurnOverBudget(t *testing.T) {
	h := New(10)
	require.NoError(t, h.Add(model.NewTurn(model.RoleSystem, "huge", 11)))
	require.NoError(t, h.Add(model.NewTurn(model.RoleUser, "hi", 3)))

	_, err := h.Snapshot()
	require.ErrorIs(t, err, ErrSystemTurnOverBudget)
	assert.Equal(t, 1, h.Len(), "user turn evicted before failing")
}

func TestBoundedHistory_NegativeCost(t *testing.T) {
	h := New(10)
	err := h.Add(model.NewTurn(model.RoleSystem, "s", -1))
	assert.ErrorIs(t, err, ErrNegativeCost)
	assert.Equal(t, 0, h.Len())
}

func TestBoundedHistory_EvictHook(t *testing.T) {
	var evicted []string
	h := New(10, WithEvictHook(func(t model.Turn) {
		evicted = append(evicted, t.Content)
	}))

	require.NoError(t, h.Add(model.NewTurn(model.RoleSystem, "s", 2)))
	require.NoError(t, h.Add(model.NewTurn(model.RoleUser, "one", 5)))
	require.NoError(t, h.Add(model.NewTurn(model.RoleAssistant, "two", 5)))
	require.NoError(t, h.Restrain())

	assert.Equal(t, []string{"one"}, evicted)
	assert.Equal(t, 7, h.TotalTokens())
}

func TestBoundedHistory_Reset(t *testing.T) {
	h := New(100)
	require.NoError(t, h.Add(model.NewTurn(model.RoleSystem, "s", 30)))
	require.NoError(t, h.Add(model.NewTurn(model.RoleUser, "u", 20)))

	h.Reset()

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 30, h.TotalTokens())
	pinned, ok := h.Pinned()
	require.True(t, ok)
	assert.Equal(t, "s", pinned.Content)
}

func TestBoundedHistory_Empty(t *testing.T) {
	h := New(0)
	assert.Equal(t, DefaultTokenLimit, h.Limit())

	msgs, err := h.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, msgs)
	_, ok := h.Pinned()
	assert.False(t, ok)
}
