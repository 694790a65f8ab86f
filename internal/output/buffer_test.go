// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package output

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBuffer_DropsOldestChunks(t *testing.T) {
	r := NewRingBuffer(10)

	_, _ = r.Write([]byte("aaaa"))
	_, _ = r.Write([]byte("bbbb"))
	assert.Equal(t, "aaaabbbb", r.String())

	_, _ = r.Write([]byte("cccc"))
	assert.Equal(t, "bbbbcccc", r.String())
	assert.Equal(t, 8, r.Len())
	assert.Equal(t, 2, r.Chunks())
}

func TestRingBuffer_OversizedChunk(t *testing.T) {
	r := NewRingBuffer(4)
	_, _ = r.Write([]byte("ab"))
	_, _ = r.Write([]byte("0123456789"))

	assert.Equal(t, "", r.String())
	assert.Equal(t, 0, r.Len())
}

func TestTailBuffer_KeepsSuffix(t *testing.T) {
	tb := NewTailBuffer(5)
	_, _ = tb.Write([]byte("hello"))
	_, _ = tb.Write([]byte(" world"))

	assert.Equal(t, "world", tb.String())
	assert.Equal(t, 5, tb.Len())
}

func TestTailBuffer_RuneBoundary(t *testing.T) {
	tb := NewTailBuffer(4)
	// "é" is two bytes; cutting to 4 would start mid-rune.
	_, _ = tb.Write([]byte("xéabc"))

	assert.True(t, utf8.ValidString(tb.String()))
	assert.Equal(t, "abc", tb.String())
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, DefaultMaxSize, NewRingBuffer(0).Max())
	assert.Equal(t, DefaultMaxSize, NewTailBuffer(-1).Max())
}

// Both variants must stay within the bound and hold a suffix of the full
// stream, whatever the chunk sizes.
func TestBuffers_BoundAndSuffix(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, max := range []int{1, 7, 64, 1000} {
		buffers := map[string]Buffer{
			"ring": NewRingBuffer(max),
			"tail": NewTailBuffer(max),
		}
		for name, buf := range buffers {
			t.Run(fmt.Sprintf("%s/%d", name, max), func(t *testing.T) {
				var all strings.Builder
				for i := 0; i < 200; i++ {
					chunk := strings.Repeat(string(rune('a'+i%26)), rng.Intn(20)+1)
					n, err := buf.Write([]byte(chunk))
					require.NoError(t, err)
					require.Equal(t, len(chunk), n)
					all.WriteString(chunk)

					assert.LessOrEqual(t, buf.Len(), max)
					assert.Equal(t, len(buf.String()), buf.Len())
					assert.True(t, strings.HasSuffix(all.String(), buf.String()))
				}
			})
		}
	}
}

func TestNew_SelectsMode(t *testing.T) {
	assert.IsType(t, &RingBuffer{}, New(ModeLines, 10))
	assert.IsType(t, &RingBuffer{}, New("", 10))
	assert.IsType(t, &TailBuffer{}, New(ModeBytes, 10))

	lines, bytes := New(ModeLines, 6), New(ModeBytes, 6)
	for _, b := range []Buffer{lines, bytes} {
		_, _ = b.Write([]byte("abcd\n"))
		_, _ = b.Write([]byte("ef\n"))
	}
	assert.Equal(t, "ef\n", lines.String())
	assert.Equal(t, "cd\nef\n", bytes.String())
}

func TestClampTail(t *testing.T) {
	assert.Equal(t, "short", ClampTail("short", 10))
	assert.Equal(t, "6789", ClampTail("0123456789", 4))
	assert.Equal(t, "abc", ClampTail("éabc", 4))
	assert.Equal(t, "anything", ClampTail("anything", 0))
}
