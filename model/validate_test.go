package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverflowLength(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		wantOverflow int
		wantOver     bool
	}{
		{"empty", "", 0, false},
		{"short ascii", "hello", 0, false},
		{"exactly at limit", strings.Repeat("a", MaxContentLength), 0, false},
		{"one over", strings.Repeat("a", MaxContentLength+1), 1, true},
		{"far over", strings.Repeat("a", MaxContentLength+500), 500, true},
		{"multibyte at limit", strings.Repeat("é", MaxContentLength), 0, false},
		{"multibyte one over", strings.Repeat("é", MaxContentLength+1), 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overflow, over := OverflowLength(tt.content)
			assert.Equal(t, tt.wantOver, over)
			assert.Equal(t, tt.wantOverflow, overflow)
		})
	}
}

func TestCheckContentLength(t *testing.T) {
	t.Run("missing content field passes", func(t *testing.T) {
		assert.NoError(t, CheckContentLength(map[string]any{"tts": true}))
	})

	t.Run("non-string content field passes", func(t *testing.T) {
		assert.NoError(t, CheckContentLength(map[string]any{"content": 42}))
	})

	t.Run("content at limit passes", func(t *testing.T) {
		payload := map[string]any{"content": strings.Repeat("a", MaxContentLength)}
		assert.NoError(t, CheckContentLength(payload))
	})

	t.Run("content over limit reports overflow", func(t *testing.T) {
		payload := map[string]any{"content": strings.Repeat("a", MaxContentLength+3)}
		err := CheckContentLength(payload)
		require.Error(t, err)

		var tooLong *ContentTooLongError
		require.ErrorAs(t, err, &tooLong)
		assert.Equal(t, 3, tooLong.Overflow)
	})

	t.Run("code points counted, not bytes", func(t *testing.T) {
		// Each rune is multiple bytes but a single code point.
		payload := map[string]any{"content": strings.Repeat("日", MaxContentLength)}
		assert.NoError(t, CheckContentLength(payload))
	})
}

func embedDoc(title, description string, fields ...[2]string) map[string]any {
	doc := map[string]any{}
	if title != "" {
		doc["title"] = title
	}
	if description != "" {
		doc["description"] = description
	}
	if len(fields) > 0 {
		raw := make([]any, 0, len(fields))
		for _, f := range fields {
			raw = append(raw, map[string]any{"name": f[0], "value": f[1]})
		}
		doc["fields"] = raw
	}
	return doc
}

func TestCheckEmbedLengths(t *testing.T) {
	t.Run("missing embeds field passes", func(t *testing.T) {
		assert.NoError(t, CheckEmbedLengths(map[string]any{}))
	})

	t.Run("count at limit passes", func(t *testing.T) {
		embeds := make([]any, MaxEmbeds)
		for i := range embeds {
			embeds[i] = embedDoc("t", "d")
		}
		assert.NoError(t, CheckEmbedLengths(map[string]any{"embeds": embeds}))
	})

	t.Run("count over limit fails regardless of size", func(t *testing.T) {
		embeds := make([]any, MaxEmbeds+1)
		for i := range embeds {
			embeds[i] = embedDoc("", "tiny")
		}
		err := CheckEmbedLengths(map[string]any{"embeds": embeds})
		assert.ErrorIs(t, err, ErrEmbedCount)
	})

	t.Run("combined text at limit passes", func(t *testing.T) {
		payload := map[string]any{"embeds": []any{
			embedDoc(strings.Repeat("a", 1000), strings.Repeat("b", MaxEmbedLength-1000)),
		}}
		assert.NoError(t, CheckEmbedLengths(payload))
	})

	t.Run("combined text over limit reports overflow", func(t *testing.T) {
		payload := map[string]any{"embeds": []any{
			embedDoc(strings.Repeat("a", 1000), strings.Repeat("b", MaxEmbedLength-1000+7)),
		}}
		err := CheckEmbedLengths(payload)
		require.Error(t, err)

		var tooLarge *EmbedTooLargeError
		require.ErrorAs(t, err, &tooLarge)
		assert.Equal(t, 7, tooLarge.Overflow)
	})

	t.Run("field names and values count toward the total", func(t *testing.T) {
		fields := make([][2]string, 7)
		for i := range fields {
			fields[i] = [2]string{strings.Repeat("n", 100), strings.Repeat("v", 800)}
		}
		payload := map[string]any{"embeds": []any{embedDoc("", "", fields...)}}
		err := CheckEmbedLengths(payload)
		require.Error(t, err)

		var tooLarge *EmbedTooLargeError
		require.ErrorAs(t, err, &tooLarge)
		assert.Equal(t, 7*900-MaxEmbedLength, tooLarge.Overflow)
	})

	t.Run("author name and footer text count toward the total", func(t *testing.T) {
		payload := map[string]any{"embeds": []any{map[string]any{
			"author":      map[string]any{"name": strings.Repeat("a", 3000), "url": strings.Repeat("u", 9000)},
			"footer":      map[string]any{"text": strings.Repeat("f", 3001)},
			"description": "",
		}}}
		err := CheckEmbedLengths(payload)
		require.Error(t, err)

		var tooLarge *EmbedTooLargeError
		require.ErrorAs(t, err, &tooLarge)
		assert.Equal(t, 1, tooLarge.Overflow)
	})

	t.Run("untracked fields are free", func(t *testing.T) {
		payload := map[string]any{"embeds": []any{map[string]any{
			"title": "ok",
			"image": map[string]any{"url": strings.Repeat("u", 20000)},
			"url":   strings.Repeat("u", 20000),
		}}}
		assert.NoError(t, CheckEmbedLengths(payload))
	})

	t.Run("only first offending embed reported", func(t *testing.T) {
		payload := map[string]any{"embeds": []any{
			embedDoc("", strings.Repeat("a", MaxEmbedLength+5)),
			embedDoc("", strings.Repeat("a", MaxEmbedLength+500)),
		}}
		err := CheckEmbedLengths(payload)
		require.Error(t, err)

		var tooLarge *EmbedTooLargeError
		require.ErrorAs(t, err, &tooLarge)
		assert.Equal(t, 5, tooLarge.Overflow)
	})
}

func TestCheckStickerIDs(t *testing.T) {
	t.Run("missing field passes", func(t *testing.T) {
		assert.NoError(t, CheckStickerIDs(map[string]any{}))
	})

	t.Run("at limit passes", func(t *testing.T) {
		payload := map[string]any{"sticker_ids": []any{"1", "2", "3"}}
		assert.NoError(t, CheckStickerIDs(payload))
	})

	t.Run("over limit fails", func(t *testing.T) {
		payload := map[string]any{"sticker_ids": []any{"1", "2", "3", "4"}}
		assert.ErrorIs(t, CheckStickerIDs(payload), ErrStickerCount)
	})
}

func TestCheckLengths_Precedence(t *testing.T) {
	// A payload violating every limit at once reports the content error.
	payload := map[string]any{
		"content":     strings.Repeat("a", MaxContentLength+1),
		"embeds":      make([]any, MaxEmbeds+1),
		"sticker_ids": []any{"1", "2", "3", "4"},
	}
	var tooLong *ContentTooLongError
	assert.ErrorAs(t, CheckLengths(payload), &tooLong)

	// Without the content violation the embed error wins.
	payload["content"] = "fine"
	assert.ErrorIs(t, CheckLengths(payload), ErrEmbedCount)

	// With embeds fixed the sticker error surfaces.
	payload["embeds"] = []any{}
	assert.ErrorIs(t, CheckLengths(payload), ErrStickerCount)

	// Everything in bounds passes.
	payload["sticker_ids"] = []any{"1"}
	assert.NoError(t, CheckLengths(payload))
}
