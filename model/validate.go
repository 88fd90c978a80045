package model

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Platform limits on outbound message payloads.
const (
	// MaxContentLength is the content limit in unicode code points.
	MaxContentLength = 2000
	// MaxEmbeds is the embed count limit per message.
	MaxEmbeds = 10
	// MaxEmbedLength caps the combined text of a single embed: author
	// name, description, field names and values, footer text and title.
	MaxEmbedLength = 6000
	// MaxStickers is the sticker count limit per message.
	MaxStickers = 3
)

var (
	// ErrEmbedCount rejects payloads carrying more than MaxEmbeds embeds.
	ErrEmbedCount = errors.New("message has too many embeds")
	// ErrStickerCount rejects payloads carrying more than MaxStickers stickers.
	ErrStickerCount = errors.New("message has too many sticker ids")
)

// ContentTooLongError reports content over the code point limit, with
// the number of code points over it.
type ContentTooLongError struct {
	Overflow int
}

func (e *ContentTooLongError) Error() string {
	return fmt.Sprintf("message content is %d unicode code points over the %d limit", e.Overflow, MaxContentLength)
}

// EmbedTooLargeError reports a single embed whose combined text exceeds
// the limit, with the number of code points over it.
type EmbedTooLargeError struct {
	Overflow int
}

func (e *EmbedTooLargeError) Error() string {
	return fmt.Sprintf("embed text is %d unicode code points over the %d limit", e.Overflow, MaxEmbedLength)
}

// OverflowLength reports how many unicode code points the content is
// over the limit. The second return is false when the content fits.
func OverflowLength(content string) (int, bool) {
	count := utf8.RuneCountInString(content)
	if count > MaxContentLength {
		return count - MaxContentLength, true
	}
	return 0, false
}

// CheckContentLength validates the "content" field of a staged payload
// document, if present.
func CheckContentLength(payload map[string]any) error {
	content, ok := payload["content"].(string)
	if !ok {
		return nil
	}
	if over, ok := OverflowLength(content); ok {
		return &ContentTooLongError{Overflow: over}
	}
	return nil
}

// CheckEmbedLengths validates the "embeds" field of a staged payload
// document: at most MaxEmbeds entries, and each embed's tracked text
// within MaxEmbedLength. Only the first offending embed is reported.
func CheckEmbedLengths(payload map[string]any) error {
	embeds, ok := payload["embeds"].([]any)
	if !ok {
		return nil
	}

	if len(embeds) > MaxEmbeds {
		return ErrEmbedCount
	}

	for _, raw := range embeds {
		embed, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		total := 0

		if author, ok := embed["author"].(map[string]any); ok {
			if name, ok := author["name"].(string); ok {
				total += utf8.RuneCountInString(name)
			}
		}
		if description, ok := embed["description"].(string); ok {
			total += utf8.RuneCountInString(description)
		}
		if fields, ok := embed["fields"].([]any); ok {
			for _, rawField := range fields {
				field, ok := rawField.(map[string]any)
				if !ok {
					continue
				}
				if name, ok := field["name"].(string); ok {
					total += utf8.RuneCountInString(name)
				}
				if value, ok := field["value"].(string); ok {
					total += utf8.RuneCountInString(value)
				}
			}
		}
		if footer, ok := embed["footer"].(map[string]any); ok {
			if text, ok := footer["text"].(string); ok {
				total += utf8.RuneCountInString(text)
			}
		}
		if title, ok := embed["title"].(string); ok {
			total += utf8.RuneCountInString(title)
		}

		if total > MaxEmbedLength {
			return &EmbedTooLargeError{Overflow: total - MaxEmbedLength}
		}
	}

	return nil
}

// CheckStickerIDs validates the "sticker_ids" field of a staged payload
// document, if present.
func CheckStickerIDs(payload map[string]any) error {
	stickers, ok := payload["sticker_ids"].([]any)
	if !ok {
		return nil
	}
	if len(stickers) > MaxStickers {
		return ErrStickerCount
	}
	return nil
}

// CheckLengths runs every payload limit check, stopping at the first
// failure. Content errors take precedence over embed errors, which take
// precedence over sticker errors.
func CheckLengths(payload map[string]any) error {
	if err := CheckContentLength(payload); err != nil {
		return err
	}
	if err := CheckEmbedLengths(payload); err != nil {
		return err
	}
	return CheckStickerIDs(payload)
}
