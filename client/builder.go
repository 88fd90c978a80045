package client

import (
	"encoding/json"

	"github.com/accordkit/accord/model"
)

// toDocument converts a typed value into the generic form used in
// payload documents, so the limit checks and the wire encoder see the
// same shape the server will.
func toDocument(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// MessageBuilder stages an outbound message. Fields left untouched are
// omitted from the payload entirely, so the server applies its own
// defaults; Build produces the payload document handed to validation
// and the transport.
type MessageBuilder struct {
	content         *string
	embeds          []model.Embed
	embedsSet       bool
	tts             bool
	allowedMentions *model.AllowedMentions
	reference       *model.MessageReference
	stickerIDs      []model.Snowflake
	flags           *model.MessageFlags
}

// NewMessageBuilder creates an empty send builder.
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{}
}

// Content sets the message text. Setting an empty string is an explicit
// request for empty content, distinct from never calling Content.
func (b *MessageBuilder) Content(content string) *MessageBuilder {
	b.content = &content
	return b
}

// Embed appends one embed.
func (b *MessageBuilder) Embed(embed model.Embed) *MessageBuilder {
	b.embeds = append(b.embeds, embed)
	b.embedsSet = true
	return b
}

// Embeds replaces the embed list.
func (b *MessageBuilder) Embeds(embeds []model.Embed) *MessageBuilder {
	b.embeds = embeds
	b.embedsSet = true
	return b
}

// TTS marks the message for text-to-speech playback.
func (b *MessageBuilder) TTS(tts bool) *MessageBuilder {
	b.tts = tts
	return b
}

// AllowedMentions attaches a mention override. Attaching any override
// suppresses every mention category not re-enabled through its Parse list.
func (b *MessageBuilder) AllowedMentions(am *model.AllowedMentions) *MessageBuilder {
	b.allowedMentions = am
	return b
}

// Reference marks the message as an inline reply to another message.
func (b *MessageBuilder) Reference(ref *model.MessageReference) *MessageBuilder {
	b.reference = ref
	return b
}

// StickerIDs sets the stickers to attach.
func (b *MessageBuilder) StickerIDs(ids []model.Snowflake) *MessageBuilder {
	b.stickerIDs = ids
	return b
}

// Flags sets message flags, e.g. FlagSuppressEmbeds.
func (b *MessageBuilder) Flags(flags model.MessageFlags) *MessageBuilder {
	b.flags = &flags
	return b
}

// Build produces the payload document.
func (b *MessageBuilder) Build() map[string]any {
	payload := make(map[string]any)
	if b.content != nil {
		payload["content"] = *b.content
	}
	if b.embedsSet {
		payload["embeds"] = toDocument(b.embeds)
	}
	if b.tts {
		payload["tts"] = true
	}
	if b.allowedMentions != nil {
		payload["allowed_mentions"] = toDocument(b.allowedMentions)
	}
	if b.reference != nil {
		payload["message_reference"] = toDocument(b.reference)
	}
	if len(b.stickerIDs) > 0 {
		payload["sticker_ids"] = toDocument(b.stickerIDs)
	}
	if b.flags != nil {
		payload["flags"] = uint64(*b.flags)
	}
	return payload
}

// EditBuilder stages a message edit. Edits are partial: only fields the
// builder touched reach the server, everything else is preserved by the
// pre-fill performed in Messages.Edit.
type EditBuilder struct {
	content     *string
	embeds      []model.Embed
	embedsSet   bool
	attachments []model.Snowflake
	attachSet   bool
	flags       *model.MessageFlags
}

// NewEditBuilder creates an empty edit builder.
func NewEditBuilder() *EditBuilder {
	return &EditBuilder{}
}

// Content sets the new message text. An explicit empty string clears
// the content; not calling Content leaves it unchanged.
func (b *EditBuilder) Content(content string) *EditBuilder {
	b.content = &content
	return b
}

// Embed appends one embed.
func (b *EditBuilder) Embed(embed model.Embed) *EditBuilder {
	b.embeds = append(b.embeds, embed)
	b.embedsSet = true
	return b
}

// Embeds replaces the embed list.
func (b *EditBuilder) Embeds(embeds []model.Embed) *EditBuilder {
	b.embeds = embeds
	b.embedsSet = true
	return b
}

// KeepAttachment keeps an existing attachment across the edit;
// attachments not kept are removed by the server.
func (b *EditBuilder) KeepAttachment(id model.Snowflake) *EditBuilder {
	b.attachments = append(b.attachments, id)
	b.attachSet = true
	return b
}

// SuppressEmbeds toggles the suppress-embeds flag.
func (b *EditBuilder) SuppressEmbeds(suppress bool) *EditBuilder {
	var flags model.MessageFlags
	if b.flags != nil {
		flags = *b.flags
	}
	if suppress {
		flags |= model.FlagSuppressEmbeds
	} else {
		flags &^= model.FlagSuppressEmbeds
	}
	b.flags = &flags
	return b
}

// Build produces the payload document.
func (b *EditBuilder) Build() map[string]any {
	payload := make(map[string]any)
	if b.content != nil {
		payload["content"] = *b.content
	}
	if b.embedsSet {
		payload["embeds"] = toDocument(b.embeds)
	}
	if b.attachSet {
		kept := make([]any, 0, len(b.attachments))
		for _, id := range b.attachments {
			kept = append(kept, map[string]any{"id": id.String()})
		}
		payload["attachments"] = kept
	}
	if b.flags != nil {
		payload["flags"] = uint64(*b.flags)
	}
	return payload
}

// prepareEdit pre-fills an edit builder from the message's current
// state so partial edits preserve the rest. Pre-fill skips empty
// content: a later explicit Content("") from the caller then remains
// distinguishable from "no change".
func prepareEdit(msg *model.Message) *EditBuilder {
	b := NewEditBuilder()
	if msg.Content != "" {
		b.Content(msg.Content)
	}
	b.Embeds(msg.Embeds)
	for _, attachment := range msg.Attachments {
		b.KeepAttachment(attachment.ID)
	}
	return b
}
