package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType differentiates regular messages from system messages.
type MessageType int

const (
	MessageTypeRegular                MessageType = 0
	MessageTypeRecipientAdd           MessageType = 1
	MessageTypeRecipientRemove        MessageType = 2
	MessageTypeCallStart              MessageType = 3
	MessageTypeChannelNameChange      MessageType = 4
	MessageTypeChannelIconChange      MessageType = 5
	MessageTypePinsAdd                MessageType = 6
	MessageTypeMemberJoin             MessageType = 7
	MessageTypeGuildBoost             MessageType = 8
	MessageTypeGuildBoostTier1        MessageType = 9
	MessageTypeGuildBoostTier2        MessageType = 10
	MessageTypeGuildBoostTier3        MessageType = 11
	MessageTypeChannelFollowAdd       MessageType = 12
	MessageTypeDiscoveryDisqualified  MessageType = 14
	MessageTypeDiscoveryRequalified   MessageType = 15
	MessageTypeThreadCreated          MessageType = 18
	MessageTypeInlineReply            MessageType = 19
	MessageTypeChatInputCommand       MessageType = 20
	MessageTypeThreadStarterMessage   MessageType = 21
	MessageTypeGuildInviteReminder    MessageType = 22
	MessageTypeContextMenuCommand     MessageType = 23
	MessageTypeAutoModerationAction   MessageType = 24
)

// MessageFlags is the bitfield of per-message feature toggles.
type MessageFlags uint64

const (
	// FlagCrossposted marks a message already published to following channels.
	FlagCrossposted MessageFlags = 1 << 0
	// FlagIsCrosspost marks a message that originated in another channel.
	FlagIsCrosspost MessageFlags = 1 << 1
	// FlagSuppressEmbeds hides all embeds on the message.
	FlagSuppressEmbeds MessageFlags = 1 << 2
	// FlagSourceMessageDeleted marks a crosspost whose source is gone.
	FlagSourceMessageDeleted MessageFlags = 1 << 3
	// FlagUrgent marks a message from the urgent message system.
	FlagUrgent MessageFlags = 1 << 4
	// FlagHasThread marks a message with an associated thread.
	FlagHasThread MessageFlags = 1 << 5
	// FlagEphemeral marks an interaction response visible only to its invoker.
	FlagEphemeral MessageFlags = 1 << 6
	// FlagLoading marks an interaction response still being prepared.
	FlagLoading MessageFlags = 1 << 7
)

// Has reports whether all bits of p are set.
func (f MessageFlags) Has(p MessageFlags) bool {
	return f&p == p
}

// Attachment is a file attached to a message.
type Attachment struct {
	ID          Snowflake `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int       `json:"size"`
	URL         string    `json:"url"`
	ProxyURL    string    `json:"proxy_url"`
	Height      int       `json:"height,omitempty"`
	Width       int       `json:"width,omitempty"`
}

// StickerItem is the compact sticker reference carried on messages.
type StickerItem struct {
	ID         Snowflake `json:"id"`
	Name       string    `json:"name"`
	FormatType int       `json:"format_type"`
}

// Emoji identifies a reaction emoji: either a unicode emoji (Name only)
// or a custom guild emoji (ID and Name).
type Emoji struct {
	ID       Snowflake `json:"id,omitempty"`
	Name     string    `json:"name"`
	Animated bool      `json:"animated,omitempty"`
}

// APIName returns the emoji in the `name:id` form used in reaction
// endpoints; unicode emoji are returned as-is.
func (e Emoji) APIName() string {
	if e.ID != 0 {
		return e.Name + ":" + e.ID.String()
	}
	return e.Name
}

// MessageReaction is the aggregate reaction count attached to a message.
type MessageReaction struct {
	Count int   `json:"count"`
	Me    bool  `json:"me"`
	Emoji Emoji `json:"emoji"`
}

// Reaction describes a single user's reaction on a message. The platform
// acks reaction creation with an empty body, so these are assembled
// client-side; UserID stays zero when the acting identity is unknown.
type Reaction struct {
	UserID    Snowflake      `json:"user_id,omitempty"`
	ChannelID Snowflake      `json:"channel_id"`
	MessageID Snowflake      `json:"message_id"`
	GuildID   Snowflake      `json:"guild_id,omitempty"`
	Emoji     Emoji          `json:"emoji"`
	Member    *PartialMember `json:"member,omitempty"`
}

// MessageReference points at the message another message replies to or
// was crossposted from. The platform resolves at most one level, so the
// referenced message itself never carries a further resolved reference.
type MessageReference struct {
	MessageID Snowflake `json:"message_id,omitempty"`
	ChannelID Snowflake `json:"channel_id"`
	GuildID   Snowflake `json:"guild_id,omitempty"`
}

// ChannelMention is a channel explicitly mentioned in a crossposted message.
type ChannelMention struct {
	ID      Snowflake `json:"id"`
	GuildID Snowflake `json:"guild_id"`
	Type    int       `json:"type"`
	Name    string    `json:"name"`
}

// AllowedMentions overrides which mention categories in a message
// actually ping. Attaching any override suppresses every category not
// explicitly re-enabled through Parse.
type AllowedMentions struct {
	Parse       []string    `json:"parse"`
	Users       []Snowflake `json:"users,omitempty"`
	Roles       []Snowflake `json:"roles,omitempty"`
	RepliedUser bool        `json:"replied_user"`
}

// Parse values for AllowedMentions.
const (
	ParseEveryone = "everyone"
	ParseUsers    = "users"
	ParseRoles    = "roles"
)

// ActionRow is a top-level message component container. Inner components
// are kept raw since the pipeline never inspects them.
type ActionRow struct {
	Type       int               `json:"type"`
	Components []json.RawMessage `json:"components"`
}

// Message is a message in a guild text channel, group, or direct message
// channel. Instances are produced by decoding server payloads (REST or
// event stream) and by the mutating operations in package client; local
// edits are staged through builders and never touch a Message until the
// server confirms them.
type Message struct {
	ID              Snowflake         `json:"id"`
	ChannelID       Snowflake         `json:"channel_id"`
	GuildID         Snowflake         `json:"guild_id,omitempty"`
	Author          User              `json:"author"`
	Member          *PartialMember    `json:"member,omitempty"`
	Content         string            `json:"content"`
	Timestamp       time.Time         `json:"timestamp"`
	EditedTimestamp *time.Time        `json:"edited_timestamp,omitempty"`
	TTS             bool              `json:"tts"`
	MentionEveryone bool              `json:"mention_everyone"`
	Mentions        []User            `json:"mentions"`
	MentionRoles    []Snowflake       `json:"mention_roles"`
	MentionChannels []ChannelMention  `json:"mention_channels,omitempty"`
	Attachments     []Attachment      `json:"attachments"`
	Embeds          []Embed           `json:"embeds"`
	Reactions       []MessageReaction `json:"reactions,omitempty"`
	Pinned          bool              `json:"pinned"`
	WebhookID       Snowflake         `json:"webhook_id,omitempty"`
	Type            MessageType       `json:"type"`
	Flags           MessageFlags      `json:"flags,omitempty"`
	Reference       *MessageReference `json:"message_reference,omitempty"`
	// ReferencedMessage is the message this one replies to, resolved one
	// level deep by the platform.
	ReferencedMessage *Message      `json:"referenced_message,omitempty"`
	Components        []ActionRow   `json:"components,omitempty"`
	StickerItems      []StickerItem `json:"sticker_items,omitempty"`
}

// CreatedAt returns the creation time derived from the message ID.
func (m *Message) CreatedAt() time.Time {
	return m.ID.Time()
}

// IsPrivate reports whether the message was sent over direct messages.
func (m *Message) IsPrivate() bool {
	return m.GuildID.IsZero()
}

// MentionsUser reports whether the message explicitly mentions the user.
func (m *Message) MentionsUser(id Snowflake) bool {
	for _, u := range m.Mentions {
		if u.ID == id {
			return true
		}
	}
	return false
}

// NewReference builds a reference suitable for replying to this message.
func (m *Message) NewReference() *MessageReference {
	return &MessageReference{
		MessageID: m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
	}
}

// Link returns a URL that jumps to the message when opened, valid for
// both guild channels and direct messages.
func (m *Message) Link() string {
	if m.GuildID.IsZero() {
		return fmt.Sprintf("https://discord.com/channels/@me/%s/%s", m.ChannelID, m.ID)
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", m.GuildID, m.ChannelID, m.ID)
}
