package model

import (
	"fmt"
	"time"
)

// User represents a platform account as it appears in message payloads.
type User struct {
	ID            Snowflake `json:"id"`
	Username      string    `json:"username"`
	Discriminator string    `json:"discriminator"`
	Avatar        string    `json:"avatar,omitempty"`
	Bot           bool      `json:"bot,omitempty"`
	System        bool      `json:"system,omitempty"`
}

// Mention returns the plain mention token for the user.
func (u User) Mention() string {
	return fmt.Sprintf("<@%s>", u.ID)
}

// NickMention returns the nickname-variant mention token. The two
// spellings differ only by the `!` marker after `<@`.
func (u User) NickMention() string {
	return fmt.Sprintf("<@!%s>", u.ID)
}

// Tag returns the display form `@name#discriminator`, with the
// discriminator zero-padded to four digits.
func (u User) Tag() string {
	d := u.Discriminator
	for len(d) < 4 {
		d = "0" + d
	}
	return "@" + u.Username + "#" + d
}

// Role is a guild role. Permissions is the decimal string bitfield as
// sent by the platform; callers needing a typed set parse it with
// permission.ParseBits.
type Role struct {
	ID          Snowflake `json:"id"`
	Name        string    `json:"name"`
	Color       int       `json:"color"`
	Position    int       `json:"position"`
	Permissions string    `json:"permissions"`
	Managed     bool      `json:"managed"`
	Mentionable bool      `json:"mentionable"`
}

// Mention returns the role mention token.
func (r Role) Mention() string {
	return fmt.Sprintf("<@&%s>", r.ID)
}

// Member is a user's guild-specific profile.
type Member struct {
	User     User        `json:"user"`
	Nick     string      `json:"nick,omitempty"`
	Roles    []Snowflake `json:"roles"`
	JoinedAt time.Time   `json:"joined_at"`
	Deaf     bool        `json:"deaf"`
	Mute     bool        `json:"mute"`
}

// PartialMember is the member fragment attached to guild messages. It
// carries no inner user since the message's author field already does.
type PartialMember struct {
	Nick     string      `json:"nick,omitempty"`
	Roles    []Snowflake `json:"roles"`
	JoinedAt time.Time   `json:"joined_at"`
	Deaf     bool        `json:"deaf"`
	Mute     bool        `json:"mute"`
}

// PermissionOverwrite adjusts channel permissions for a role or member.
// Allow and Deny are decimal string bitfields.
type PermissionOverwrite struct {
	ID    Snowflake `json:"id"`
	Type  int       `json:"type"` // 0 = role, 1 = member
	Allow string    `json:"allow"`
	Deny  string    `json:"deny"`
}

// Channel is the subset of the channel object the message pipeline needs.
type Channel struct {
	ID                   Snowflake             `json:"id"`
	GuildID              Snowflake             `json:"guild_id,omitempty"`
	Type                 int                   `json:"type"`
	Name                 string                `json:"name,omitempty"`
	PermissionOverwrites []PermissionOverwrite `json:"permission_overwrites,omitempty"`
}

// Guild is the guild shape delivered by the GUILD_CREATE event, trimmed
// to what the cache needs.
type Guild struct {
	ID       Snowflake `json:"id"`
	Name     string    `json:"name"`
	OwnerID  Snowflake `json:"owner_id"`
	Roles    []Role    `json:"roles"`
	Channels []Channel `json:"channels"`
	Members  []Member  `json:"members"`
}
