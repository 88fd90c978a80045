package gateway

import (
	"encoding/json"

	"github.com/accordkit/accord/model"
)

// Gateway opcodes.
const (
	opDispatch     = 0
	opHeartbeat    = 1
	opIdentify     = 2
	opHello        = 10
	opHeartbeatACK = 11
)

// Dispatch event names the session decodes into cache updates.
const (
	EventReady             = "READY"
	EventGuildCreate       = "GUILD_CREATE"
	EventGuildDelete       = "GUILD_DELETE"
	EventGuildRoleCreate   = "GUILD_ROLE_CREATE"
	EventGuildRoleUpdate   = "GUILD_ROLE_UPDATE"
	EventGuildRoleDelete   = "GUILD_ROLE_DELETE"
	EventGuildMemberAdd    = "GUILD_MEMBER_ADD"
	EventGuildMemberRemove = "GUILD_MEMBER_REMOVE"
	EventChannelCreate     = "CHANNEL_CREATE"
	EventChannelUpdate     = "CHANNEL_UPDATE"
	EventMessageCreate     = "MESSAGE_CREATE"
	EventMessageUpdate     = "MESSAGE_UPDATE"
	EventMessageDelete     = "MESSAGE_DELETE"
)

// payload is the envelope every gateway frame arrives in.
type payload struct {
	Op   int             `json:"op"`
	Type string          `json:"t,omitempty"`
	Seq  int64           `json:"s,omitempty"`
	Data json.RawMessage `json:"d,omitempty"`
}

type helloData struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

type identifyData struct {
	Token      string             `json:"token"`
	Intents    uint64             `json:"intents"`
	Shard      [2]int             `json:"shard"`
	Properties identifyProperties `json:"properties"`
}

type identifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

type readyData struct {
	User model.User `json:"user"`
}

type roleEvent struct {
	GuildID model.Snowflake `json:"guild_id"`
	Role    model.Role      `json:"role"`
	RoleID  model.Snowflake `json:"role_id"`
}

type memberAddEvent struct {
	model.Member
	GuildID model.Snowflake `json:"guild_id"`
}

type memberRemoveEvent struct {
	GuildID model.Snowflake `json:"guild_id"`
	User    model.User      `json:"user"`
}

type guildDeleteEvent struct {
	ID model.Snowflake `json:"id"`
}
