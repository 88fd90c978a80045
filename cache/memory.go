package cache

import (
	"sync"

	"github.com/accordkit/accord/model"
	"github.com/accordkit/accord/permission"
)

type guildState struct {
	guild   model.Guild
	roles   map[model.Snowflake]model.Role
	members map[model.Snowflake]model.Member
}

// Memory is an in-process Snapshot fed by the event stream. Reads take a
// read lock only; no read ever blocks on the network.
type Memory struct {
	mu           sync.RWMutex
	currentUser  model.User
	hasUser      bool
	guilds       map[model.Snowflake]*guildState
	channels     map[model.Snowflake]model.Channel
	channelGuild map[model.Snowflake]model.Snowflake
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		guilds:       make(map[model.Snowflake]*guildState),
		channels:     make(map[model.Snowflake]model.Channel),
		channelGuild: make(map[model.Snowflake]model.Snowflake),
	}
}

// SetCurrentUser records the acting identity, normally from READY.
func (m *Memory) SetCurrentUser(u model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentUser = u
	m.hasUser = true
}

// PutGuild stores a guild with its roles, channels, and members.
func (m *Memory) PutGuild(g model.Guild) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gs := &guildState{
		guild:   g,
		roles:   make(map[model.Snowflake]model.Role, len(g.Roles)),
		members: make(map[model.Snowflake]model.Member, len(g.Members)),
	}
	for _, r := range g.Roles {
		gs.roles[r.ID] = r
	}
	for _, member := range g.Members {
		gs.members[member.User.ID] = member
	}
	m.guilds[g.ID] = gs

	for _, ch := range g.Channels {
		if ch.GuildID.IsZero() {
			ch.GuildID = g.ID
		}
		m.channels[ch.ID] = ch
		m.channelGuild[ch.ID] = g.ID
	}
}

// RemoveGuild drops a guild and its channels.
func (m *Memory) RemoveGuild(guildID model.Snowflake) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.guilds, guildID)
	for id, g := range m.channelGuild {
		if g == guildID {
			delete(m.channelGuild, id)
			delete(m.channels, id)
		}
	}
}

// PutChannel stores or replaces a channel.
func (m *Memory) PutChannel(ch model.Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[ch.ID] = ch
	if !ch.GuildID.IsZero() {
		m.channelGuild[ch.ID] = ch.GuildID
	}
}

// PutRole stores or replaces a guild role.
func (m *Memory) PutRole(guildID model.Snowflake, role model.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gs, ok := m.guilds[guildID]; ok {
		gs.roles[role.ID] = role
	}
}

// RemoveRole drops a guild role.
func (m *Memory) RemoveRole(guildID, roleID model.Snowflake) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gs, ok := m.guilds[guildID]; ok {
		delete(gs.roles, roleID)
	}
}

// PutMember stores or replaces a guild member.
func (m *Memory) PutMember(guildID model.Snowflake, member model.Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gs, ok := m.guilds[guildID]; ok {
		gs.members[member.User.ID] = member
	}
}

// RemoveMember drops a guild member.
func (m *Memory) RemoveMember(guildID, userID model.Snowflake) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gs, ok := m.guilds[guildID]; ok {
		delete(gs.members, userID)
	}
}

// CurrentUser implements Snapshot.
func (m *Memory) CurrentUser() (model.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentUser, m.hasUser
}

// RoleName implements Snapshot.
func (m *Memory) RoleName(id model.Snowflake) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, gs := range m.guilds {
		if role, ok := gs.roles[id]; ok {
			return role.Name, true
		}
	}
	return "", false
}

// Member implements Snapshot.
func (m *Memory) Member(guildID, userID model.Snowflake) (*model.Member, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	gs, ok := m.guilds[guildID]
	if !ok {
		return nil, false
	}
	member, ok := gs.members[userID]
	if !ok {
		return nil, false
	}
	return &member, true
}

// Permissions implements Snapshot.
func (m *Memory) Permissions(userID, channelID, guildID model.Snowflake) (permission.Set, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gs, ok := m.guilds[guildID]
	if !ok {
		return permission.Set{}, false
	}
	member, ok := gs.members[userID]
	if !ok {
		return permission.Set{}, false
	}

	var overwrites []model.PermissionOverwrite
	if ch, ok := m.channels[channelID]; ok {
		overwrites = ch.PermissionOverwrites
	}

	perms := effectivePermissions(userID, gs.guild.OwnerID, guildID, gs.roles, &member, overwrites)
	return perms, true
}
