package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/accordkit/accord/config"
	"github.com/accordkit/accord/model"
	"github.com/accordkit/accord/permission"
)

// opTimeout bounds every read and write issued by the store. Snapshot
// reads are meant to be quick local lookups; a slow or unreachable Redis
// degrades to "not cached" rather than stalling the pipeline.
const opTimeout = 2 * time.Second

// RedisStore is a Snapshot backed by Redis, for bots that run the event
// stream consumer and the REST workers in separate processes. One
// process feeds it through the same setters Memory exposes; any process
// can read. Reads that fail or miss report "not cached".
type RedisStore struct {
	client *redis.Client
	config *config.RedisConfig
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: rdb, config: cfg}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

func (s *RedisStore) setJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	ctx, cancel := s.opContext()
	defer cancel()
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) getJSON(key string, v any) bool {
	ctx, cancel := s.opContext()
	defer cancel()
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func keyCurrentUser() string { return "accord:current_user" }

func keyGuild(g model.Snowflake) string { return "accord:guild:" + g.String() }

func keyRole(r model.Snowflake) string { return "accord:role:" + r.String() }

func keyChannel(c model.Snowflake) string { return "accord:channel:" + c.String() }

func keyMember(g, u model.Snowflake) string { return "accord:member:" + g.String() + ":" + u.String() }

// SetCurrentUser records the acting identity.
func (s *RedisStore) SetCurrentUser(u model.User) {
	_ = s.setJSON(keyCurrentUser(), u)
}

// PutGuild stores guild metadata plus its roles, channels, and members.
func (s *RedisStore) PutGuild(g model.Guild) {
	meta := g
	meta.Members = nil
	meta.Channels = nil
	_ = s.setJSON(keyGuild(g.ID), meta)

	for _, role := range g.Roles {
		s.PutRole(g.ID, role)
	}
	for _, ch := range g.Channels {
		if ch.GuildID.IsZero() {
			ch.GuildID = g.ID
		}
		s.PutChannel(ch)
	}
	for _, member := range g.Members {
		s.PutMember(g.ID, member)
	}
}

// RemoveGuild drops guild metadata. Role, channel and member keys are
// left to expire with the deployment's own eviction policy.
func (s *RedisStore) RemoveGuild(guildID model.Snowflake) {
	ctx, cancel := s.opContext()
	defer cancel()
	_ = s.client.Del(ctx, keyGuild(guildID)).Err()
}

// PutChannel stores or replaces a channel.
func (s *RedisStore) PutChannel(ch model.Channel) {
	_ = s.setJSON(keyChannel(ch.ID), ch)
}

// PutRole stores or replaces a guild role.
func (s *RedisStore) PutRole(guildID model.Snowflake, role model.Role) {
	_ = s.setJSON(keyRole(role.ID), role)
}

// RemoveRole drops a guild role.
func (s *RedisStore) RemoveRole(guildID, roleID model.Snowflake) {
	ctx, cancel := s.opContext()
	defer cancel()
	_ = s.client.Del(ctx, keyRole(roleID)).Err()
}

// PutMember stores or replaces a guild member.
func (s *RedisStore) PutMember(guildID model.Snowflake, member model.Member) {
	_ = s.setJSON(keyMember(guildID, member.User.ID), member)
}

// RemoveMember drops a guild member.
func (s *RedisStore) RemoveMember(guildID, userID model.Snowflake) {
	ctx, cancel := s.opContext()
	defer cancel()
	_ = s.client.Del(ctx, keyMember(guildID, userID)).Err()
}

// CurrentUser implements Snapshot.
func (s *RedisStore) CurrentUser() (model.User, bool) {
	var u model.User
	if !s.getJSON(keyCurrentUser(), &u) {
		return model.User{}, false
	}
	return u, true
}

// RoleName implements Snapshot.
func (s *RedisStore) RoleName(id model.Snowflake) (string, bool) {
	var role model.Role
	if !s.getJSON(keyRole(id), &role) {
		return "", false
	}
	return role.Name, true
}

// Member implements Snapshot.
func (s *RedisStore) Member(guildID, userID model.Snowflake) (*model.Member, bool) {
	var member model.Member
	if !s.getJSON(keyMember(guildID, userID), &member) {
		return nil, false
	}
	return &member, true
}

// Permissions implements Snapshot.
func (s *RedisStore) Permissions(userID, channelID, guildID model.Snowflake) (permission.Set, bool) {
	var guild model.Guild
	if !s.getJSON(keyGuild(guildID), &guild) {
		return permission.Set{}, false
	}
	var member model.Member
	if !s.getJSON(keyMember(guildID, userID), &member) {
		return permission.Set{}, false
	}

	roles := make(map[model.Snowflake]model.Role, len(member.Roles)+1)
	var role model.Role
	if s.getJSON(keyRole(guildID), &role) {
		roles[guildID] = role
	}
	for _, roleID := range member.Roles {
		if s.getJSON(keyRole(roleID), &role) {
			roles[roleID] = role
		}
	}

	var overwrites []model.PermissionOverwrite
	var ch model.Channel
	if s.getJSON(keyChannel(channelID), &ch) {
		overwrites = ch.PermissionOverwrites
	}

	perms := effectivePermissions(userID, guild.OwnerID, guildID, roles, &member, overwrites)
	return perms, true
}
