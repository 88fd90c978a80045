package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accordkit/accord/model"
	"github.com/accordkit/accord/permission"
)

const (
	testGuildID   = model.Snowflake(1000)
	testChannelID = model.Snowflake(2000)
	testOwnerID   = model.Snowflake(1)
	testUserID    = model.Snowflake(2)
	testRoleID    = model.Snowflake(3000)
)

func bitsString(perms ...permission.Permission) string {
	return fmt.Sprintf("%d", permission.NewSet(perms...).Bits())
}

func testGuild() model.Guild {
	return model.Guild{
		ID:      testGuildID,
		Name:    "testing grounds",
		OwnerID: testOwnerID,
		Roles: []model.Role{
			// The everyone role shares the guild's ID.
			{ID: testGuildID, Name: "@everyone", Permissions: bitsString(permission.ViewChannel, permission.SendMessages)},
			{ID: testRoleID, Name: "mods", Permissions: bitsString(permission.ManageMessages)},
		},
		Channels: []model.Channel{
			{ID: testChannelID, Type: 0, Name: "general"},
		},
		Members: []model.Member{
			{User: model.User{ID: testOwnerID, Username: "owner"}},
			{User: model.User{ID: testUserID, Username: "pleb"}},
		},
	}
}

func TestMemoryCurrentUser(t *testing.T) {
	m := NewMemory()

	_, ok := m.CurrentUser()
	assert.False(t, ok)

	m.SetCurrentUser(model.User{ID: 9, Username: "bot"})
	u, ok := m.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, model.Snowflake(9), u.ID)
}

func TestMemoryRoleName(t *testing.T) {
	m := NewMemory()
	m.PutGuild(testGuild())

	name, ok := m.RoleName(testRoleID)
	require.True(t, ok)
	assert.Equal(t, "mods", name)

	_, ok = m.RoleName(9999)
	assert.False(t, ok)

	m.RemoveRole(testGuildID, testRoleID)
	_, ok = m.RoleName(testRoleID)
	assert.False(t, ok)
}

func TestMemoryMember(t *testing.T) {
	m := NewMemory()
	m.PutGuild(testGuild())

	member, ok := m.Member(testGuildID, testUserID)
	require.True(t, ok)
	assert.Equal(t, "pleb", member.User.Username)

	_, ok = m.Member(testGuildID, 9999)
	assert.False(t, ok)

	_, ok = m.Member(8888, testUserID)
	assert.False(t, ok)

	m.RemoveMember(testGuildID, testUserID)
	_, ok = m.Member(testGuildID, testUserID)
	assert.False(t, ok)
}

func TestMemoryPermissions(t *testing.T) {
	t.Run("uncached guild cannot conclude", func(t *testing.T) {
		m := NewMemory()
		_, ok := m.Permissions(testUserID, testChannelID, testGuildID)
		assert.False(t, ok)
	})

	t.Run("uncached member cannot conclude", func(t *testing.T) {
		m := NewMemory()
		m.PutGuild(testGuild())
		_, ok := m.Permissions(9999, testChannelID, testGuildID)
		assert.False(t, ok)
	})

	t.Run("owner gets every permission", func(t *testing.T) {
		m := NewMemory()
		m.PutGuild(testGuild())

		perms, ok := m.Permissions(testOwnerID, testChannelID, testGuildID)
		require.True(t, ok)
		assert.True(t, perms.Has(permission.Administrator))
		assert.True(t, perms.Has(permission.ManageMessages))
	})

	t.Run("plain member gets the everyone role base", func(t *testing.T) {
		m := NewMemory()
		m.PutGuild(testGuild())

		perms, ok := m.Permissions(testUserID, testChannelID, testGuildID)
		require.True(t, ok)
		assert.True(t, perms.Has(permission.SendMessages))
		assert.True(t, perms.Has(permission.ViewChannel))
		assert.False(t, perms.Has(permission.ManageMessages))
	})

	t.Run("member roles union into the base", func(t *testing.T) {
		m := NewMemory()
		m.PutGuild(testGuild())
		m.PutMember(testGuildID, model.Member{
			User:  model.User{ID: testUserID},
			Roles: []model.Snowflake{testRoleID},
		})

		perms, ok := m.Permissions(testUserID, testChannelID, testGuildID)
		require.True(t, ok)
		assert.True(t, perms.Has(permission.SendMessages))
		assert.True(t, perms.Has(permission.ManageMessages))
	})

	t.Run("administrator role grants everything", func(t *testing.T) {
		m := NewMemory()
		m.PutGuild(testGuild())
		m.PutRole(testGuildID, model.Role{
			ID:          4000,
			Name:        "admins",
			Permissions: bitsString(permission.Administrator),
		})
		m.PutMember(testGuildID, model.Member{
			User:  model.User{ID: testUserID},
			Roles: []model.Snowflake{4000},
		})

		perms, ok := m.Permissions(testUserID, testChannelID, testGuildID)
		require.True(t, ok)
		assert.True(t, perms.Has(permission.ManageGuild))
		assert.True(t, perms.Has(permission.BanMembers))
	})

	t.Run("everyone overwrite denies on the channel", func(t *testing.T) {
		m := NewMemory()
		g := testGuild()
		g.Channels[0].PermissionOverwrites = []model.PermissionOverwrite{
			{ID: testGuildID, Type: 0, Allow: "0", Deny: bitsString(permission.SendMessages)},
		}
		m.PutGuild(g)

		perms, ok := m.Permissions(testUserID, testChannelID, testGuildID)
		require.True(t, ok)
		assert.False(t, perms.Has(permission.SendMessages))
		assert.True(t, perms.Has(permission.ViewChannel))
	})

	t.Run("role overwrite allow beats everyone deny", func(t *testing.T) {
		m := NewMemory()
		g := testGuild()
		g.Channels[0].PermissionOverwrites = []model.PermissionOverwrite{
			{ID: testGuildID, Type: 0, Allow: "0", Deny: bitsString(permission.SendMessages)},
			{ID: testRoleID, Type: 0, Allow: bitsString(permission.SendMessages), Deny: "0"},
		}
		m.PutGuild(g)
		m.PutMember(testGuildID, model.Member{
			User:  model.User{ID: testUserID},
			Roles: []model.Snowflake{testRoleID},
		})

		perms, ok := m.Permissions(testUserID, testChannelID, testGuildID)
		require.True(t, ok)
		assert.True(t, perms.Has(permission.SendMessages))
	})

	t.Run("member overwrite beats role overwrite", func(t *testing.T) {
		m := NewMemory()
		g := testGuild()
		g.Channels[0].PermissionOverwrites = []model.PermissionOverwrite{
			{ID: testRoleID, Type: 0, Allow: bitsString(permission.ManageMessages), Deny: "0"},
			{ID: testUserID, Type: 1, Allow: "0", Deny: bitsString(permission.ManageMessages)},
		}
		m.PutGuild(g)
		m.PutMember(testGuildID, model.Member{
			User:  model.User{ID: testUserID},
			Roles: []model.Snowflake{testRoleID},
		})

		perms, ok := m.Permissions(testUserID, testChannelID, testGuildID)
		require.True(t, ok)
		assert.False(t, perms.Has(permission.ManageMessages))
	})

	t.Run("overwrites never reduce an administrator", func(t *testing.T) {
		m := NewMemory()
		g := testGuild()
		g.Roles = append(g.Roles, model.Role{
			ID: 4000, Name: "admins", Permissions: bitsString(permission.Administrator),
		})
		g.Channels[0].PermissionOverwrites = []model.PermissionOverwrite{
			{ID: testGuildID, Type: 0, Allow: "0", Deny: bitsString(permission.SendMessages)},
		}
		m.PutGuild(g)
		m.PutMember(testGuildID, model.Member{
			User:  model.User{ID: testUserID},
			Roles: []model.Snowflake{4000},
		})

		perms, ok := m.Permissions(testUserID, testChannelID, testGuildID)
		require.True(t, ok)
		assert.True(t, perms.Has(permission.SendMessages))
	})
}

func TestMemoryRemoveGuild(t *testing.T) {
	m := NewMemory()
	m.PutGuild(testGuild())
	m.RemoveGuild(testGuildID)

	_, ok := m.Permissions(testUserID, testChannelID, testGuildID)
	assert.False(t, ok)
	_, ok = m.RoleName(testRoleID)
	assert.False(t, ok)
}
