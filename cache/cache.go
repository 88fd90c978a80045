// Package cache provides read-only snapshots of remote entity state.
// Snapshots are possibly stale mirrors fed by the event stream; every
// read is synchronous and advisory. The message pipeline treats the
// snapshot as an optional capability: a nil snapshot simply defers all
// authority to the remote service.
package cache

import (
	"github.com/accordkit/accord/model"
	"github.com/accordkit/accord/permission"
)

// Snapshot is the read capability consumed by the message pipeline.
type Snapshot interface {
	// CurrentUser returns the acting identity, if known.
	CurrentUser() (model.User, bool)
	// Permissions resolves the user's effective permission set for a
	// channel. The second return is false when the guild or member is
	// not cached, in which case no local conclusion can be drawn.
	Permissions(userID, channelID, guildID model.Snowflake) (permission.Set, bool)
	// RoleName resolves a role's display name.
	RoleName(id model.Snowflake) (string, bool)
	// Member resolves a member's guild profile.
	Member(guildID, userID model.Snowflake) (*model.Member, bool)
}

// allPermissions is the effective set granted to owners and admins.
var allPermissions = permission.FromBits(^uint64(0))

// effectivePermissions computes a member's channel permissions from
// cached guild state: the everyone role as base, member roles unioned
// in, then channel overwrites applied in everyone < role < member order.
func effectivePermissions(
	userID, ownerID, guildID model.Snowflake,
	roles map[model.Snowflake]model.Role,
	member *model.Member,
	overwrites []model.PermissionOverwrite,
) permission.Set {
	if userID == ownerID {
		return allPermissions
	}

	perms := rolePermissions(roles, guildID)
	for _, roleID := range member.Roles {
		perms = perms.Union(rolePermissions(roles, roleID))
	}
	if perms.Has(permission.Administrator) {
		return allPermissions
	}

	// Everyone overwrite first.
	for _, ow := range overwrites {
		if ow.Type == 0 && ow.ID == guildID {
			perms = applyOverwrite(perms, ow)
		}
	}

	// Role overwrites accumulate before applying.
	var allow, deny permission.Set
	for _, ow := range overwrites {
		if ow.Type != 0 || ow.ID == guildID {
			continue
		}
		for _, roleID := range member.Roles {
			if ow.ID == roleID {
				a, _ := permission.ParseBits(ow.Allow)
				d, _ := permission.ParseBits(ow.Deny)
				allow = allow.Union(a)
				deny = deny.Union(d)
			}
		}
	}
	perms = perms.Subtract(deny).Union(allow)

	for _, ow := range overwrites {
		if ow.Type == 1 && ow.ID == userID {
			perms = applyOverwrite(perms, ow)
		}
	}

	return perms
}

func rolePermissions(roles map[model.Snowflake]model.Role, id model.Snowflake) permission.Set {
	role, ok := roles[id]
	if !ok {
		return permission.Set{}
	}
	set, err := permission.ParseBits(role.Permissions)
	if err != nil {
		return permission.Set{}
	}
	return set
}

func applyOverwrite(perms permission.Set, ow model.PermissionOverwrite) permission.Set {
	allow, _ := permission.ParseBits(ow.Allow)
	deny, _ := permission.ParseBits(ow.Deny)
	return perms.Subtract(deny).Union(allow)
}
