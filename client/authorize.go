package client

import (
	"github.com/accordkit/accord/cache"
	"github.com/accordkit/accord/model"
	"github.com/accordkit/accord/permission"
)

// authorize is the local fail-fast permission gate. It only proves
// denial from cached state; it never replaces server-side enforcement.
// Authorization is skipped when no snapshot is available (authority
// defers entirely to the remote service) and in non-guild contexts,
// which have no role-based permissions. An uncached guild or member
// likewise draws no conclusion.
func authorize(snapshot cache.Snapshot, channelID, guildID model.Snowflake, required permission.Set) error {
	if snapshot == nil {
		return nil
	}
	if guildID.IsZero() {
		return nil
	}

	current, ok := snapshot.CurrentUser()
	if !ok {
		return nil
	}
	perms, ok := snapshot.Permissions(current.ID, channelID, guildID)
	if !ok {
		return nil
	}

	if perms.Has(permission.Administrator) {
		return nil
	}
	if !perms.Contains(required) {
		return ErrInsufficientPermissions
	}
	return nil
}

// isOwn reports whether the message was authored by the cached acting
// identity. Without a snapshot no claim can be made and it returns false.
func isOwn(snapshot cache.Snapshot, msg *model.Message) bool {
	if snapshot == nil {
		return false
	}
	current, ok := snapshot.CurrentUser()
	if !ok {
		return false
	}
	return msg.Author.ID == current.ID
}
