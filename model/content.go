package model

import (
	"fmt"
	"strings"
)

// RoleResolver resolves role names for mention-safe rendering. A cache
// snapshot satisfies it; nil is tolerated and degrades every role
// mention to the deleted-role fallback.
type RoleResolver interface {
	RoleName(id Snowflake) (string, bool)
}

// joinMessages is the fixed pool of member-join announcements. The entry
// is picked by the message's creation second so repeated renders of the
// same message stay stable.
var joinMessages = []string{
	"$user joined the party.",
	"$user is here.",
	"Welcome, $user. We hope you brought pizza.",
	"A wild $user appeared.",
	"$user just landed.",
	"$user just slid into the server.",
	"$user just showed up!",
	"Welcome $user. Say hi!",
	"$user hopped into the server.",
	"Everyone welcome $user!",
	"Glad you're here, $user.",
	"Good to see you, $user.",
	"Yay you made it, $user!",
}

// TransformContent rewrites the content of system messages whose display
// text is synthesized client-side rather than taken from the server:
// pin notices get a fixed template naming the author, and member-join
// notices get a stable pick from the join-message pool.
func (m *Message) TransformContent() {
	switch m.Type {
	case MessageTypePinsAdd:
		m.Content = fmt.Sprintf("%s pinned a message to this channel. See all the pins.", m.Author.Mention())
	case MessageTypeMemberJoin:
		sec := m.CreatedAt().Unix()
		chosen := joinMessages[int(sec)%len(joinMessages)]
		if strings.Contains(chosen, "$user") {
			m.Content = strings.ReplaceAll(chosen, "$user", m.Author.Mention())
		} else {
			m.Content = chosen
		}
	}
}

// ContentSafe returns the message content with user and role mention
// tokens replaced by display names and everyone/here mentions defused
// with a zero-width space. It never fails: roles that cannot be resolved
// degrade to "@deleted-role", and a nil resolver degrades all of them.
func (m *Message) ContentSafe(roles RoleResolver) string {
	result := m.Content

	// User mentions first. The platform uses two spellings per user; the
	// nickname variant only differs by a `!` marker, so probe for the
	// plain one and fall back to the nickname form when it is absent.
	for _, u := range m.Mentions {
		token := u.Mention()
		if !strings.Contains(result, token) {
			token = u.NickMention()
		}
		result = strings.ReplaceAll(result, token, u.Tag())
	}

	for _, id := range m.MentionRoles {
		token := fmt.Sprintf("<@&%s>", id)
		replacement := "@deleted-role"
		if roles != nil {
			if name, ok := roles.RoleName(id); ok {
				replacement = "@" + name
			}
		}
		result = strings.ReplaceAll(result, token, replacement)
	}

	// Everyone/here last so this pass cannot consume text introduced by
	// the earlier replacements.
	result = strings.ReplaceAll(result, "@everyone", "@​everyone")
	result = strings.ReplaceAll(result, "@here", "@​here")

	return result
}
