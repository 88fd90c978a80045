package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/accordkit/accord/cache"
	logger "github.com/accordkit/accord/middleware/log"
	"github.com/accordkit/accord/model"
	"github.com/accordkit/accord/permission"
)

// IMessages defines the message mutation surface. Every operation is a
// single round trip with no implicit retry: it either returns the
// committed server-confirmed value or an error, and on error the
// caller's local state is untouched.
type IMessages interface {
	Send(ctx context.Context, channelID model.Snowflake, build func(*MessageBuilder)) (*model.Message, error)
	Edit(ctx context.Context, msg *model.Message, build func(*EditBuilder)) (*model.Message, error)
	Delete(ctx context.Context, msg *model.Message) error
	React(ctx context.Context, msg *model.Message, emoji model.Emoji) (*model.Reaction, error)
	DeleteOwnReaction(ctx context.Context, msg *model.Message, emoji model.Emoji) error
	DeleteReactions(ctx context.Context, msg *model.Message) error
	DeleteReactionEmoji(ctx context.Context, msg *model.Message, emoji model.Emoji) error
	Pin(ctx context.Context, msg *model.Message) error
	Unpin(ctx context.Context, msg *model.Message) error
	Crosspost(ctx context.Context, msg *model.Message) (*model.Message, error)
	Reply(ctx context.Context, msg *model.Message, content string) (*model.Message, error)
	ReplyPing(ctx context.Context, msg *model.Message, content string) (*model.Message, error)
	ReplyMention(ctx context.Context, msg *model.Message, content string) (*model.Message, error)
	SuppressEmbeds(ctx context.Context, msg *model.Message) (*model.Message, error)
	Member(ctx context.Context, msg *model.Message) (*model.Member, error)
}

// Messages implements IMessages on top of a Transport and an optional
// cache snapshot.
type Messages struct {
	transport Transport
	snapshot  cache.Snapshot
	logger    *logger.Logger
}

// NewMessages creates a message service. The snapshot may be nil, in
// which case all local permission checks are skipped and authority is
// deferred to the remote service.
func NewMessages(transport Transport, snapshot cache.Snapshot, log *logger.Logger) IMessages {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Messages{
		transport: transport,
		snapshot:  snapshot,
		logger:    log,
	}
}

// decodeMessage turns a response body into a Message, applying the
// system-message content transforms.
func decodeMessage(data []byte) (*model.Message, error) {
	var msg model.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	msg.TransformContent()
	return &msg, nil
}

// Send posts a new message to a channel. The builder stages the
// payload, which is validated against the platform limits before any
// network traffic.
func (s *Messages) Send(ctx context.Context, channelID model.Snowflake, build func(*MessageBuilder)) (*model.Message, error) {
	b := NewMessageBuilder()
	if build != nil {
		build(b)
	}
	return s.send(ctx, channelID, b)
}

func (s *Messages) send(ctx context.Context, channelID model.Snowflake, b *MessageBuilder) (*model.Message, error) {
	payload := b.Build()
	if err := model.CheckLengths(payload); err != nil {
		return nil, err
	}

	data, err := s.transport.Do(ctx, http.MethodPost, endpointChannelMessages(channelID), payload)
	if err != nil {
		return nil, err
	}
	msg, err := decodeMessage(data)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "message sent",
		zap.String("channel_id", channelID.String()),
		zap.String("message_id", msg.ID.String()),
	)
	return msg, nil
}

// Edit replaces parts of a message. The edit builder is pre-filled from
// the current state so untouched fields survive the round trip. Only
// the author may edit; with a cache available this is enforced locally.
// The committed message is returned as a new value, the input is never
// mutated.
func (s *Messages) Edit(ctx context.Context, msg *model.Message, build func(*EditBuilder)) (*model.Message, error) {
	if s.snapshot != nil {
		if current, ok := s.snapshot.CurrentUser(); ok && msg.Author.ID != current.ID {
			return nil, ErrNotAuthor
		}
	}

	b := prepareEdit(msg)
	if build != nil {
		build(b)
	}
	payload := b.Build()
	if err := model.CheckLengths(payload); err != nil {
		return nil, err
	}

	data, err := s.transport.Do(ctx, http.MethodPatch, endpointChannelMessage(msg.ChannelID, msg.ID), payload)
	if err != nil {
		return nil, err
	}
	return decodeMessage(data)
}

// Delete removes a message. Non-authors need the manage-messages
// permission, and can never delete messages in direct message channels
// where no guild permission model applies.
func (s *Messages) Delete(ctx context.Context, msg *model.Message) error {
	if s.snapshot != nil {
		if current, ok := s.snapshot.CurrentUser(); ok && msg.Author.ID != current.ID {
			if msg.IsPrivate() {
				return ErrNotAuthor
			}
			required := permission.NewSet(permission.ManageMessages)
			if err := authorize(s.snapshot, msg.ChannelID, msg.GuildID, required); err != nil {
				return err
			}
		}
	}

	_, err := s.transport.Do(ctx, http.MethodDelete, endpointChannelMessage(msg.ChannelID, msg.ID), nil)
	return err
}

// React adds the current user's reaction to a message. The platform
// acks with an empty body, so the returned Reaction is assembled
// locally; its UserID is filled from the cache's notion of the acting
// identity and stays zero without a cache.
func (s *Messages) React(ctx context.Context, msg *model.Message, emoji model.Emoji) (*model.Reaction, error) {
	var userID model.Snowflake
	if s.snapshot != nil {
		required := permission.NewSet(permission.AddReactions)
		if err := authorize(s.snapshot, msg.ChannelID, msg.GuildID, required); err != nil {
			return nil, err
		}
		if current, ok := s.snapshot.CurrentUser(); ok {
			userID = current.ID
		}
	}

	if _, err := s.transport.Do(ctx, http.MethodPut, endpointOwnReaction(msg.ChannelID, msg.ID, emoji), nil); err != nil {
		return nil, err
	}

	return &model.Reaction{
		UserID:    userID,
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
		GuildID:   msg.GuildID,
		Emoji:     emoji,
		Member:    msg.Member,
	}, nil
}

// DeleteOwnReaction removes the current user's reaction. No permission
// is required to take back one's own reaction.
func (s *Messages) DeleteOwnReaction(ctx context.Context, msg *model.Message, emoji model.Emoji) error {
	_, err := s.transport.Do(ctx, http.MethodDelete, endpointOwnReaction(msg.ChannelID, msg.ID, emoji), nil)
	return err
}

// DeleteReactions removes every reaction on a message. Requires the
// manage-messages permission.
func (s *Messages) DeleteReactions(ctx context.Context, msg *model.Message) error {
	required := permission.NewSet(permission.ManageMessages)
	if err := authorize(s.snapshot, msg.ChannelID, msg.GuildID, required); err != nil {
		return err
	}
	_, err := s.transport.Do(ctx, http.MethodDelete, endpointMessageReactions(msg.ChannelID, msg.ID), nil)
	return err
}

// DeleteReactionEmoji removes all reactions of one emoji. Requires the
// manage-messages permission.
func (s *Messages) DeleteReactionEmoji(ctx context.Context, msg *model.Message, emoji model.Emoji) error {
	required := permission.NewSet(permission.ManageMessages)
	if err := authorize(s.snapshot, msg.ChannelID, msg.GuildID, required); err != nil {
		return err
	}
	_, err := s.transport.Do(ctx, http.MethodDelete, endpointMessageReactionEmoji(msg.ChannelID, msg.ID, emoji), nil)
	return err
}

// Pin pins the message to its channel. Requires the manage-messages
// permission in guild channels.
func (s *Messages) Pin(ctx context.Context, msg *model.Message) error {
	required := permission.NewSet(permission.ManageMessages)
	if err := authorize(s.snapshot, msg.ChannelID, msg.GuildID, required); err != nil {
		return err
	}
	_, err := s.transport.Do(ctx, http.MethodPut, endpointChannelPin(msg.ChannelID, msg.ID), nil)
	return err
}

// Unpin removes the message from its channel's pins. Requires the
// manage-messages permission in guild channels.
func (s *Messages) Unpin(ctx context.Context, msg *model.Message) error {
	required := permission.NewSet(permission.ManageMessages)
	if err := authorize(s.snapshot, msg.ChannelID, msg.GuildID, required); err != nil {
		return err
	}
	_, err := s.transport.Do(ctx, http.MethodDelete, endpointChannelPin(msg.ChannelID, msg.ID), nil)
	return err
}

// Crosspost publishes a message to subscribed channels. The flag
// pre-checks run first and need neither cache nor network; authors may
// crosspost their own messages without the manage-messages permission.
func (s *Messages) Crosspost(ctx context.Context, msg *model.Message) (*model.Message, error) {
	if msg.Flags.Has(model.FlagCrossposted) {
		return nil, ErrAlreadyCrossposted
	}
	if msg.Flags.Has(model.FlagIsCrosspost) || msg.Type != model.MessageTypeRegular {
		return nil, ErrCannotCrosspost
	}

	if !isOwn(s.snapshot, msg) {
		required := permission.NewSet(permission.ManageMessages)
		if err := authorize(s.snapshot, msg.ChannelID, msg.GuildID, required); err != nil {
			return nil, err
		}
	}

	data, err := s.transport.Do(ctx, http.MethodPost, endpointMessageCrosspost(msg.ChannelID, msg.ID), nil)
	if err != nil {
		return nil, err
	}
	return decodeMessage(data)
}

// Reply sends an inline reply without pinging the replied-to user.
func (s *Messages) Reply(ctx context.Context, msg *model.Message, content string) (*model.Message, error) {
	ping := false
	return s.reply(ctx, msg, content, &ping)
}

// ReplyPing sends an inline reply that pings the replied-to user.
func (s *Messages) ReplyPing(ctx context.Context, msg *model.Message, content string) (*model.Message, error) {
	ping := true
	return s.reply(ctx, msg, content, &ping)
}

// ReplyMention replies by prepending the author's mention token to the
// content, without the inline reply reference and without any mention
// override.
func (s *Messages) ReplyMention(ctx context.Context, msg *model.Message, content string) (*model.Message, error) {
	return s.reply(ctx, msg, msg.Author.Mention()+" "+content, nil)
}

// reply implements the three reply flavors. A non-nil ping attaches the
// inline reference and a mention override: attaching any override
// implicitly suppresses all pings, so the categories other than the
// reply ping are re-enabled explicitly.
func (s *Messages) reply(ctx context.Context, msg *model.Message, content string, ping *bool) (*model.Message, error) {
	required := permission.NewSet(permission.SendMessages)
	if err := authorize(s.snapshot, msg.ChannelID, msg.GuildID, required); err != nil {
		return nil, err
	}

	b := NewMessageBuilder().Content(content)
	if ping != nil {
		b.Reference(msg.NewReference())
		b.AllowedMentions(&model.AllowedMentions{
			Parse:       []string{model.ParseEveryone, model.ParseUsers, model.ParseRoles},
			RepliedUser: *ping,
		})
	}
	return s.send(ctx, msg.ChannelID, b)
}

// SuppressEmbeds hides all embeds on a message. Requires the
// manage-messages permission, and with a cache available additionally
// requires being the author. The committed message is returned as a
// new value.
func (s *Messages) SuppressEmbeds(ctx context.Context, msg *model.Message) (*model.Message, error) {
	required := permission.NewSet(permission.ManageMessages)
	if err := authorize(s.snapshot, msg.ChannelID, msg.GuildID, required); err != nil {
		return nil, err
	}
	if s.snapshot != nil {
		if current, ok := s.snapshot.CurrentUser(); ok && msg.Author.ID != current.ID {
			return nil, ErrNotAuthor
		}
	}

	payload := NewEditBuilder().SuppressEmbeds(true).Build()
	data, err := s.transport.Do(ctx, http.MethodPatch, endpointChannelMessage(msg.ChannelID, msg.ID), payload)
	if err != nil {
		return nil, err
	}
	return decodeMessage(data)
}

// Member fetches the author's guild member profile, preferring the
// cache. Messages outside a guild have no member to resolve.
func (s *Messages) Member(ctx context.Context, msg *model.Message) (*model.Member, error) {
	if msg.GuildID.IsZero() {
		return nil, ErrItemMissing
	}

	if s.snapshot != nil {
		if member, ok := s.snapshot.Member(msg.GuildID, msg.Author.ID); ok {
			return member, nil
		}
	}

	data, err := s.transport.Do(ctx, http.MethodGet, endpointGuildMember(msg.GuildID, msg.Author.ID), nil)
	if err != nil {
		return nil, err
	}
	var member model.Member
	if err := json.Unmarshal(data, &member); err != nil {
		return nil, fmt.Errorf("failed to decode member: %w", err)
	}
	return &member, nil
}
