package client

import (
	"fmt"
	"net/url"

	"github.com/accordkit/accord/model"
)

func endpointChannelMessages(channelID model.Snowflake) string {
	return fmt.Sprintf("/channels/%s/messages", channelID)
}

func endpointChannelMessage(channelID, messageID model.Snowflake) string {
	return fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID)
}

func endpointMessageCrosspost(channelID, messageID model.Snowflake) string {
	return fmt.Sprintf("/channels/%s/messages/%s/crosspost", channelID, messageID)
}

func endpointMessageReactions(channelID, messageID model.Snowflake) string {
	return fmt.Sprintf("/channels/%s/messages/%s/reactions", channelID, messageID)
}

func endpointMessageReactionEmoji(channelID, messageID model.Snowflake, emoji model.Emoji) string {
	return fmt.Sprintf("/channels/%s/messages/%s/reactions/%s",
		channelID, messageID, url.PathEscape(emoji.APIName()))
}

func endpointOwnReaction(channelID, messageID model.Snowflake, emoji model.Emoji) string {
	return endpointMessageReactionEmoji(channelID, messageID, emoji) + "/@me"
}

func endpointChannelPin(channelID, messageID model.Snowflake) string {
	return fmt.Sprintf("/channels/%s/pins/%s", channelID, messageID)
}

func endpointGuildMember(guildID, userID model.Snowflake) string {
	return fmt.Sprintf("/guilds/%s/members/%s", guildID, userID)
}
