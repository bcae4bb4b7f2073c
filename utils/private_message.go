package utils

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ErrDirectMessagesClosed means the member does not accept direct messages from the bot.
var ErrDirectMessagesClosed = errors.New("member does not accept direct messages")

// DirectMessenger is the part of *discordgo.Session needed to reach a member privately.
type DirectMessenger interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DirectMessage sends content and embeds to a member's DM channel.
func DirectMessage(s DirectMessenger, userID, content string, embeds ...*discordgo.MessageEmbed) error {
	channel, err := s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("error creating private channel with user %s: %w", userID, dmError(err))
	}
	_, err = s.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{Content: content, Embeds: embeds})
	if err != nil {
		return fmt.Errorf("error sending private message to user %s: %w", userID, dmError(err))
	}
	return nil
}

func dmError(err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Message != nil && rest.Message.Code == discordgo.ErrCodeCannotSendMessagesToThisUser {
		return fmt.Errorf("%w: %w", ErrDirectMessagesClosed, err)
	}
	return err
}
