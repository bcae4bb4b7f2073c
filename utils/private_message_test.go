package utils

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	createErr, sendErr error
	channelFor         string
	sent               []*discordgo.MessageSend
}

func (f *fakeMessenger) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.channelFor = recipientID
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeMessenger) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, data)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func TestDirectMessage(t *testing.T) {
	f := &fakeMessenger{}
	embed := &discordgo.MessageEmbed{Title: "Punishment issued"}
	require.NoError(t, DirectMessage(f, "u1", "hello", embed))

	assert.Equal(t, "u1", f.channelFor)
	require.Len(t, f.sent, 1)
	assert.Equal(t, "hello", f.sent[0].Content)
	assert.Equal(t, []*discordgo.MessageEmbed{embed}, f.sent[0].Embeds)
}

func TestDirectMessageErrors(t *testing.T) {
	boom := errors.New("gateway down")
	err := DirectMessage(&fakeMessenger{createErr: boom}, "u1", "hello")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrDirectMessagesClosed)

	closed := &discordgo.RESTError{
		Response: &http.Response{Status: "403 Forbidden"},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeCannotSendMessagesToThisUser},
	}
	err = DirectMessage(&fakeMessenger{sendErr: closed}, "u1", "hello")
	assert.ErrorIs(t, err, ErrDirectMessagesClosed)
}
