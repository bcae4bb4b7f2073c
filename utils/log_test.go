package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	channel string
	embeds  []*discordgo.MessageEmbed
	err     error
}

func (r *recordingSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	r.channel = channelID
	r.embeds = append(r.embeds, embed)
	return &discordgo.Message{}, r.err
}

func TestLogPostsEmbedToChannel(t *testing.T) {
	sender := &recordingSender{}
	require.NoError(t, LogWarn(sender, "log-chan", "ledger", "expire", strings.Repeat("x", 2000)))

	require.Len(t, sender.embeds, 1)
	assert.Equal(t, "log-chan", sender.channel)
	embed := sender.embeds[0]
	assert.Equal(t, "WARN Log", embed.Title)
	assert.Equal(t, getColor(Warn), embed.Color)
	assert.Len(t, embed.Fields[2].Value, 1024)
}

func TestLogWithoutChannelIsLocalOnly(t *testing.T) {
	sender := &recordingSender{}
	assert.NoError(t, LogInfo(sender, "", "m", "op", ""))
	assert.NoError(t, LogError(nil, "chan", "m", "op", ""))
	assert.Empty(t, sender.embeds)
}

func TestLogReturnsSendError(t *testing.T) {
	sender := &recordingSender{err: errors.New("missing access")}
	assert.Error(t, LogError(sender, "chan", "m", "op", "boom"))
}
