package tasks

import (
	"community-bot/model"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticStats struct {
	stats *model.ViolationStats
	since time.Time
}

func (s *staticStats) Stats(_ context.Context, since time.Time) (*model.ViolationStats, error) {
	s.since = since
	return s.stats, nil
}

type recordingPoster struct {
	sent, edited int
	editErr      error
}

func (p *recordingPoster) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	p.sent++
	return &discordgo.Message{ID: "m" + string(rune('0'+p.sent)), ChannelID: channelID}, nil
}

func (p *recordingPoster) ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if p.editErr != nil {
		return nil, p.editErr
	}
	p.edited++
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func TestReportEmbed(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	stats := &model.ViolationStats{Total: 4, Active: 2, ByStaff: map[string]int{"a": 1, "b": 3}}

	embed := ReportEmbed(stats, ReportWindow, now)
	assert.Contains(t, embed.Description, "### Violations in the last 7 days")
	assert.Contains(t, embed.Description, "**Total: 4** (2 still active)")
	assert.Contains(t, embed.Description, "1. <@b>: 3\n2. <@a>: 1\n")

	empty := ReportEmbed(&model.ViolationStats{}, ReportWindow, now)
	assert.Contains(t, empty.Description, "No punishments issued.")
}

func TestUpdatePostsThenEdits(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	src := &staticStats{stats: &model.ViolationStats{}}
	poster := &recordingPoster{}
	r := NewViolationReport(src, poster, "chan")
	r.now = func() time.Time { return now }

	r.Update(context.Background())
	r.Update(context.Background())
	assert.Equal(t, 1, poster.sent)
	assert.Equal(t, 1, poster.edited)
	assert.Equal(t, now.Add(-ReportWindow), src.since)

	poster.editErr = errors.New("unknown message")
	r.Update(context.Background())
	require.Equal(t, 2, poster.sent)
	assert.Equal(t, "m2", r.messageID)
}

func TestUpdateWithoutChannelDoesNothing(t *testing.T) {
	poster := &recordingPoster{}
	NewViolationReport(&staticStats{stats: &model.ViolationStats{}}, poster, "").Update(context.Background())
	assert.Zero(t, poster.sent)
}
