// Package tasks holds periodic jobs that post to Discord channels.
package tasks

import (
	"community-bot/model"
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ReportWindow is how far back the violation report counts.
const ReportWindow = 7 * 24 * time.Hour

// StatsSource supplies ledger statistics.
type StatsSource interface {
	Stats(ctx context.Context, since time.Time) (*model.ViolationStats, error)
}

// ChannelPoster is the part of *discordgo.Session the report needs.
type ChannelPoster interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ViolationReport keeps one leaderboard message per channel up to date.
type ViolationReport struct {
	stats     StatsSource
	poster    ChannelPoster
	channelID string
	now       func() time.Time

	mu        sync.Mutex
	messageID string
}

func NewViolationReport(stats StatsSource, poster ChannelPoster, channelID string) *ViolationReport {
	return &ViolationReport{stats: stats, poster: poster, channelID: channelID, now: time.Now}
}

// ReportEmbed renders the staff leaderboard for the window ending at now.
func ReportEmbed(stats *model.ViolationStats, window time.Duration, now time.Time) *discordgo.MessageEmbed {
	var staff []string
	for id := range stats.ByStaff {
		staff = append(staff, id)
	}
	sort.Slice(staff, func(i, j int) bool {
		if stats.ByStaff[staff[i]] != stats.ByStaff[staff[j]] {
			return stats.ByStaff[staff[i]] > stats.ByStaff[staff[j]]
		}
		return staff[i] < staff[j]
	})

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("### Violations in the last %d days\n", int(window.Hours()/24)))
	builder.WriteString(fmt.Sprintf("**Total: %d** (%d still active)\n\n", stats.Total, stats.Active))
	builder.WriteString("**Staff leaderboard:**\n")
	if len(staff) == 0 {
		builder.WriteString("No punishments issued.\n")
	}
	for i, id := range staff {
		builder.WriteString(fmt.Sprintf("%d. <@%s>: %d\n", i+1, id, stats.ByStaff[id]))
	}

	return &discordgo.MessageEmbed{
		Title:       "Punishment leaderboard",
		Description: builder.String(),
		Timestamp:   now.Format(time.RFC3339),
		Color:       0x00ff00,
	}
}

// Update posts the report, editing the previous message when there is one.
func (r *ViolationReport) Update(ctx context.Context) {
	if r.channelID == "" {
		return
	}
	now := r.now()
	stats, err := r.stats.Stats(ctx, now.Add(-ReportWindow))
	if err != nil {
		log.Printf("Failed to load violation stats: %v", err)
		return
	}
	embed := ReportEmbed(stats, ReportWindow, now)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.messageID != "" {
		_, editErr := r.poster.ChannelMessageEditEmbed(r.channelID, r.messageID, embed)
		if editErr == nil {
			return
		}
		log.Printf("Failed to edit violation report %s, posting a new one: %v", r.messageID, editErr)
	}
	msg, err := r.poster.ChannelMessageSendEmbed(r.channelID, embed)
	if err != nil {
		log.Printf("Failed to send violation report to channel %s: %v", r.channelID, err)
		return
	}
	r.messageID = msg.ID
}
