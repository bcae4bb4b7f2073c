package handlers

import (
	"community-bot/bot"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

func SystemInfoHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := b.Status(ctx)
	if err != nil {
		log.Printf("Failed to collect status: %v", err)
		respondError(s, i, err)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{statusEmbed(st, s.HeartbeatLatency())},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to system info command: %v", err)
	}
}

func statusEmbed(st *bot.Status, latency time.Duration) *discordgo.MessageEmbed {
	sys := st.System
	return &discordgo.MessageEmbed{
		Title: "System information",
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: fmt.Sprintf("%s %s", sys.Platform, sys.PlatformVersion), Inline: true},
			{Name: "🔧 Kernel", Value: orDash(sys.KernelVersion), Inline: true},
			{Name: "🐹 Go", Value: sys.GoVersion, Inline: true},
			{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", sys.CPUCount), Inline: true},
			{Name: "🔥 CPU usage", Value: fmt.Sprintf("%.1f%%", sys.CPUPercent), Inline: true},
			{Name: "🧠 Memory", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", sys.MemoryPercent, sys.MemoryUsedMB, sys.MemoryTotalMB), Inline: true},
			{Name: "🗃️ Database", Value: fmt.Sprintf("%s, %.2f MB", st.DBDriver, float64(st.DatabaseBytes)/1024/1024), Inline: true},
			{Name: "⏱️ WebSocket latency", Value: latency.String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", sys.Goroutines), Inline: true},
			{Name: "📜 Rules", Value: fmt.Sprintf("%d stored, %d searchable", st.Rules, st.IndexedRules), Inline: true},
			{Name: "🎫 Open tickets", Value: fmt.Sprintf("%d", st.OpenTickets), Inline: true},
			{Name: "⌛ Uptime", Value: st.Uptime, Inline: true},
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
