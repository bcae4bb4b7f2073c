package utils

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

// EmbedSender is the part of *discordgo.Session the channel logger needs.
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func getColor(level LogLevel) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

func logEmbed(level LogLevel, module, operation, extraInfo string) *discordgo.MessageEmbed {
	if extraInfo == "" {
		extraInfo = "-"
	}
	if len(extraInfo) > 1024 {
		extraInfo = extraInfo[:1021] + "..."
	}
	return &discordgo.MessageEmbed{
		Title: string(level) + " Log",
		Color: getColor(level),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Module", Value: module},
			{Name: "Operation", Value: operation},
			{Name: "Details", Value: extraInfo},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// sendLog posts a log embed to the log channel. Without a sender or a channel
// the entry only goes to the process log.
func sendLog(s EmbedSender, channelID string, level LogLevel, module, operation, extraInfo string) error {
	log.Printf("[%s] %s/%s: %s", level, module, operation, extraInfo)
	if s == nil || channelID == "" {
		return nil
	}
	_, err := s.ChannelMessageSendEmbed(channelID, logEmbed(level, module, operation, extraInfo))
	return err
}

func LogInfo(s EmbedSender, channelID, module, operation, extraInfo string) error {
	return sendLog(s, channelID, Info, module, operation, extraInfo)
}

func LogWarn(s EmbedSender, channelID, module, operation, extraInfo string) error {
	return sendLog(s, channelID, Warn, module, operation, extraInfo)
}

func LogError(s EmbedSender, channelID, module, operation, extraInfo string) error {
	return sendLog(s, channelID, Error, module, operation, extraInfo)
}
