package punish

import (
	"community-bot/bot"
	"community-bot/utils"
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

const defaultStatsDays = 7

// HandleViolationsCommand dispatches the /violations subcommands. Helpers and above only.
func HandleViolationsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !b.RequireLevel(s, i, utils.HelperLevel) {
		return
	}
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		utils.SendErrorResponse(s, i, "Unknown subcommand.")
		return
	}
	sub := options[0]
	opts := utils.OptionMap(sub.Options)

	switch sub.Name {
	case "history":
		userOpt, ok := opts["user"]
		if !ok {
			utils.SendErrorResponse(s, i, "Please choose a member.")
			return
		}
		handleHistory(s, i, b, userOpt.UserValue(nil).ID)
	case "stats":
		handleStats(s, i, b, int(utils.IntOption(opts, "days", defaultStatsDays)))
	default:
		utils.SendErrorResponse(s, i, "Unknown subcommand.")
	}
}

func handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, memberID string) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	recs, err := b.Ledger.ListForMember(ctx, memberID)
	if err != nil {
		log.Printf("Failed to list violations for %s: %v", memberID, err)
		utils.SendFollowUpError(s, i.Interaction, utils.UserMessage(err))
		return
	}
	utils.SendFollowUpEmbeds(s, i.Interaction, HistoryEmbed(memberID, recs, time.Now()))
}

func handleStats(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, days int) {
	if days < 1 {
		days = defaultStatsDays
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	since := time.Now().AddDate(0, 0, -days)
	stats, err := b.Ledger.Stats(ctx, since)
	if err != nil {
		log.Printf("Failed to load violation stats: %v", err)
		utils.SendFollowUpError(s, i.Interaction, utils.UserMessage(err))
		return
	}
	utils.SendFollowUpEmbeds(s, i.Interaction, StatsEmbed(stats, days))
}
