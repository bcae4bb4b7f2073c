// Package punish handles the /punish and /violations commands.
package punish

import (
	"community-bot/bot"
	"community-bot/ledger"
	"community-bot/model"
	"community-bot/utils"
	"community-bot/utils/database"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

const commandTimeout = 15 * time.Second

// HandlePunishCommand records a violation for the chosen member and rule.
func HandlePunishCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	// 1. Only staff may punish at all
	actorLevel := b.MemberLevel(i)
	if actorLevel < utils.HelperLevel {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return
	}

	// 2. Parse command options
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	userOpt, ok := opts["user"]
	if !ok {
		utils.SendErrorResponse(s, i, "Please choose a member.")
		return
	}
	targetID := userOpt.UserValue(nil).ID
	ruleID := utils.StringOption(opts, "rule")
	notes := utils.StringOption(opts, "notes")
	actorID := i.Member.User.ID

	if targetID == actorID {
		utils.SendErrorResponse(s, i, "You cannot punish yourself.")
		return
	}
	if !b.PunishCooldown.Acquire(actorID + ":" + targetID) {
		utils.SendErrorResponse(s, i, "You just punished this member. Please wait a few seconds before trying again.")
		return
	}

	// 3. Defer; everything below talks to the database and Discord
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	// 4. Check the hierarchy against the tier this offense would get
	targetLevel := utils.MemberLevel
	if member, err := s.GuildMember(i.GuildID, targetID); err == nil {
		targetLevel = b.LevelOf(member)
	} else {
		log.Printf("Could not fetch member %s, treating as a regular member: %v", targetID, err)
	}
	guard := utils.PunishGuard(actorLevel, targetLevel)
	_, tier, err := b.Ledger.NextTier(ctx, targetID, ruleID)
	if err == nil {
		err = guard(tier)
	}
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, utils.UserMessage(err))
		return
	}

	// 5. Record the violation; the guard runs again on the tier actually issued
	rec, err := b.Ledger.RecordViolation(ctx, ledger.Violation{
		MemberID: targetID,
		RuleID:   ruleID,
		StaffID:  actorID,
		Notes:    notes,
		Allow:    guard,
	})
	if err != nil {
		log.Printf("Failed to record violation of %s by %s: %v", ruleID, targetID, err)
		utils.SendFollowUpError(s, i.Interaction, utils.UserMessage(err))
		return
	}

	// 6. Apply a Discord timeout where the tier calls for one
	timedOut, err := applyTimeout(s, i.GuildID, rec)
	if err != nil {
		log.Printf("Failed to time out %s: %v", targetID, err)
	}

	// 7. Respond and notify
	rule, err := b.Rules.GetRule(ctx, ruleID)
	if err != nil {
		rule = nil
	}
	embed := PunishmentEmbed(rec, rule, actorID)
	if timedOut > 0 {
		embed.Description = fmt.Sprintf("Member timed out for %s.", utils.FormatDuration(timedOut))
	}
	utils.SendFollowUpEmbeds(s, i.Interaction, embed)
	notifyMember(s, i.GuildID, rec, rule)

	// 8. Audit
	entry := model.ActionLog{
		ActionType: "punish",
		StaffID:    actorID,
		TargetID:   targetID,
		Details:    fmt.Sprintf("%s offense %d: %s (record %s)", rec.RuleID, rec.Ordinal, rec.Action, rec.ID),
	}
	if err := database.LogAction(ctx, b.DB, entry); err != nil {
		log.Printf("Failed to write action log: %v", err)
	}
	utils.LogInfo(s, b.Config.LogChannelID, "Punish", "Record",
		fmt.Sprintf("<@%s> punished <@%s> under `%s`: %s", actorID, targetID, rec.RuleID, utils.TierSummary(rec.Tier())))
}
