package bot

import (
	"community-bot/utils"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// MemberLevel returns the invoking member's rank in the staff hierarchy.
func (b *Bot) MemberLevel(i *discordgo.InteractionCreate) utils.Level {
	if i.Member == nil || i.Member.User == nil {
		return utils.MemberLevel
	}
	return utils.CheckPermission(i.Member.Roles, i.Member.User.ID, b.Config.Roles, b.Config.DeveloperUserIDs)
}

// LevelOf returns the rank a guild member holds.
func (b *Bot) LevelOf(m *discordgo.Member) utils.Level {
	if m == nil || m.User == nil {
		return utils.MemberLevel
	}
	return utils.CheckPermission(m.Roles, m.User.ID, b.Config.Roles, b.Config.DeveloperUserIDs)
}

// RequireLevel answers with an ephemeral refusal and returns false when the
// invoking member ranks below need.
func (b *Bot) RequireLevel(s *discordgo.Session, i *discordgo.InteractionCreate, need utils.Level) bool {
	if b.MemberLevel(i) >= need {
		return true
	}
	utils.SendErrorResponse(s, i, fmt.Sprintf("You do not have permission to use this command. Required level: %s.", need))
	return false
}
