package punish

import (
	"community-bot/model"
	"community-bot/utils"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

// maxTimeout is the longest timeout Discord accepts.
const maxTimeout = 28 * 24 * time.Hour

// timeoutFor returns how long the member should be timed out on Discord for
// rec, or zero when the action is not a chat timeout.
func timeoutFor(rec *model.ViolationRecord) time.Duration {
	if rec.Action != model.ActionTimeout && rec.Action != model.ActionMute {
		return 0
	}
	d := rec.Tier().Duration()
	if d > maxTimeout {
		d = maxTimeout
	}
	return d
}

// applyTimeout times the member out when the recorded tier calls for it.
// Other actions are carried out by staff and only recorded here.
func applyTimeout(s *discordgo.Session, guildID string, rec *model.ViolationRecord) (time.Duration, error) {
	d := timeoutFor(rec)
	if d <= 0 {
		return 0, nil
	}
	until := rec.Issued().Add(d)
	if err := s.GuildMemberTimeout(guildID, rec.MemberID, &until); err != nil {
		return 0, err
	}
	return d, nil
}

// notifyMember sends the punishment notice by direct message.
func notifyMember(s *discordgo.Session, guildID string, rec *model.ViolationRecord, rule *model.Rule) {
	guildName := "the server"
	if guild, err := s.Guild(guildID); err == nil {
		guildName = guild.Name
	} else {
		log.Printf("Failed to get guild details: %v", err)
	}
	if err := utils.DirectMessage(s, rec.MemberID, "", MemberNotice(rec, rule, guildName)); err != nil {
		log.Printf("Failed to notify %s of record %s: %v", rec.MemberID, rec.ID, err)
	}
}
