package punish

import (
	"community-bot/model"
	"community-bot/utils"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	colorPunish  = 0xE74C3C
	colorHistory = 0xF39C12
	colorStats   = 0x3498DB
)

// maxHistoryLines caps the records listed in a history embed.
const maxHistoryLines = 15

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return fmt.Sprintf("%dth", n)
	}
	switch n % 10 {
	case 1:
		return fmt.Sprintf("%dst", n)
	case 2:
		return fmt.Sprintf("%dnd", n)
	case 3:
		return fmt.Sprintf("%drd", n)
	}
	return fmt.Sprintf("%dth", n)
}

func expiryText(rec *model.ViolationRecord) string {
	if at, ok := rec.Expiry(); ok {
		return fmt.Sprintf("<t:%d:R>", at.Unix())
	}
	return "Never"
}

// PunishmentEmbed is posted in the channel after a violation is recorded.
func PunishmentEmbed(rec *model.ViolationRecord, rule *model.Rule, staffID string) *discordgo.MessageEmbed {
	title := rec.RuleID
	if rule != nil {
		title = fmt.Sprintf("%s · %s", rule.ID, rule.Title)
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Member", Value: fmt.Sprintf("<@%s>", rec.MemberID), Inline: true},
		{Name: "Staff", Value: fmt.Sprintf("<@%s>", staffID), Inline: true},
		{Name: "Offense", Value: ordinalSuffix(rec.Ordinal), Inline: true},
		{Name: "Punishment", Value: utils.TierSummary(rec.Tier())},
		{Name: "Counts until", Value: expiryText(rec), Inline: true},
		{Name: "Appeal", Value: appealText(rec, rule), Inline: true},
	}
	if rec.Notes != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Notes", Value: rec.Notes})
	}
	return &discordgo.MessageEmbed{
		Title:     "⚖️ Violation recorded: " + title,
		Color:     colorPunish,
		Fields:    fields,
		Footer:    &discordgo.MessageEmbedFooter{Text: "Record " + rec.ID},
		Timestamp: rec.Issued().UTC().Format(time.RFC3339),
	}
}

func appealText(rec *model.ViolationRecord, rule *model.Rule) string {
	if !rec.AppealEligible {
		return "Not eligible"
	}
	if rule != nil && rule.AppealProcess != "" {
		return rule.AppealProcess
	}
	return "Eligible"
}

// MemberNotice is sent to the punished member by direct message.
func MemberNotice(rec *model.ViolationRecord, rule *model.Rule, guildName string) *discordgo.MessageEmbed {
	ruleName := rec.RuleID
	if rule != nil {
		ruleName = fmt.Sprintf("%s (%s)", rule.Title, rule.ID)
	}
	desc := fmt.Sprintf("You received a punishment in **%s** for breaking **%s**.\n\n**Punishment:** %s\n**Offense:** %s",
		guildName, ruleName, utils.TierSummary(rec.Tier()), ordinalSuffix(rec.Ordinal))
	if rec.AppealEligible {
		desc += "\n\n" + appealText(rec, rule)
	}
	return &discordgo.MessageEmbed{
		Title:       "Punishment notice",
		Description: desc,
		Color:       colorPunish,
		Timestamp:   rec.Issued().UTC().Format(time.RFC3339),
	}
}

// HistoryEmbed lists a member's records, newest first, at the given time.
func HistoryEmbed(memberID string, recs []model.ViolationRecord, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "📋 Violation history",
		Color: colorHistory,
	}
	if len(recs) == 0 {
		embed.Description = fmt.Sprintf("<@%s> has no violations on record.", memberID)
		return embed
	}

	active := 0
	var lines []string
	for i := range recs {
		rec := &recs[i]
		status := "expired"
		if rec.ActiveAt(now) {
			status = "active"
			active++
		}
		if len(lines) < maxHistoryLines {
			lines = append(lines, fmt.Sprintf("`%s` %s offense · %s · <t:%d:d> · %s",
				rec.RuleID, ordinalSuffix(rec.Ordinal), rec.Action.Label(), rec.IssuedAt, status))
		}
	}
	if len(recs) > maxHistoryLines {
		lines = append(lines, fmt.Sprintf("...and %d older records", len(recs)-maxHistoryLines))
	}

	embed.Description = fmt.Sprintf("<@%s> · %d records, %d active\n\n%s", memberID, len(recs), active, strings.Join(lines, "\n"))
	return embed
}

// StatsEmbed summarizes ledger statistics over the last days.
func StatsEmbed(stats *model.ViolationStats, days int) *discordgo.MessageEmbed {
	type staffCount struct {
		id string
		n  int
	}
	var staff []staffCount
	for id, n := range stats.ByStaff {
		staff = append(staff, staffCount{id, n})
	}
	sort.Slice(staff, func(i, j int) bool {
		if staff[i].n != staff[j].n {
			return staff[i].n > staff[j].n
		}
		return staff[i].id < staff[j].id
	})

	var top []string
	for idx, sc := range staff {
		if idx == 10 {
			break
		}
		top = append(top, fmt.Sprintf("%d. <@%s>: %d", idx+1, sc.id, sc.n))
	}
	if len(top) == 0 {
		top = []string{"No punishments issued."}
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📈 Violations in the last %d days", days),
		Color: colorStats,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Total", Value: fmt.Sprint(stats.Total), Inline: true},
			{Name: "Still active", Value: fmt.Sprint(stats.Active), Inline: true},
			{Name: "By staff", Value: strings.Join(top, "\n")},
		},
	}
}
