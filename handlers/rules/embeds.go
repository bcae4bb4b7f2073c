package rules

import (
	"community-bot/model"
	"community-bot/search"
	"community-bot/utils"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const defaultColor = 0x3498DB

var priorityEmoji = map[string]string{
	model.PriorityLow:      "🟢",
	model.PriorityMedium:   "🟡",
	model.PriorityHigh:     "🟠",
	model.PriorityCritical: "🔴",
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// RuleEmbed shows a rule with its full punishment schedule. cat may be nil.
func RuleEmbed(r *model.Rule, cat *model.Category) *discordgo.MessageEmbed {
	color := defaultColor
	title := fmt.Sprintf("%s · %s", r.ID, r.Title)
	if cat != nil {
		if cat.Color != 0 {
			color = cat.Color
		}
		if cat.Emoji != "" {
			title = cat.Emoji + " " + title
		}
	}
	if !r.Active {
		title += " (inactive)"
		color = 0x95A5A6
	}

	schedule := make([]string, len(r.Tiers))
	for i, t := range r.Tiers {
		line := fmt.Sprintf("**%d.** %s", t.Severity, utils.TierSummary(t))
		if t.Details != "" {
			line += "\n   " + t.Details
		}
		schedule[i] = line
	}
	if len(schedule) > 0 {
		schedule[len(schedule)-1] += " *(repeats)*"
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Category", Value: fmt.Sprintf("%s › %s", r.Category, r.Subcategory), Inline: true},
		{Name: "Priority", Value: fmt.Sprintf("%s %s", priorityEmoji[r.Priority], r.Priority), Inline: true},
		{Name: "Punishments", Value: truncate(strings.Join(schedule, "\n"), 1024)},
		{Name: "Keywords", Value: truncate(strings.Join(r.Keywords, ", "), 1024)},
	}
	if r.AppealProcess != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Appeals", Value: truncate(r.AppealProcess, 1024)})
	}

	return &discordgo.MessageEmbed{
		Title:       truncate(title, 256),
		Description: truncate(r.Body, 4096),
		Color:       color,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Last updated by " + r.UpdatedBy},
		Timestamp:   r.UpdatedAt.Format(time.RFC3339),
	}
}

// SearchEmbed lists one page of search results.
func SearchEmbed(query string, results []search.Result, page, perPage int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🔍 Rule search: %s", truncate(query, 200)),
		Color: defaultColor,
	}
	if len(results) == 0 {
		embed.Description = "No rules matched your search. Try different keywords."
		return embed
	}

	pages := utils.PageCount(len(results), perPage)
	start, end := utils.PageBounds(page, perPage, len(results))
	for _, res := range results[start:end] {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  truncate(fmt.Sprintf("%s · %s", res.Rule.ID, res.Rule.Title), 256),
			Value: truncate(fmt.Sprintf("%s › %s\n%s", res.Rule.Category, res.Rule.Subcategory, res.Rule.Body), 300),
		})
	}
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("%d results · page %d of %d · use /rule-view for details", len(results), page, pages),
	}
	return embed
}

// StatsEmbed summarizes rule counts per category.
func StatsEmbed(stats []model.CategoryStats) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{Title: "📊 Rule statistics", Color: defaultColor}
	total, active := 0, 0
	for _, st := range stats {
		total += st.TotalRules
		active += st.ActiveRules

		var subs []string
		for name, n := range st.Subcategories {
			subs = append(subs, fmt.Sprintf("%s: %d", name, n))
		}
		sort.Strings(subs)
		value := fmt.Sprintf("%d rules (%d active)", st.TotalRules, st.ActiveRules)
		if len(subs) > 0 {
			value += "\n" + strings.Join(subs, "\n")
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: st.Category, Value: truncate(value, 1024), Inline: true})
	}
	embed.Description = fmt.Sprintf("%d rules in %d categories, %d active.", total, len(stats), active)
	return embed
}
