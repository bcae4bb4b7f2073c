package commands

import (
	"community-bot/commands/defs"
	"community-bot/model"
	"community-bot/tickets"

	"github.com/bwmarrin/discordgo"
)

// maxChoices is Discord's limit on static choices per option.
const maxChoices = 25

// GenerateCommands returns the bot's slash commands with category choices
// filled in from the rule taxonomy and the ticket categories.
func GenerateCommands(ruleCategories []model.Category) []*discordgo.ApplicationCommand {
	ruleChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(ruleCategories))
	for _, c := range ruleCategories {
		if len(ruleChoices) == maxChoices {
			break
		}
		name := c.Name
		if c.Emoji != "" {
			name = c.Emoji + " " + c.Name
		}
		ruleChoices = append(ruleChoices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: c.Name})
	}

	ticketChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(tickets.Categories))
	for _, c := range tickets.Categories {
		ticketChoices = append(ticketChoices, &discordgo.ApplicationCommandOptionChoice{Name: c.Emoji + " " + c.Name, Value: c.Name})
	}

	return []*discordgo.ApplicationCommand{
		withChoices(defs.RuleSearch, []string{"category"}, ruleChoices),
		defs.RuleView,
		defs.RuleDeactivate,
		defs.RuleStats,
		defs.Punish,
		defs.Violations,
		withChoices(defs.Ticket, []string{"open", "category"}, ticketChoices),
		defs.Backup,
		defs.SystemInfo,
	}
}

// withChoices returns a copy of cmd where the option at path carries choices.
// The shared definition is left untouched.
func withChoices(cmd *discordgo.ApplicationCommand, path []string, choices []*discordgo.ApplicationCommandOptionChoice) *discordgo.ApplicationCommand {
	out := *cmd
	out.Options = copyOptions(cmd.Options, path, choices)
	return &out
}

func copyOptions(opts []*discordgo.ApplicationCommandOption, path []string, choices []*discordgo.ApplicationCommandOptionChoice) []*discordgo.ApplicationCommandOption {
	out := make([]*discordgo.ApplicationCommandOption, len(opts))
	for i, o := range opts {
		if len(path) == 0 || o.Name != path[0] {
			out[i] = o
			continue
		}
		c := *o
		if len(path) == 1 {
			c.Choices = choices
		} else {
			c.Options = copyOptions(o.Options, path[1:], choices)
		}
		out[i] = &c
	}
	return out
}
