package defs

import "github.com/bwmarrin/discordgo"

var Punish = &discordgo.ApplicationCommand{
	Name:        "punish",
	Description: "Record a rule violation and apply the escalated punishment",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Member who broke the rule",
			Required:    true,
		},
		{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "rule",
			Description:  "Rule id that was broken",
			Required:     true,
			Autocomplete: true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "notes",
			Description: "Evidence or context for the record",
			Required:    false,
			MaxLength:   500,
		},
	},
}

var Violations = &discordgo.ApplicationCommand{
	Name:        "violations",
	Description: "Inspect violation records",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "history",
			Description: "List a member's violations",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to look up",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "stats",
			Description: "Summarize recent violations",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "days",
					Description: "How many days back to count (default 7)",
					Required:    false,
					MinValue:    &minDays,
					MaxValue:    365,
				},
			},
		},
	},
}

var minDays = 1.0
