package defs

import "github.com/bwmarrin/discordgo"

// Ticket manages support tickets. Category choices are filled in by the builder.
var Ticket = &discordgo.ApplicationCommand{
	Name:        "ticket",
	Description: "Open or manage support tickets",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "open",
			Description: "Open a new ticket",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "category",
					Description: "What the ticket is about",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "description",
					Description: "Describe your issue",
					Required:    true,
					MaxLength:   1000,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "urgency",
					Description: "How urgent it is (default Medium)",
					Required:    false,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Low", Value: "Low"},
						{Name: "Medium", Value: "Medium"},
						{Name: "High", Value: "High"},
						{Name: "Critical", Value: "Critical"},
					},
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "close",
			Description: "Close a ticket",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "id",
					Description: "Ticket id, e.g. TKT-0001",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Why it is being closed",
					Required:    false,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list",
			Description: "List open tickets (staff)",
		},
	},
}
