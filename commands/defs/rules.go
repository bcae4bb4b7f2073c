package defs

import "github.com/bwmarrin/discordgo"

// RuleSearch looks rules up by keyword. Category choices are filled in by the builder.
var RuleSearch = &discordgo.ApplicationCommand{
	Name:        "rule-search",
	Description: "Search the server rules by keyword",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "query",
			Description: "Words to look for in rule titles, text and keywords",
			Required:    true,
			MaxLength:   80,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "category",
			Description: "Only search one category",
			Required:    false,
		},
	},
}

var RuleView = &discordgo.ApplicationCommand{
	Name:        "rule-view",
	Description: "Show a rule and its punishment schedule",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "rule",
			Description:  "Rule id, e.g. GR001",
			Required:     true,
			Autocomplete: true,
		},
	},
}

var RuleDeactivate = &discordgo.ApplicationCommand{
	Name:        "rule-deactivate",
	Description: "Retire a rule permanently (admin)",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "rule",
			Description:  "Rule id to deactivate",
			Required:     true,
			Autocomplete: true,
		},
	},
}

var RuleStats = &discordgo.ApplicationCommand{
	Name:        "rule-stats",
	Description: "Show rule counts per category",
}
