package defs

import "github.com/bwmarrin/discordgo"

var Backup = &discordgo.ApplicationCommand{
	Name:        "backup",
	Description: "Back up the database now (admin)",
}

var SystemInfo = &discordgo.ApplicationCommand{
	Name:        "system-info",
	Description: "Display bot and system status information",
}
