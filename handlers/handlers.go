package handlers

import (
	"community-bot/bot"
	"community-bot/handlers/punish"
	"community-bot/handlers/rules"
	"community-bot/handlers/ticket"
	"community-bot/utils"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type handlerFunc = func(s *discordgo.Session, i *discordgo.InteractionCreate)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	b.ComponentHandlers = componentHandlers(b)
	addHandlers(b)
}

// with binds a handler that needs the bot.
func with(b *bot.Bot, h func(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot)) handlerFunc {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		h(s, i, b)
	}
}

func commandHandlers(b *bot.Bot) map[string]handlerFunc {
	return map[string]handlerFunc{
		"rule-search":     with(b, rules.HandleSearch),
		"rule-view":       with(b, rules.HandleView),
		"rule-deactivate": with(b, rules.HandleDeactivate),
		"rule-stats":      with(b, rules.HandleStats),
		"punish":          with(b, punish.HandlePunishCommand),
		"violations":      with(b, punish.HandleViolationsCommand),
		"ticket":          with(b, ticket.HandleTicketCommand),
		"backup":          with(b, HandleBackupCommand),
		"system-info":     with(b, SystemInfoHandler),
	}
}

// componentHandlers is keyed by the custom id prefix before the first colon.
func componentHandlers(b *bot.Bot) map[string]handlerFunc {
	return map[string]handlerFunc{
		rules.SearchPagePrefix: with(b, rules.HandleSearchPage),
		ticket.ClaimPrefix:     with(b, ticket.HandleClaimButton),
		ticket.ClosePrefix:     with(b, ticket.HandleCloseButton),
	}
}

func componentKey(customID string) string {
	key, _, _ := strings.Cut(customID, ":")
	return key
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", r.User.Username, r.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Member == nil || i.Member.User == nil {
			// Direct messages carry no guild member; every command is guild-only.
			return
		}
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			name := i.ApplicationCommandData().Name
			if h, ok := b.CommandHandlers[name]; ok {
				b.Metrics.IncCommand(name)
				h(s, i)
			}
		case discordgo.InteractionMessageComponent:
			if h, ok := b.ComponentHandlers[componentKey(i.MessageComponentData().CustomID)]; ok {
				h(s, i)
			}
		case discordgo.InteractionApplicationCommandAutocomplete:
			handleAutocomplete(s, i, b)
		}
	})
}

// respondError is used where a handler has not yet acknowledged the interaction.
func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	utils.SendErrorResponse(s, i, utils.UserMessage(err))
}
