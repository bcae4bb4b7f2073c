package bot

import (
	"community-bot/commands"
	"community-bot/metrics"
	"community-bot/model"
	"community-bot/tasks"
	"community-bot/utils"
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// Bot is the Discord front end over Services.
type Bot struct {
	*Services
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	ComponentHandlers  map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	scheduler          *Scheduler
}

func New(cfg *model.Config, db *sqlx.DB, m *metrics.Metrics) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	dg.StateEnabled = false

	b := &Bot{
		Services:          NewServices(cfg, db, m, dg),
		Session:           dg,
		CommandHandlers:   make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)),
		ComponentHandlers: make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)),
	}
	statsChannel := cfg.StatsChannelID
	if statsChannel == "" {
		statsChannel = cfg.LogChannelID
	}
	report := tasks.NewViolationReport(b.Ledger, dg, statsChannel)
	b.scheduler = NewScheduler(b.Services, b.announceClosed,
		Task{Name: "violation-report", Interval: cfg.StatsReportInterval, Run: report.Update})
	return b, nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	if err := b.Session.Close(); err != nil {
		log.Printf("Error closing Discord session: %v", err)
	}
}

// RefreshCommands overwrites the guild's slash commands with the current set.
// Rule category choices are read from the store, so this runs again after
// categories change.
func (b *Bot) RefreshCommands(ctx context.Context) error {
	cats, err := b.Rules.ListCategories(ctx)
	if err != nil {
		return err
	}
	cmds := commands.GenerateCommands(cats)
	log.Printf("Registering %d commands for guild %s...", len(cmds), b.Config.GuildID)
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Config.AppID, b.Config.GuildID, cmds)
	if err != nil {
		return fmt.Errorf("cannot update commands for guild '%s': %w", b.Config.GuildID, err)
	}
	b.RegisteredCommands = registered
	return nil
}

// UnregisterCommands removes every command the bot registered in the guild.
func (b *Bot) UnregisterCommands() {
	existing, err := b.Session.ApplicationCommands(b.Config.AppID, b.Config.GuildID)
	if err != nil {
		log.Printf("Could not fetch commands for guild %s: %v", b.Config.GuildID, err)
		return
	}
	for _, cmd := range existing {
		if err := b.Session.ApplicationCommandDelete(b.Config.AppID, b.Config.GuildID, cmd.ID); err != nil {
			log.Printf("Cannot delete '%s' command: %v", cmd.Name, err)
		}
	}
}

// announceClosed tells each ticket's channel that the ticket was auto-closed.
func (b *Bot) announceClosed(closed []model.Ticket) {
	for _, t := range closed {
		if t.ChannelID == "" {
			continue
		}
		msg := fmt.Sprintf("🔒 Ticket `%s` from <@%s> was closed automatically after %s without activity.",
			t.ID, t.MemberID, utils.FormatDuration(b.Config.TicketAutoClose))
		if _, err := b.Session.ChannelMessageSend(t.ChannelID, msg); err != nil {
			log.Printf("Failed to announce closure of ticket %s: %v", t.ID, err)
		}
	}
}
