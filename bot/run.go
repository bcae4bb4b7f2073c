package bot

import (
	"community-bot/utils"
	"context"
	"fmt"
	"log"
)

// Run connects to Discord, registers commands and runs the scheduler until
// ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Prepare(ctx); err != nil {
		return err
	}

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if !b.Config.DisableCommandUnregister {
		log.Println("Unregistering existing commands...")
		b.UnregisterCommands()
	}
	log.Println("Registering commands...")
	if err := b.RefreshCommands(ctx); err != nil {
		log.Printf("Failed to register commands: %v", err)
	}

	b.scheduler.Start(ctx)

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	utils.LogInfo(b.Session, b.Config.LogChannelID, "System", "Startup", "Bot has started successfully.")

	<-ctx.Done()
	return nil
}
