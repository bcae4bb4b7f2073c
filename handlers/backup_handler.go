package handlers

import (
	"community-bot/bot"
	"community-bot/model"
	"community-bot/utils"
	"community-bot/utils/database"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/bwmarrin/discordgo"
)

// HandleBackupCommand writes a database backup on demand. Admins only.
func HandleBackupCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !b.RequireLevel(s, i, utils.AdminLevel) {
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	path, err := b.Maintenance.BackupDatabase(ctx)
	switch {
	case errors.Is(err, database.ErrBackupUnsupported):
		utils.SendFollowUpError(s, i.Interaction, "Backups are only available for SQLite databases. Use your database's own tooling.")
		return
	case err != nil:
		utils.SendFollowUpError(s, i.Interaction, "Backup failed. Check the bot log for details.")
		return
	}

	entry := model.ActionLog{ActionType: "backup", StaffID: i.Member.User.ID, TargetID: filepath.Base(path), Details: "Manual backup"}
	if err := database.LogAction(ctx, b.DB, entry); err != nil {
		log.Printf("Failed to write action log: %v", err)
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ Backup written to `%s`.", filepath.Base(path)))
}
