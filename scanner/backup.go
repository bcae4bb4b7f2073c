package scanner

import (
	"community-bot/utils"
	"community-bot/utils/database"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
)

// BackupDatabase writes a timestamped copy of the database to the backup
// directory and prunes old copies beyond the configured retention.
func (m *Maintenance) BackupDatabase(ctx context.Context) (string, error) {
	start := m.now()
	defer m.metrics.ObserveTask("backup", start)

	path, err := database.Backup(ctx, m.db, m.cfg.BackupDir, start)
	if errors.Is(err, database.ErrBackupUnsupported) {
		log.Printf("Skipping backup: %v", err)
		return "", err
	}
	if err != nil {
		m.metrics.IncBackup(false)
		utils.LogError(m.log, m.logChannel(), "Backup", "Create", fmt.Sprintf("Database backup failed: %v", err))
		return "", err
	}
	m.metrics.IncBackup(true)

	removed, err := database.PruneBackups(m.cfg.BackupDir, m.cfg.BackupKeep)
	if err != nil {
		utils.LogWarn(m.log, m.logChannel(), "Backup", "Prune", err.Error())
	}
	for _, p := range removed {
		log.Printf("Deleted old backup: %s", p)
	}

	utils.LogInfo(m.log, m.logChannel(), "Backup", "Create", fmt.Sprintf("Database backed up to `%s` (%d old backups removed)", filepath.Base(path), len(removed)))
	return path, nil
}
