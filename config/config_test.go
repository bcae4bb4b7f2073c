package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("APP_ID", "app")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, 6*time.Hour, cfg.BackupInterval)
	assert.Equal(t, 72*time.Hour, cfg.TicketAutoClose)
	assert.Equal(t, 90*24*time.Hour, cfg.LogRetention)
	assert.Equal(t, 30*24*time.Hour, cfg.WarningExpiry)
	assert.Equal(t, 3, cfg.MaxOpenTicketsPerUser)
	assert.Equal(t, 15, cfg.RulesSearchLimit)
	assert.False(t, cfg.ExpiredCountsTowardEscalation)
	assert.Empty(t, cfg.TicketRoutes)
	assert.Equal(t, 24*time.Hour, cfg.StatsReportInterval)
}

func TestLoadParsesTypedValues(t *testing.T) {
	t.Setenv("EXPIRED_COUNTS_TOWARD_ESCALATION", "true")
	t.Setenv("DEVELOPER_USER_IDS", " 1, 2 ,,3")
	t.Setenv("TICKET_ROUTES", "Player Report=111, Bug Report=222")
	t.Setenv("EXPIRY_SWEEP_MINUTES", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.ExpiredCountsTowardEscalation)
	assert.Equal(t, []string{"1", "2", "3"}, cfg.DeveloperUserIDs)
	assert.Equal(t, map[string]string{"Player Report": "111", "Bug Report": "222"}, cfg.TicketRoutes)
	assert.Equal(t, 10*time.Minute, cfg.ExpirySweepInterval)
}

func TestLoadReportsEveryProblem(t *testing.T) {
	t.Setenv("BACKUP_KEEP", "lots")
	t.Setenv("RULES_SEARCH_LIMIT", "0")
	t.Setenv("EXPIRED_COUNTS_TOWARD_ESCALATION", "maybe")
	t.Setenv("TICKET_ROUTES", "Support")
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
	for _, key := range []string{"BACKUP_KEEP", "RULES_SEARCH_LIMIT", "EXPIRED_COUNTS_TOWARD_ESCALATION", "TICKET_ROUTES", "DB_DRIVER"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backup_keep: 4\nticket_routes:\n  Support: \"999\"\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.BackupKeep)
	assert.Equal(t, "999", cfg.TicketRoutes["support"])
}

func TestValidateBot(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	err = ValidateBot(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
	assert.Contains(t, err.Error(), "APP_ID")

	cfg.BotToken, cfg.AppID, cfg.Roles.Admin = "t", "a", "r"
	assert.NoError(t, ValidateBot(cfg))
}
