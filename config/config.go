package config

import (
	"community-bot/model"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

var defaults = map[string]interface{}{
	"DB_DRIVER":                        "sqlite3",
	"DB_DSN":                           "data/community_bot.db",
	"BACKUP_DIR":                       "backups",
	"BACKUP_KEEP":                      10,
	"AUTO_BACKUP_INTERVAL_HOURS":       6,
	"EXPIRY_SWEEP_MINUTES":             5,
	"CLEANUP_INTERVAL_HOURS":           24,
	"LOG_RETENTION_DAYS":               90,
	"TICKET_AUTO_CLOSE_HOURS":          72,
	"MAX_OPEN_TICKETS_PER_USER":        3,
	"RULES_SEARCH_LIMIT":               15,
	"WARNING_EXPIRY_DAYS":              30,
	"EXPIRED_COUNTS_TOWARD_ESCALATION": false,
	"STATS_REPORT_HOURS":               24,
	"DISABLE_COMMAND_UNREGISTER":       false,
	"HTTP_ADDR":                        ":8080",
}

// Load reads .env (when present), the environment and the optional file named
// by CONFIG_FILE, and returns a typed configuration. Malformed values are all
// reported together.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return fromViper(v)
}

type parser struct {
	v    *viper.Viper
	errs []error
}

func (p *parser) str(key string) string {
	return strings.TrimSpace(p.v.GetString(key))
}

func (p *parser) num(key string, min int) int {
	n, err := cast.ToIntE(p.v.Get(key))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", key, p.v.GetString(key)))
		return 0
	}
	if n < min {
		p.errs = append(p.errs, fmt.Errorf("%s: must be at least %d, got %d", key, min, n))
	}
	return n
}

func (p *parser) flag(key string) bool {
	b, err := cast.ToBoolE(p.v.Get(key))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a boolean", key, p.v.GetString(key)))
	}
	return b
}

func (p *parser) list(key string) []string {
	var out []string
	for _, s := range strings.Split(p.v.GetString(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// routes accepts either a map from a config file or "Category=channel,..." text.
func (p *parser) routes(key string) map[string]string {
	raw := p.v.Get(key)
	if m, ok := raw.(map[string]interface{}); ok {
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[k] = cast.ToString(val)
		}
		return out
	}

	out := make(map[string]string)
	for _, pair := range p.list(key) {
		category, channel, ok := strings.Cut(pair, "=")
		category, channel = strings.TrimSpace(category), strings.TrimSpace(channel)
		if !ok || category == "" || channel == "" {
			p.errs = append(p.errs, fmt.Errorf("%s: %q is not Category=channelID", key, pair))
			continue
		}
		out[category] = channel
	}
	return out
}

func fromViper(v *viper.Viper) (*model.Config, error) {
	p := &parser{v: v}
	cfg := &model.Config{
		BotToken:     p.str("BOT_TOKEN"),
		AppID:        p.str("APP_ID"),
		GuildID:      p.str("GUILD_ID"),
		LogChannelID: p.str("LOG_CHANNEL_ID"),
		Roles: model.RoleIDs{
			Admin:       p.str("ADMIN_ROLE_ID"),
			SeniorStaff: p.str("SENIOR_STAFF_ROLE_ID"),
			Staff:       p.str("STAFF_ROLE_ID"),
			Moderator:   p.str("MODERATOR_ROLE_ID"),
			Helper:      p.str("HELPER_ROLE_ID"),
		},
		DeveloperUserIDs:         p.list("DEVELOPER_USER_IDS"),
		DisableCommandUnregister: p.flag("DISABLE_COMMAND_UNREGISTER"),

		DBDriver: p.str("DB_DRIVER"),
		DBDSN:    p.str("DB_DSN"),

		BackupDir:           p.str("BACKUP_DIR"),
		BackupKeep:          p.num("BACKUP_KEEP", 1),
		BackupInterval:      time.Duration(p.num("AUTO_BACKUP_INTERVAL_HOURS", 0)) * time.Hour,
		ExpirySweepInterval: time.Duration(p.num("EXPIRY_SWEEP_MINUTES", 1)) * time.Minute,
		CleanupInterval:     time.Duration(p.num("CLEANUP_INTERVAL_HOURS", 0)) * time.Hour,
		LogRetention:        time.Duration(p.num("LOG_RETENTION_DAYS", 1)) * 24 * time.Hour,

		TicketAutoClose:       time.Duration(p.num("TICKET_AUTO_CLOSE_HOURS", 0)) * time.Hour,
		MaxOpenTicketsPerUser: p.num("MAX_OPEN_TICKETS_PER_USER", 1),
		TicketChannelID:       p.str("TICKET_CHANNEL_ID"),
		TicketRoutes:          p.routes("TICKET_ROUTES"),

		RulesSearchLimit:              p.num("RULES_SEARCH_LIMIT", 1),
		WarningExpiry:                 time.Duration(p.num("WARNING_EXPIRY_DAYS", 1)) * 24 * time.Hour,
		ExpiredCountsTowardEscalation: p.flag("EXPIRED_COUNTS_TOWARD_ESCALATION"),

		StatsChannelID:      p.str("STATS_CHANNEL_ID"),
		StatsReportInterval: time.Duration(p.num("STATS_REPORT_HOURS", 0)) * time.Hour,

		HTTPAddr: p.str("HTTP_ADDR"),
	}

	switch cfg.DBDriver {
	case "sqlite3", "postgres":
	default:
		p.errs = append(p.errs, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DBDriver))
	}
	if cfg.DBDSN == "" {
		p.errs = append(p.errs, errors.New("DB_DSN: must not be empty"))
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ValidateBot checks the settings only the Discord bot needs, so offline
// commands can run without a token.
func ValidateBot(cfg *model.Config) error {
	var errs []error
	if cfg.BotToken == "" {
		errs = append(errs, errors.New("BOT_TOKEN: must be set"))
	}
	if cfg.AppID == "" {
		errs = append(errs, errors.New("APP_ID: must be set"))
	}
	if cfg.LogChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, logging will be disabled")
	}
	if cfg.Roles.Admin == "" && len(cfg.DeveloperUserIDs) == 0 {
		errs = append(errs, errors.New("ADMIN_ROLE_ID or DEVELOPER_USER_IDS: at least one must be set"))
	}
	return errors.Join(errs...)
}
