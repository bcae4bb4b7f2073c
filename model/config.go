package model

import "time"

// RoleIDs are the Discord roles mapped onto the staff hierarchy.
type RoleIDs struct {
	Admin       string
	SeniorStaff string
	Staff       string
	Moderator   string
	Helper      string
}

// Config is the application configuration. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	BotToken     string
	AppID        string
	GuildID      string
	LogChannelID string
	Roles        RoleIDs

	DeveloperUserIDs         []string
	DisableCommandUnregister bool

	DBDriver string
	DBDSN    string

	BackupDir           string
	BackupKeep          int
	BackupInterval      time.Duration
	ExpirySweepInterval time.Duration
	CleanupInterval     time.Duration
	LogRetention        time.Duration

	TicketAutoClose       time.Duration
	MaxOpenTicketsPerUser int
	TicketChannelID       string
	TicketRoutes          map[string]string

	RulesSearchLimit              int
	WarningExpiry                 time.Duration
	ExpiredCountsTowardEscalation bool

	// StatsChannelID receives the periodic violation report; empty falls back to LogChannelID.
	StatsChannelID      string
	StatsReportInterval time.Duration

	HTTPAddr string
}
