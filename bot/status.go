package bot

import (
	"community-bot/utils"
	"community-bot/utils/database"
	"context"
	"log"
	"time"
)

// Status is a snapshot of the bot's data and host, shown by /system-info and
// served on the HTTP status endpoint.
type Status struct {
	Uptime        string           `json:"uptime"`
	Rules         int              `json:"rules"`
	IndexedRules  int              `json:"indexed_rules"`
	OpenTickets   int              `json:"open_tickets"`
	DatabaseBytes int64            `json:"database_bytes"`
	DBDriver      string           `json:"db_driver"`
	System        utils.SystemInfo `json:"system"`
}

// Status collects counts from storage. Counts that cannot be read are left
// zero and logged; only a failure to reach storage at all is returned.
func (s *Services) Status(ctx context.Context) (*Status, error) {
	if err := s.DB.PingContext(ctx); err != nil {
		return nil, err
	}
	st := &Status{
		Uptime:       utils.FormatDuration(time.Since(s.StartedAt)),
		IndexedRules: s.Index.Len(),
		DBDriver:     s.DB.DriverName(),
	}

	if n, err := s.Rules.CountRules(ctx); err == nil {
		st.Rules = n
	} else {
		log.Printf("Status: %v", err)
	}
	if open, err := s.Desk.ListOpen(ctx); err == nil {
		st.OpenTickets = len(open)
	} else {
		log.Printf("Status: %v", err)
	}
	if size, err := database.Size(ctx, s.DB); err == nil {
		st.DatabaseBytes = size
	} else {
		log.Printf("Status: %v", err)
	}
	st.System = utils.CollectSystemInfo(ctx)
	return st, nil
}
