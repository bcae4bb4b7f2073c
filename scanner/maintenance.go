// Package scanner runs the periodic maintenance passes: violation expiry,
// database backups, ticket auto-close and data cleanup.
package scanner

import (
	"community-bot/ledger"
	"community-bot/metrics"
	"community-bot/model"
	"community-bot/tickets"
	"community-bot/utils"
	"time"

	"github.com/jmoiron/sqlx"
)

// SystemActor is recorded as the closer of tickets the bot closes itself.
const SystemActor = "system"

// Deps are the components maintenance works on. Log may be nil, in which case
// results only reach the process log.
type Deps struct {
	DB      *sqlx.DB
	Ledger  *ledger.Ledger
	Desk    *tickets.Desk
	Config  *model.Config
	Log     utils.EmbedSender
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Maintenance bundles the maintenance passes. Each pass is safe to run at any
// time and is a no-op when there is nothing to do.
type Maintenance struct {
	db      *sqlx.DB
	ledger  *ledger.Ledger
	desk    *tickets.Desk
	cfg     *model.Config
	log     utils.EmbedSender
	metrics *metrics.Metrics
	now     func() time.Time
}

func New(d Deps) *Maintenance {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Maintenance{
		db:      d.DB,
		ledger:  d.Ledger,
		desk:    d.Desk,
		cfg:     d.Config,
		log:     d.Log,
		metrics: d.Metrics,
		now:     d.Now,
	}
}

func (m *Maintenance) logChannel() string {
	return m.cfg.LogChannelID
}
