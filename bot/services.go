package bot

import (
	"community-bot/ledger"
	"community-bot/metrics"
	"community-bot/model"
	"community-bot/punish"
	"community-bot/rulestore"
	"community-bot/scanner"
	"community-bot/search"
	"community-bot/tickets"
	"community-bot/utils"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// punishCooldown keeps a staff member from punishing the same member twice in quick succession.
const punishCooldown = 10 * time.Second

// Services holds the bot's components. It works without a Discord session,
// which is how the command line maintenance tools use it.
type Services struct {
	Config         *model.Config
	DB             *sqlx.DB
	Rules          *rulestore.Store
	Resolver       *punish.Resolver
	Ledger         *ledger.Ledger
	Index          *search.Index
	Desk           *tickets.Desk
	Maintenance    *scanner.Maintenance
	Metrics        *metrics.Metrics
	PunishCooldown *utils.Cooldown
	StartedAt      time.Time
}

// NewServices wires every component onto db. logSink receives channel log
// embeds and may be nil.
func NewServices(cfg *model.Config, db *sqlx.DB, m *metrics.Metrics, logSink utils.EmbedSender) *Services {
	rules := rulestore.New(db)
	resolver := punish.NewResolver(rules)
	led := ledger.New(rules, resolver, ledger.Options{
		ExpiredCountsTowardEscalation: cfg.ExpiredCountsTowardEscalation,
		WarningExpiry:                 cfg.WarningExpiry,
		Metrics:                       m,
	})
	desk := tickets.New(db, tickets.Options{
		MaxOpenPerMember: cfg.MaxOpenTicketsPerUser,
		Routes:           cfg.TicketRoutes,
		DefaultChannel:   cfg.TicketChannelID,
		Metrics:          m,
	})

	return &Services{
		Config:   cfg,
		DB:       db,
		Rules:    rules,
		Resolver: resolver,
		Ledger:   led,
		Index:    search.New(rules, m),
		Desk:     desk,
		Maintenance: scanner.New(scanner.Deps{
			DB:      db,
			Ledger:  led,
			Desk:    desk,
			Config:  cfg,
			Log:     logSink,
			Metrics: m,
		}),
		Metrics:        m,
		PunishCooldown: utils.NewCooldown(punishCooldown),
		StartedAt:      time.Now(),
	}
}

// Prepare seeds an empty rule store, then builds the search index and runs a
// first expiry sweep side by side.
func (s *Services) Prepare(ctx context.Context) error {
	if err := s.Rules.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed rule store: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.Index.Rebuild(gctx); err != nil {
			return fmt.Errorf("failed to build search index: %w", err)
		}
		log.Printf("Search index holds %d active rules", s.Index.Len())
		return nil
	})
	g.Go(func() error {
		_, err := s.Maintenance.SweepExpired(gctx)
		return err
	})
	return g.Wait()
}
