// Package tickets keeps member support tickets and routes them to staff channels.
package tickets

import (
	"community-bot/metrics"
	"community-bot/model"
	"community-bot/utils"
	"community-bot/utils/database"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const ticketColumns = `id, member_id, channel_id, category, urgency, priority, description, status, created_at, last_activity, closed_at, closed_by, close_reason`

const maxDescription = 1000

// AutoCloseReason is recorded on tickets closed by CloseInactive.
const AutoCloseReason = "Auto-closed due to inactivity"

// Category describes a ticket category and how much it raises priority.
type Category struct {
	Name             string
	Emoji            string
	PriorityModifier int
	ResponseTime     string
}

// Categories lists the ticket categories members can pick, in menu order.
// Unrecognized input falls back to the last one.
var Categories = []Category{
	{Name: "Support", Emoji: "🔧", PriorityModifier: 0, ResponseTime: "10-15 minutes"},
	{Name: "Player Report", Emoji: "👤", PriorityModifier: 1, ResponseTime: "15-20 minutes"},
	{Name: "Bug Report", Emoji: "🐛", PriorityModifier: 2, ResponseTime: "20-30 minutes"},
	{Name: "Gang Registration", Emoji: "🏢", PriorityModifier: 0, ResponseTime: "30-45 minutes"},
	{Name: "Shop", Emoji: "🛍️", PriorityModifier: 1, ResponseTime: "15-25 minutes"},
	{Name: "Other", Emoji: "❓", PriorityModifier: 0, ResponseTime: "15-20 minutes"},
}

// Urgency levels and their priority modifiers.
var urgencies = map[string]int{
	"Low":      0,
	"Medium":   1,
	"High":     2,
	"Critical": 3,
}

// CriticalPriority is the priority at which staff should be pinged.
const CriticalPriority = 3

// Options configure a Desk.
type Options struct {
	MaxOpenPerMember int
	// Routes maps a category name, case-insensitively, to the channel its tickets are posted in.
	Routes         map[string]string
	DefaultChannel string
	Now            func() time.Time
	Metrics        *metrics.Metrics
}

// OpenRequest is a member's request for a new ticket.
type OpenRequest struct {
	MemberID    string
	Category    string
	Urgency     string
	Description string
}

// Desk stores tickets.
type Desk struct {
	db      *sqlx.DB
	opts    Options
	members utils.KeyedMutex
}

// New creates a desk on an initialized database.
func New(db *sqlx.DB, opts Options) *Desk {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxOpenPerMember <= 0 {
		opts.MaxOpenPerMember = 3
	}
	routes := make(map[string]string, len(opts.Routes))
	for category, channel := range opts.Routes {
		routes[strings.ToLower(category)] = channel
	}
	opts.Routes = routes
	return &Desk{db: db, opts: opts}
}

// MatchCategory maps free text to a known category, loosely.
func MatchCategory(input string) Category {
	in := strings.ToLower(strings.TrimSpace(input))
	if in != "" {
		for _, c := range Categories {
			if strings.ToLower(c.Name) == in {
				return c
			}
		}
		for _, c := range Categories {
			name := strings.ToLower(c.Name)
			if strings.Contains(in, name) || strings.Contains(name, in) {
				return c
			}
		}
	}
	return Categories[len(Categories)-1]
}

// NormalizeUrgency returns the canonical urgency name, defaulting to Medium.
func NormalizeUrgency(input string) string {
	in := strings.TrimSpace(input)
	for name := range urgencies {
		if strings.EqualFold(name, in) {
			return name
		}
	}
	return "Medium"
}

// Priority combines a category and an urgency into a ticket priority.
func Priority(category Category, urgency string) int {
	return category.PriorityModifier + urgencies[NormalizeUrgency(urgency)]
}

// Route returns the channel tickets of the given category are posted in.
func (d *Desk) Route(category string) string {
	if ch, ok := d.opts.Routes[strings.ToLower(category)]; ok && ch != "" {
		return ch
	}
	return d.opts.DefaultChannel
}

// Open creates a ticket unless the member already has the maximum number open.
func (d *Desk) Open(ctx context.Context, req OpenRequest) (*model.Ticket, error) {
	req.MemberID = strings.TrimSpace(req.MemberID)
	req.Description = strings.TrimSpace(req.Description)
	if req.MemberID == "" {
		return nil, model.Invalid("member_id", "must not be empty")
	}
	if req.Description == "" {
		return nil, model.Invalid("description", "must not be empty")
	}
	if len([]rune(req.Description)) > maxDescription {
		return nil, model.Invalid("description", "must be at most %d characters", maxDescription)
	}

	category := MatchCategory(req.Category)
	urgency := NormalizeUrgency(req.Urgency)

	unlock := d.members.Lock(req.MemberID)
	defer unlock()

	now := d.opts.Now().Unix()
	t := model.Ticket{
		MemberID:     req.MemberID,
		ChannelID:    d.Route(category.Name),
		Category:     category.Name,
		Urgency:      urgency,
		Priority:     Priority(category, urgency),
		Description:  req.Description,
		Status:       model.TicketOpen,
		CreatedAt:    now,
		LastActivity: now,
	}

	err := database.WithTx(ctx, d.db, func(tx *sqlx.Tx) error {
		var open int
		if err := tx.GetContext(ctx, &open, tx.Rebind(`SELECT COUNT(*) FROM tickets WHERE member_id = ? AND status = ?`), t.MemberID, model.TicketOpen); err != nil {
			return model.StorageErr("count open tickets", err)
		}
		if open >= d.opts.MaxOpenPerMember {
			return fmt.Errorf("member %s has %d open tickets: %w", t.MemberID, open, model.ErrTicketLimit)
		}

		id, err := nextTicketID(ctx, tx)
		if err != nil {
			return err
		}
		t.ID = id

		query := `INSERT INTO tickets (` + ticketColumns + `)
				  VALUES (:id, :member_id, :channel_id, :category, :urgency, :priority, :description, :status, :created_at, :last_activity, :closed_at, :closed_by, :close_reason)`
		if _, err := tx.NamedExecContext(ctx, query, t); err != nil {
			return model.StorageErr("insert ticket", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.opts.Metrics.IncTicketOpened(t.Category)
	return &t, nil
}

const ticketCounter = "ticket"

// nextTicketID hands out ids from a counter row, so ids of purged tickets are
// never reused. Ticket ids already present raise the counter if it lags behind.
func nextTicketID(ctx context.Context, tx *sqlx.Tx) (string, error) {
	var ids []string
	if err := tx.SelectContext(ctx, &ids, `SELECT id FROM tickets`); err != nil {
		return "", model.StorageErr("list ticket ids", err)
	}
	last := 0
	for _, id := range ids {
		n, err := strconv.Atoi(strings.TrimPrefix(id, "TKT-"))
		if err == nil && n > last {
			last = n
		}
	}

	var counter int
	err := tx.GetContext(ctx, &counter, tx.Rebind(`SELECT value FROM counters WHERE name = ?`), ticketCounter)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", model.StorageErr("read ticket counter", err)
	}
	if counter > last {
		last = counter
	}

	next := last + 1
	upsert := tx.Rebind(`INSERT INTO counters (name, value) VALUES (?, ?)
			  ON CONFLICT (name) DO UPDATE SET value = excluded.value`)
	if _, err := tx.ExecContext(ctx, upsert, ticketCounter, next); err != nil {
		return "", model.StorageErr("advance ticket counter", err)
	}
	return fmt.Sprintf("TKT-%04d", next), nil
}

// Get returns a ticket by id.
func (d *Desk) Get(ctx context.Context, id string) (*model.Ticket, error) {
	return getTicket(ctx, d.db, id)
}

func getTicket(ctx context.Context, q sqlx.ExtContext, id string) (*model.Ticket, error) {
	var t model.Ticket
	err := sqlx.GetContext(ctx, q, &t, q.Rebind(`SELECT `+ticketColumns+` FROM tickets WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ticket %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, model.StorageErr("get ticket "+id, err)
	}
	return &t, nil
}

// Close closes an open ticket.
func (d *Desk) Close(ctx context.Context, id, closedBy, reason string) (*model.Ticket, error) {
	var t *model.Ticket
	err := database.WithTx(ctx, d.db, func(tx *sqlx.Tx) error {
		var err error
		if t, err = getTicket(ctx, tx, id); err != nil {
			return err
		}
		if !t.Open() {
			return fmt.Errorf("ticket %s: %w", id, model.ErrTicketClosed)
		}
		closeTicket(t, d.opts.Now().Unix(), closedBy, reason)
		return updateClosed(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}

	d.opts.Metrics.AddTicketsClosed(closerKind(t), 1)
	return t, nil
}

func closeTicket(t *model.Ticket, at int64, by, reason string) {
	if strings.TrimSpace(reason) == "" {
		reason = "Resolved"
	}
	t.Status = model.TicketClosed
	t.ClosedAt = &at
	t.ClosedBy = &by
	t.CloseReason = &reason
}

func closerKind(t *model.Ticket) string {
	if t.ClosedBy != nil && *t.ClosedBy == t.MemberID {
		return "member"
	}
	return "staff"
}

func updateClosed(ctx context.Context, tx *sqlx.Tx, t *model.Ticket) error {
	query := `UPDATE tickets SET status = :status, closed_at = :closed_at, closed_by = :closed_by, close_reason = :close_reason WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, t); err != nil {
		return model.StorageErr("close ticket "+t.ID, err)
	}
	return nil
}

// Touch records activity on an open ticket.
func (d *Desk) Touch(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, d.db.Rebind(`UPDATE tickets SET last_activity = ? WHERE id = ? AND status = ?`), d.opts.Now().Unix(), id, model.TicketOpen)
	if err != nil {
		return model.StorageErr("touch ticket "+id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	t, err := d.Get(ctx, id)
	if err != nil {
		return err
	}
	if !t.Open() {
		return fmt.Errorf("ticket %s: %w", id, model.ErrTicketClosed)
	}
	return nil
}

// ListOpen returns open tickets, highest priority first, then oldest first.
func (d *Desk) ListOpen(ctx context.Context) ([]model.Ticket, error) {
	var ts []model.Ticket
	query := d.db.Rebind(`SELECT ` + ticketColumns + ` FROM tickets WHERE status = ? ORDER BY priority DESC, created_at, id`)
	if err := d.db.SelectContext(ctx, &ts, query, model.TicketOpen); err != nil {
		return nil, model.StorageErr("list open tickets", err)
	}
	return ts, nil
}

// ListForMember returns the member's tickets, newest first.
func (d *Desk) ListForMember(ctx context.Context, memberID string, openOnly bool) ([]model.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE member_id = ?`
	args := []interface{}{memberID}
	if openOnly {
		query += ` AND status = ?`
		args = append(args, model.TicketOpen)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var ts []model.Ticket
	if err := d.db.SelectContext(ctx, &ts, d.db.Rebind(query), args...); err != nil {
		return nil, model.StorageErr("list tickets for member "+memberID, err)
	}
	return ts, nil
}

// CloseInactive closes every open ticket with no activity since cutoff and
// returns the tickets it closed.
func (d *Desk) CloseInactive(ctx context.Context, cutoff time.Time, closedBy string) ([]model.Ticket, error) {
	var closed []model.Ticket
	err := database.WithTx(ctx, d.db, func(tx *sqlx.Tx) error {
		var stale []model.Ticket
		query := tx.Rebind(`SELECT ` + ticketColumns + ` FROM tickets WHERE status = ? AND last_activity < ? ORDER BY id`)
		if err := tx.SelectContext(ctx, &stale, query, model.TicketOpen, cutoff.Unix()); err != nil {
			return model.StorageErr("list inactive tickets", err)
		}

		now := d.opts.Now().Unix()
		for i := range stale {
			closeTicket(&stale[i], now, closedBy, AutoCloseReason)
			if err := updateClosed(ctx, tx, &stale[i]); err != nil {
				return err
			}
		}
		closed = stale
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.opts.Metrics.AddTicketsClosed("auto", len(closed))
	return closed, nil
}

// PurgeClosed deletes tickets closed before the given time.
func (d *Desk) PurgeClosed(ctx context.Context, before time.Time) (int64, error) {
	result, err := d.db.ExecContext(ctx, d.db.Rebind(`DELETE FROM tickets WHERE status = ? AND closed_at < ?`), model.TicketClosed, before.Unix())
	if err != nil {
		return 0, model.StorageErr("purge closed tickets", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected for ticket purge: %w", err)
	}
	return n, nil
}
