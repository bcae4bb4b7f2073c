package model

import "time"

const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)

// Ticket is a member support request routed to a staff channel.
type Ticket struct {
	ID           string  `db:"id"`
	MemberID     string  `db:"member_id"`
	ChannelID    string  `db:"channel_id"`
	Category     string  `db:"category"`
	Urgency      string  `db:"urgency"`
	Priority     int     `db:"priority"`
	Description  string  `db:"description"`
	Status       string  `db:"status"`
	CreatedAt    int64   `db:"created_at"`
	LastActivity int64   `db:"last_activity"`
	ClosedAt     *int64  `db:"closed_at"`
	ClosedBy     *string `db:"closed_by"`
	CloseReason  *string `db:"close_reason"`
}

// Open reports whether the ticket is still open.
func (t *Ticket) Open() bool {
	return t.Status == TicketOpen
}

// Age returns how long the ticket has existed at now.
func (t *Ticket) Age(now time.Time) time.Duration {
	return now.Sub(time.Unix(t.CreatedAt, 0))
}

// ActionLog is an audit entry for a staff action.
type ActionLog struct {
	ID         string `db:"id"`
	ActionType string `db:"action_type"`
	StaffID    string `db:"staff_id"`
	TargetID   string `db:"target_id"`
	Details    string `db:"details"`
	Timestamp  int64  `db:"timestamp"`
}
