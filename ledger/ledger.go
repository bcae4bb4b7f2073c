// Package ledger records violations against members and keeps their offense
// counts. Every record keeps a snapshot of the tier it was issued under.
package ledger

import (
	"community-bot/metrics"
	"community-bot/model"
	"community-bot/punish"
	"community-bot/rulestore"
	"community-bot/utils"
	"community-bot/utils/database"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DefaultWarningExpiry is how long a warning without its own duration counts.
const DefaultWarningExpiry = 30 * 24 * time.Hour

const violationColumns = `id, member_id, rule_id, ordinal, staff_id, severity, action, duration_seconds, fine, appeal_eligible, staff_discretion, notes, issued_at, expires_at, expired, expired_at`

// Options tune ledger policy.
type Options struct {
	// ExpiredCountsTowardEscalation keeps expired records in the ordinal count.
	ExpiredCountsTowardEscalation bool
	// WarningExpiry applies to warning tiers that carry no duration. Zero means DefaultWarningExpiry.
	WarningExpiry time.Duration
	Now           func() time.Time
	Metrics       *metrics.Metrics
}

// Violation is a request to punish a member under a rule.
type Violation struct {
	MemberID string
	RuleID   string
	StaffID  string
	Notes    string
	// Allow, when set, vets the resolved tier before anything is written. Its
	// error aborts the record.
	Allow func(model.Tier) error
}

// ExpiryFailure is a record the sweep could not update.
type ExpiryFailure struct {
	RecordID string
	Err      error
}

// ExpiryReport is the outcome of one ExpireDueRecords pass.
type ExpiryReport struct {
	Expired  int
	Failures []ExpiryFailure
}

// Ledger owns violation records.
type Ledger struct {
	db       *sqlx.DB
	resolver *punish.Resolver
	locks    utils.KeyedMutex
	opts     Options
}

// New creates a ledger writing to the same database as rules.
func New(rules *rulestore.Store, resolver *punish.Resolver, opts Options) *Ledger {
	if opts.WarningExpiry <= 0 {
		opts.WarningExpiry = DefaultWarningExpiry
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Ledger{db: rules.DB(), resolver: resolver, opts: opts}
}

func lockKey(memberID, ruleID string) string {
	return memberID + "\x00" + ruleID
}

// RecordViolation issues the next offense for (MemberID, RuleID). The count,
// the tier lookup and the insert run in one transaction under the pair's lock,
// so concurrent calls for the same pair get distinct consecutive ordinals.
func (l *Ledger) RecordViolation(ctx context.Context, v Violation) (*model.ViolationRecord, error) {
	v.MemberID = strings.TrimSpace(v.MemberID)
	v.RuleID = strings.TrimSpace(v.RuleID)
	v.StaffID = strings.TrimSpace(v.StaffID)
	switch {
	case v.MemberID == "":
		return nil, model.Invalid("member_id", "must not be empty")
	case v.RuleID == "":
		return nil, model.Invalid("rule_id", "must not be empty")
	case v.StaffID == "":
		return nil, model.Invalid("staff_id", "must not be empty")
	}

	unlock := l.locks.Lock(lockKey(v.MemberID, v.RuleID))
	defer unlock()

	now := l.opts.Now()
	var rec model.ViolationRecord
	err := database.WithTx(ctx, l.db, func(tx *sqlx.Tx) error {
		prior, err := countOffenses(ctx, tx, v.MemberID, v.RuleID, now, l.opts.ExpiredCountsTowardEscalation)
		if err != nil {
			return err
		}

		ordinal := prior + 1
		tier, err := l.resolver.ResolveWith(ctx, tx, v.RuleID, ordinal)
		if err != nil {
			return err
		}
		if v.Allow != nil {
			if err := v.Allow(tier); err != nil {
				return err
			}
		}

		rec = model.ViolationRecord{
			ID:              uuid.NewString(),
			MemberID:        v.MemberID,
			RuleID:          v.RuleID,
			Ordinal:         ordinal,
			StaffID:         v.StaffID,
			Severity:        tier.Severity,
			Action:          tier.Action,
			DurationSeconds: tier.DurationSeconds,
			Fine:            tier.Fine,
			AppealEligible:  tier.AppealEligible,
			StaffDiscretion: tier.StaffDiscretion,
			Notes:           strings.TrimSpace(v.Notes),
			IssuedAt:        now.Unix(),
			ExpiresAt:       expiryFor(tier, now, l.opts.WarningExpiry),
		}

		query := `INSERT INTO violations (` + violationColumns + `)
				  VALUES (:id, :member_id, :rule_id, :ordinal, :staff_id, :severity, :action, :duration_seconds, :fine, :appeal_eligible, :staff_discretion, :notes, :issued_at, :expires_at, :expired, :expired_at)`
		if _, err := tx.NamedExecContext(ctx, query, rec); err != nil {
			return model.StorageErr("insert violation", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.opts.Metrics.IncViolation(string(rec.Action))
	return &rec, nil
}

// expiryFor returns when a record issued now under tier stops counting, or nil
// when it never does.
func expiryFor(tier model.Tier, now time.Time, warningExpiry time.Duration) *int64 {
	var d time.Duration
	switch {
	case tier.Duration() > 0:
		d = tier.Duration()
	case tier.Action == model.ActionWarning:
		d = warningExpiry
	default:
		return nil
	}
	at := now.Add(d).Unix()
	return &at
}

func countOffenses(ctx context.Context, q sqlx.ExtContext, memberID, ruleID string, now time.Time, includeExpired bool) (int, error) {
	query := `SELECT COUNT(*) FROM violations WHERE member_id = ? AND rule_id = ?`
	args := []interface{}{memberID, ruleID}
	if !includeExpired {
		query += ` AND expired = FALSE AND (expires_at IS NULL OR expires_at > ?)`
		args = append(args, now.Unix())
	}

	var n int
	if err := sqlx.GetContext(ctx, q, &n, q.Rebind(query), args...); err != nil {
		return 0, model.StorageErr("count violations", err)
	}
	return n, nil
}

// ActiveOffenseCount returns how many of the member's records for ruleID have
// not expired.
func (l *Ledger) ActiveOffenseCount(ctx context.Context, memberID, ruleID string) (int, error) {
	return countOffenses(ctx, l.db, memberID, ruleID, l.opts.Now(), false)
}

type dueRecord struct {
	ID       string `db:"id"`
	MemberID string `db:"member_id"`
	RuleID   string `db:"rule_id"`
}

// NextTier previews the ordinal and tier the next RecordViolation for the pair
// would produce, using the same counting policy. It takes no lock, so a
// concurrent record can make the preview stale.
func (l *Ledger) NextTier(ctx context.Context, memberID, ruleID string) (int, model.Tier, error) {
	prior, err := countOffenses(ctx, l.db, memberID, ruleID, l.opts.Now(), l.opts.ExpiredCountsTowardEscalation)
	if err != nil {
		return 0, model.Tier{}, err
	}
	tier, err := l.resolver.Resolve(ctx, ruleID, prior+1)
	if err != nil {
		return 0, model.Tier{}, err
	}
	return prior + 1, tier, nil
}

// ExpireDueRecords marks every record whose expiry is at or before now as
// expired. Records already marked are skipped, so repeated calls with the same
// now expire nothing new. A failing record is reported and the sweep goes on.
func (l *Ledger) ExpireDueRecords(ctx context.Context, now time.Time) (*ExpiryReport, error) {
	var due []dueRecord
	query := l.db.Rebind(`SELECT id, member_id, rule_id FROM violations WHERE expired = FALSE AND expires_at IS NOT NULL AND expires_at <= ? ORDER BY expires_at, id`)
	if err := l.db.SelectContext(ctx, &due, query, now.Unix()); err != nil {
		return nil, model.StorageErr("list due violations", err)
	}

	report := &ExpiryReport{}
	update := l.db.Rebind(`UPDATE violations SET expired = TRUE, expired_at = ? WHERE id = ? AND expired = FALSE`)
	for _, d := range due {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		unlock := l.locks.Lock(lockKey(d.MemberID, d.RuleID))
		result, err := l.db.ExecContext(ctx, update, now.Unix(), d.ID)
		unlock()
		if err != nil {
			log.Printf("Failed to expire violation %s: %v", d.ID, err)
			report.Failures = append(report.Failures, ExpiryFailure{RecordID: d.ID, Err: model.StorageErr("expire violation "+d.ID, err)})
			continue
		}
		if n, err := result.RowsAffected(); err == nil && n > 0 {
			report.Expired++
		}
	}

	l.opts.Metrics.AddExpired(report.Expired, len(report.Failures))
	return report, nil
}

// Get returns one record by id.
func (l *Ledger) Get(ctx context.Context, id string) (*model.ViolationRecord, error) {
	var rec model.ViolationRecord
	err := l.db.GetContext(ctx, &rec, l.db.Rebind(`SELECT `+violationColumns+` FROM violations WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("violation %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, model.StorageErr("get violation "+id, err)
	}
	return &rec, nil
}

// ListForMember returns every record for a member, newest first.
func (l *Ledger) ListForMember(ctx context.Context, memberID string) ([]model.ViolationRecord, error) {
	return l.list(ctx, "member_id", memberID)
}

// ListForRule returns every record issued under a rule, newest first.
func (l *Ledger) ListForRule(ctx context.Context, ruleID string) ([]model.ViolationRecord, error) {
	return l.list(ctx, "rule_id", ruleID)
}

func (l *Ledger) list(ctx context.Context, column, value string) ([]model.ViolationRecord, error) {
	var recs []model.ViolationRecord
	query := l.db.Rebind(`SELECT ` + violationColumns + ` FROM violations WHERE ` + column + ` = ? ORDER BY issued_at DESC, ordinal DESC`)
	if err := l.db.SelectContext(ctx, &recs, query, value); err != nil {
		return nil, model.StorageErr("list violations by "+column, err)
	}
	return recs, nil
}

// Stats summarizes records issued since the given time.
func (l *Ledger) Stats(ctx context.Context, since time.Time) (*model.ViolationStats, error) {
	now := l.opts.Now().Unix()
	stats := &model.ViolationStats{ByStaff: make(map[string]int)}

	query := l.db.Rebind(`SELECT COUNT(*) FROM violations WHERE issued_at >= ?`)
	if err := l.db.GetContext(ctx, &stats.Total, query, since.Unix()); err != nil {
		return nil, model.StorageErr("count violations", err)
	}

	query = l.db.Rebind(`SELECT COUNT(*) FROM violations WHERE issued_at >= ? AND expired = FALSE AND (expires_at IS NULL OR expires_at > ?)`)
	if err := l.db.GetContext(ctx, &stats.Active, query, since.Unix(), now); err != nil {
		return nil, model.StorageErr("count active violations", err)
	}

	var rows []struct {
		StaffID string `db:"staff_id"`
		Count   int    `db:"n"`
	}
	query = l.db.Rebind(`SELECT staff_id, COUNT(*) AS n FROM violations WHERE issued_at >= ? GROUP BY staff_id`)
	if err := l.db.SelectContext(ctx, &rows, query, since.Unix()); err != nil {
		return nil, model.StorageErr("count violations by staff", err)
	}
	for _, r := range rows {
		stats.ByStaff[r.StaffID] = r.Count
	}
	return stats, nil
}
