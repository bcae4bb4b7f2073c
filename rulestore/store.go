// Package rulestore persists rules, their punishment schedules and the category taxonomy.
package rulestore

import (
	"community-bot/model"
	"community-bot/utils/database"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const ruleColumns = `id, category, subcategory, title, body, keywords, active, priority, appeal_process, created_by, updated_by, created_at, updated_at`

const tierColumns = `severity, action, duration_seconds, fine, appeal_eligible, staff_discretion, details`

// ruleRow is the flat shape of a rules table row.
type ruleRow struct {
	model.Rule
	KeywordsJSON  string `db:"keywords"`
	CreatedAtUnix int64  `db:"created_at"`
	UpdatedAtUnix int64  `db:"updated_at"`
}

func (row ruleRow) toRule() (*model.Rule, error) {
	r := row.Rule
	if err := json.Unmarshal([]byte(row.KeywordsJSON), &r.Keywords); err != nil {
		return nil, fmt.Errorf("failed to parse keywords for rule %s: %w", r.ID, err)
	}
	r.CreatedAt = time.Unix(row.CreatedAtUnix, 0).UTC()
	r.UpdatedAt = time.Unix(row.UpdatedAtUnix, 0).UTC()
	return &r, nil
}

type tierRow struct {
	RuleID string `db:"rule_id"`
	model.Tier
}

// Filter narrows ListRules. Zero values match everything; inactive rules are
// skipped unless IncludeInactive is set.
type Filter struct {
	Category        string
	Subcategory     string
	IncludeInactive bool
}

// Store is the rule store backed by a SQL database.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// New creates a store on an initialized database.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithClock replaces the time source used for rule timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// DB exposes the underlying handle so other components can share transactions.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// GetRule returns the rule with the given id, or model.ErrNotFound.
func (s *Store) GetRule(ctx context.Context, id string) (*model.Rule, error) {
	return LoadRule(ctx, s.db, id)
}

// LoadRule reads a rule and its tiers through q, which may be a transaction.
func LoadRule(ctx context.Context, q sqlx.ExtContext, id string) (*model.Rule, error) {
	var row ruleRow
	query := q.Rebind(`SELECT ` + ruleColumns + ` FROM rules WHERE id = ?`)
	if err := sqlx.GetContext(ctx, q, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rule %s: %w", id, model.ErrNotFound)
		}
		return nil, model.StorageErr("get rule "+id, err)
	}

	rule, err := row.toRule()
	if err != nil {
		return nil, model.StorageErr("decode rule "+id, err)
	}

	query = q.Rebind(`SELECT ` + tierColumns + ` FROM punishment_tiers WHERE rule_id = ? ORDER BY severity`)
	if err := sqlx.SelectContext(ctx, q, &rule.Tiers, query, id); err != nil {
		return nil, model.StorageErr("get tiers for rule "+id, err)
	}
	return rule, nil
}

// ListRules returns the rules matching f ordered by category then id.
func (s *Store) ListRules(ctx context.Context, f Filter) ([]model.Rule, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.Subcategory != "" {
		conds = append(conds, "subcategory = ?")
		args = append(args, f.Subcategory)
	}
	if !f.IncludeInactive {
		conds = append(conds, "active = TRUE")
	}

	query := `SELECT ` + ruleColumns + ` FROM rules`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY category, id"

	var rows []ruleRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, model.StorageErr("list rules", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	tiers, err := s.loadTiers(ctx, ids)
	if err != nil {
		return nil, err
	}

	rules := make([]model.Rule, 0, len(rows))
	for _, row := range rows {
		r, err := row.toRule()
		if err != nil {
			return nil, model.StorageErr("decode rule "+row.ID, err)
		}
		r.Tiers = tiers[r.ID]
		rules = append(rules, *r)
	}
	return rules, nil
}

func (s *Store) loadTiers(ctx context.Context, ruleIDs []string) (map[string][]model.Tier, error) {
	query, args, err := sqlx.In(`SELECT rule_id, `+tierColumns+` FROM punishment_tiers WHERE rule_id IN (?) ORDER BY rule_id, severity`, ruleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build tier query: %w", err)
	}

	var rows []tierRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, model.StorageErr("list tiers", err)
	}

	out := make(map[string][]model.Tier, len(ruleIDs))
	for _, row := range rows {
		out[row.RuleID] = append(out[row.RuleID], row.Tier)
	}
	return out, nil
}

// UpsertRule validates r and writes it with its full schedule in one transaction.
// A rule without an id gets the next id for its category prefix. Existing
// inactive rules cannot be edited.
func (s *Store) UpsertRule(ctx context.Context, r model.Rule, actorID string) (*model.Rule, error) {
	r, err := normalizeRule(r)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		cat, err := loadCategory(ctx, tx, r.Category)
		if errors.Is(err, model.ErrNotFound) {
			return model.Invalid("category", "unknown category %q", r.Category)
		}
		if err != nil {
			return err
		}
		if !cat.HasSubcategory(r.Subcategory) {
			return model.Invalid("subcategory", "%q is not a subcategory of %q", r.Subcategory, r.Category)
		}

		if r.ID == "" {
			if r.ID, err = nextRuleID(ctx, tx, cat.Prefix); err != nil {
				return err
			}
		}

		existing, err := LoadRule(ctx, tx, r.ID)
		switch {
		case errors.Is(err, model.ErrNotFound):
			r.CreatedAt = now
			r.CreatedBy = actorID
		case err != nil:
			return err
		case !existing.Active:
			return fmt.Errorf("rule %s: %w", r.ID, model.ErrRuleInactive)
		default:
			r.CreatedAt = existing.CreatedAt
			r.CreatedBy = existing.CreatedBy
		}
		r.Active = true
		r.UpdatedAt = now
		r.UpdatedBy = actorID

		return writeRule(ctx, tx, r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func writeRule(ctx context.Context, tx *sqlx.Tx, r model.Rule) error {
	keywords, err := json.Marshal(r.Keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords for rule %s: %w", r.ID, err)
	}

	row := ruleRow{Rule: r, KeywordsJSON: string(keywords), CreatedAtUnix: r.CreatedAt.Unix(), UpdatedAtUnix: r.UpdatedAt.Unix()}
	query := `INSERT INTO rules (` + ruleColumns + `)
			  VALUES (:id, :category, :subcategory, :title, :body, :keywords, :active, :priority, :appeal_process, :created_by, :updated_by, :created_at, :updated_at)
			  ON CONFLICT (id) DO UPDATE SET
			      category = excluded.category,
			      subcategory = excluded.subcategory,
			      title = excluded.title,
			      body = excluded.body,
			      keywords = excluded.keywords,
			      priority = excluded.priority,
			      appeal_process = excluded.appeal_process,
			      updated_by = excluded.updated_by,
			      updated_at = excluded.updated_at`
	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		return model.StorageErr("write rule "+r.ID, err)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM punishment_tiers WHERE rule_id = ?`), r.ID); err != nil {
		return model.StorageErr("clear tiers for rule "+r.ID, err)
	}
	for _, t := range r.Tiers {
		query := `INSERT INTO punishment_tiers (rule_id, ` + tierColumns + `)
				  VALUES (:rule_id, :severity, :action, :duration_seconds, :fine, :appeal_eligible, :staff_discretion, :details)`
		if _, err := tx.NamedExecContext(ctx, query, tierRow{RuleID: r.ID, Tier: t}); err != nil {
			return model.StorageErr(fmt.Sprintf("write tier %d for rule %s", t.Severity, r.ID), err)
		}
	}
	return nil
}

// nextRuleID returns prefix followed by one more than the highest number in use.
func nextRuleID(ctx context.Context, tx *sqlx.Tx, prefix string) (string, error) {
	var ids []string
	if err := tx.SelectContext(ctx, &ids, tx.Rebind(`SELECT id FROM rules WHERE id LIKE ?`), prefix+"%"); err != nil {
		return "", model.StorageErr("list rule ids", err)
	}

	maxNum := 0
	for _, id := range ids {
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err != nil {
			continue
		}
		if n > maxNum {
			maxNum = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, maxNum+1), nil
}

// DeactivateRule marks a rule inactive. It cannot be reactivated afterwards.
// Deactivating an inactive rule is a no-op.
func (s *Store) DeactivateRule(ctx context.Context, id, actorID string) error {
	query := s.db.Rebind(`UPDATE rules SET active = FALSE, updated_by = ?, updated_at = ? WHERE id = ? AND active = TRUE`)
	result, err := s.db.ExecContext(ctx, query, actorID, s.now().Unix(), id)
	if err != nil {
		return model.StorageErr("deactivate rule "+id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return model.StorageErr("deactivate rule "+id, err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	if err := s.db.GetContext(ctx, &exists, s.db.Rebind(`SELECT COUNT(*) FROM rules WHERE id = ?`), id); err != nil {
		return model.StorageErr("check rule "+id, err)
	}
	if exists == 0 {
		return fmt.Errorf("rule %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// CountRules returns the number of stored rules, active or not.
func (s *Store) CountRules(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM rules`); err != nil {
		return 0, model.StorageErr("count rules", err)
	}
	return n, nil
}
