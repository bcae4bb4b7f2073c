package rulestore

import (
	"community-bot/model"
	"community-bot/utils/database"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type subcategoryRow struct {
	Category string `db:"category"`
	Position int    `db:"position"`
	Name     string `db:"name"`
}

// ListCategories returns every category with its subcategories, ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := s.db.SelectContext(ctx, &cats, `SELECT name, prefix, description, color, emoji FROM categories ORDER BY name`); err != nil {
		return nil, model.StorageErr("list categories", err)
	}

	var subs []subcategoryRow
	if err := s.db.SelectContext(ctx, &subs, `SELECT category, position, name FROM category_subcategories ORDER BY category, position`); err != nil {
		return nil, model.StorageErr("list subcategories", err)
	}
	byCategory := make(map[string][]string, len(cats))
	for _, sub := range subs {
		byCategory[sub.Category] = append(byCategory[sub.Category], sub.Name)
	}
	for i := range cats {
		cats[i].Subcategories = byCategory[cats[i].Name]
	}
	return cats, nil
}

// GetCategory returns one category, or model.ErrNotFound.
func (s *Store) GetCategory(ctx context.Context, name string) (*model.Category, error) {
	return loadCategory(ctx, s.db, name)
}

func loadCategory(ctx context.Context, q sqlx.ExtContext, name string) (*model.Category, error) {
	var cat model.Category
	query := q.Rebind(`SELECT name, prefix, description, color, emoji FROM categories WHERE name = ?`)
	if err := sqlx.GetContext(ctx, q, &cat, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %q: %w", name, model.ErrNotFound)
		}
		return nil, model.StorageErr("get category "+name, err)
	}

	query = q.Rebind(`SELECT name FROM category_subcategories WHERE category = ? ORDER BY position`)
	if err := sqlx.SelectContext(ctx, q, &cat.Subcategories, query, name); err != nil {
		return nil, model.StorageErr("get subcategories for "+name, err)
	}
	return &cat, nil
}

// UpsertCategory creates or replaces a category and its subcategory list.
// Subcategories still referenced by a rule cannot be dropped.
func (s *Store) UpsertCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	c, err := normalizeCategory(c)
	if err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var owner string
		err := tx.GetContext(ctx, &owner, tx.Rebind(`SELECT name FROM categories WHERE prefix = ? AND name <> ?`), c.Prefix, c.Name)
		if err == nil {
			return model.Invalid("prefix", "%q is already used by category %q", c.Prefix, owner)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return model.StorageErr("check category prefix", err)
		}

		var used []string
		if err := tx.SelectContext(ctx, &used, tx.Rebind(`SELECT DISTINCT subcategory FROM rules WHERE category = ?`), c.Name); err != nil {
			return model.StorageErr("list used subcategories", err)
		}
		for _, sub := range used {
			if !c.HasSubcategory(sub) {
				return model.Invalid("subcategories", "%q is still used by rules", sub)
			}
		}

		query := `INSERT INTO categories (name, prefix, description, color, emoji)
				  VALUES (:name, :prefix, :description, :color, :emoji)
				  ON CONFLICT (name) DO UPDATE SET
				      prefix = excluded.prefix,
				      description = excluded.description,
				      color = excluded.color,
				      emoji = excluded.emoji`
		if _, err := tx.NamedExecContext(ctx, query, c); err != nil {
			return model.StorageErr("write category "+c.Name, err)
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM category_subcategories WHERE category = ?`), c.Name); err != nil {
			return model.StorageErr("clear subcategories for "+c.Name, err)
		}
		for i, sub := range c.Subcategories {
			row := subcategoryRow{Category: c.Name, Position: i, Name: sub}
			if _, err := tx.NamedExecContext(ctx, `INSERT INTO category_subcategories (category, position, name) VALUES (:category, :position, :name)`, row); err != nil {
				return model.StorageErr("write subcategory "+sub, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type statsRow struct {
	Category    string `db:"category"`
	Subcategory string `db:"subcategory"`
	Priority    string `db:"priority"`
	Active      bool   `db:"active"`
	Count       int    `db:"n"`
}

// CategoryStats counts rules per category, subcategory and priority.
// Categories without rules are included with zero counts.
func (s *Store) CategoryStats(ctx context.Context) ([]model.CategoryStats, error) {
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	var rows []statsRow
	query := `SELECT category, subcategory, priority, active, COUNT(*) AS n FROM rules GROUP BY category, subcategory, priority, active`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, model.StorageErr("rule stats", err)
	}

	stats := make([]model.CategoryStats, len(cats))
	index := make(map[string]*model.CategoryStats, len(cats))
	for i, c := range cats {
		stats[i] = model.CategoryStats{
			Category:      c.Name,
			Subcategories: make(map[string]int),
			Priorities:    make(map[string]int),
		}
		index[c.Name] = &stats[i]
	}
	for _, row := range rows {
		st, ok := index[row.Category]
		if !ok {
			continue
		}
		st.TotalRules += row.Count
		if row.Active {
			st.ActiveRules += row.Count
		}
		st.Subcategories[row.Subcategory] += row.Count
		st.Priorities[row.Priority] += row.Count
	}
	return stats, nil
}
