// Package punish maps a rule and an offense ordinal to the tier that applies.
package punish

import (
	"community-bot/model"
	"community-bot/rulestore"
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ResolveTier returns the tier for the ordinal-th offense against rule.
// Ordinals past the end of the schedule reuse the last tier.
func ResolveTier(rule *model.Rule, ordinal int) (model.Tier, error) {
	if ordinal < 1 {
		return model.Tier{}, model.Invalid("ordinal", "must be at least 1, got %d", ordinal)
	}
	if !rule.Active {
		return model.Tier{}, fmt.Errorf("rule %s: %w", rule.ID, model.ErrRuleInactive)
	}
	if len(rule.Tiers) == 0 {
		return model.Tier{}, model.Invalid("tiers", "rule %s has no punishment tiers", rule.ID)
	}
	if ordinal > len(rule.Tiers) {
		return rule.LastTier(), nil
	}
	return rule.Tiers[ordinal-1], nil
}

// Resolver resolves tiers for rules looked up in the rule store.
type Resolver struct {
	rules *rulestore.Store
}

// NewResolver creates a resolver over rules.
func NewResolver(rules *rulestore.Store) *Resolver {
	return &Resolver{rules: rules}
}

// Resolve loads the rule and returns the tier for ordinal.
func (r *Resolver) Resolve(ctx context.Context, ruleID string, ordinal int) (model.Tier, error) {
	return r.ResolveWith(ctx, r.rules.DB(), ruleID, ordinal)
}

// ResolveWith is Resolve reading through q, so a caller holding a transaction
// resolves against the same snapshot it writes to.
func (r *Resolver) ResolveWith(ctx context.Context, q sqlx.ExtContext, ruleID string, ordinal int) (model.Tier, error) {
	rule, err := rulestore.LoadRule(ctx, q, ruleID)
	if err != nil {
		return model.Tier{}, err
	}
	return ResolveTier(rule, ordinal)
}
