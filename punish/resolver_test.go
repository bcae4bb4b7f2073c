package punish

import (
	"community-bot/model"
	"community-bot/rulestore"
	"community-bot/utils/testutil"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hour() *int64 {
	n := int64(3600)
	return &n
}

func noiseComplaint() *model.Rule {
	return &model.Rule{
		ID:     "noise-complaint",
		Active: true,
		Tiers: []model.Tier{
			{Severity: 1, Action: model.ActionWarning},
			{Severity: 2, Action: model.ActionTimeout, DurationSeconds: hour()},
			{Severity: 3, Action: model.ActionBan},
		},
	}
}

func TestResolveTierEscalates(t *testing.T) {
	rule := noiseComplaint()
	var got []model.ActionKind
	for ordinal := 1; ordinal <= 4; ordinal++ {
		tier, err := ResolveTier(rule, ordinal)
		require.NoError(t, err)
		got = append(got, tier.Action)
	}
	assert.Equal(t, []model.ActionKind{model.ActionWarning, model.ActionTimeout, model.ActionBan, model.ActionBan}, got)

	second, err := ResolveTier(rule, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), *second.DurationSeconds)
}

func TestResolveTierCapsAtLastTier(t *testing.T) {
	rule := noiseComplaint()
	last, err := ResolveTier(rule, len(rule.Tiers))
	require.NoError(t, err)
	for _, ordinal := range []int{4, 10, 1000} {
		tier, err := ResolveTier(rule, ordinal)
		require.NoError(t, err)
		assert.Equal(t, last, tier, "ordinal %d", ordinal)
	}
}

func TestResolveTierErrors(t *testing.T) {
	rule := noiseComplaint()

	_, err := ResolveTier(rule, 0)
	assert.ErrorIs(t, err, model.ErrValidation)

	rule.Active = false
	_, err = ResolveTier(rule, 1)
	assert.ErrorIs(t, err, model.ErrRuleInactive)
}

func TestResolverLoadsFromStore(t *testing.T) {
	ctx := context.Background()
	store := rulestore.New(testutil.OpenDB(t))
	require.NoError(t, store.SeedDefaults(ctx))
	resolver := NewResolver(store)

	tier, err := resolver.Resolve(ctx, "GR001", 9)
	require.NoError(t, err)
	assert.Equal(t, model.ActionBan, tier.Action)
	assert.Equal(t, 4, tier.Severity)

	_, err = resolver.Resolve(ctx, "XX001", 1)
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, store.DeactivateRule(ctx, "GR001", "admin"))
	_, err = resolver.Resolve(ctx, "GR001", 1)
	assert.ErrorIs(t, err, model.ErrRuleInactive)
}
