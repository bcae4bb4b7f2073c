package rules

import (
	"community-bot/model"
	"community-bot/rulestore"
	"community-bot/search"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleEmbed(t *testing.T) {
	rule := rulestore.SampleRules[0]
	rule.Active = true
	rule.UpdatedBy = "system"
	cat := rulestore.DefaultCategories[0]

	embed := RuleEmbed(&rule, &cat)
	assert.Equal(t, "📋 GR001 · Respect All Players", embed.Title)
	assert.Equal(t, cat.Color, embed.Color)
	require.Len(t, embed.Fields, 5)
	assert.Equal(t, "General Rules › Behavior", embed.Fields[0].Value)

	schedule := strings.Split(embed.Fields[2].Value, "\n")
	assert.Equal(t, "**1.** Warning · $5,000 fine", schedule[0])
	assert.True(t, strings.HasSuffix(embed.Fields[2].Value, "*(repeats)*"))

	rule.Active = false
	assert.Contains(t, RuleEmbed(&rule, nil).Title, "(inactive)")
}

func TestSearchEmbedPages(t *testing.T) {
	var results []search.Result
	for n := 1; n <= 7; n++ {
		results = append(results, search.Result{Rule: model.Rule{ID: fmt.Sprintf("GR%03d", n), Title: "t", Category: "c", Subcategory: "s"}, Score: 1})
	}

	first := SearchEmbed("noise", results, 1, 5)
	assert.Len(t, first.Fields, 5)
	assert.Contains(t, first.Footer.Text, "page 1 of 2")

	last := SearchEmbed("noise", results, 2, 5)
	require.Len(t, last.Fields, 2)
	assert.True(t, strings.HasPrefix(last.Fields[0].Name, "GR006"))

	empty := SearchEmbed("nothing", nil, 1, 5)
	assert.Empty(t, empty.Fields)
	assert.NotEmpty(t, empty.Description)
}

func TestStatsEmbed(t *testing.T) {
	embed := StatsEmbed([]model.CategoryStats{
		{Category: "General Rules", TotalRules: 2, ActiveRules: 1, Subcategories: map[string]int{"Behavior": 1, "General Conduct": 1}},
		{Category: "Vehicle Rules", TotalRules: 1, ActiveRules: 1, Subcategories: map[string]int{"Driving Rules": 1}},
	})
	assert.Equal(t, "3 rules in 2 categories, 2 active.", embed.Description)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "2 rules (1 active)\nBehavior: 1\nGeneral Conduct: 1", embed.Fields[0].Value)
}
