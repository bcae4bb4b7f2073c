package handlers

import (
	"community-bot/bot"
	"community-bot/handlers/rules"
	"community-bot/model"
	"community-bot/utils"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentKey(t *testing.T) {
	assert.Equal(t, rules.SearchPagePrefix, componentKey(rules.SearchPagePrefix+":2:|noise"))
	assert.Equal(t, "ticket_close", componentKey("ticket_close:TKT-0001"))
	assert.Equal(t, "plain", componentKey("plain"))
}

func TestRuleChoicesOrdersIDMatchesFirst(t *testing.T) {
	list := []model.Rule{
		{ID: "GR001", Title: "Respect All Players"},
		{ID: "VH001", Title: "Traffic Laws"},
		{ID: "VH002", Title: "Vehicle Respect"},
	}

	choices := ruleChoices(list, "vh")
	require.Len(t, choices, 2)
	assert.Equal(t, "VH001", choices[0].Value)

	choices = ruleChoices(list, "respect")
	require.Len(t, choices, 2)
	assert.Equal(t, "GR001 · Respect All Players", choices[0].Name)

	assert.Len(t, ruleChoices(list, ""), 3)
	assert.Empty(t, ruleChoices(list, "zzz"))
}

func TestRuleChoicesCapped(t *testing.T) {
	var list []model.Rule
	for n := 0; n < 40; n++ {
		list = append(list, model.Rule{ID: fmt.Sprintf("GR%03d", n), Title: strings.Repeat("x", 120)})
	}
	choices := ruleChoices(list, "gr")
	require.Len(t, choices, maxAutocompleteChoices)
	assert.Len(t, []rune(choices[0].Name), 100)
}

func TestStatusEmbed(t *testing.T) {
	st := &bot.Status{
		Uptime:        "2 hours",
		Rules:         12,
		IndexedRules:  11,
		OpenTickets:   3,
		DatabaseBytes: 2 * 1024 * 1024,
		DBDriver:      "sqlite3",
		System:        utils.SystemInfo{GoVersion: "go1.23.0", CPUCount: 4},
	}
	embed := statusEmbed(st, 42*time.Millisecond)
	require.Len(t, embed.Fields, 12)
	assert.Equal(t, "-", embed.Fields[1].Value)
	assert.Equal(t, "sqlite3, 2.00 MB", embed.Fields[6].Value)
	assert.Equal(t, "42ms", embed.Fields[7].Value)
	assert.Equal(t, "12 stored, 11 searchable", embed.Fields[9].Value)
}
