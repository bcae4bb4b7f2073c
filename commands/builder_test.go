package commands

import (
	"community-bot/commands/defs"
	"community-bot/rulestore"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCommands(t *testing.T) {
	cmds := GenerateCommands(rulestore.DefaultCategories)

	names := make(map[string]bool)
	for _, c := range cmds {
		assert.False(t, names[c.Name], "duplicate command %s", c.Name)
		names[c.Name] = true
	}
	for _, want := range []string{"rule-search", "rule-view", "punish", "violations", "ticket", "backup", "system-info"} {
		assert.True(t, names[want], want)
	}

	search := cmds[0]
	require.Equal(t, "rule-search", search.Name)
	categories := search.Options[1].Choices
	require.Len(t, categories, len(rulestore.DefaultCategories))
	assert.Equal(t, "General Rules", categories[0].Value)
	assert.Nil(t, defs.RuleSearch.Options[1].Choices)
}

func TestGenerateCommandsTicketChoices(t *testing.T) {
	ticket := GenerateCommands(nil)[6]
	require.Equal(t, "ticket", ticket.Name)
	open := ticket.Options[0]
	require.Equal(t, "open", open.Name)
	assert.Len(t, open.Options[0].Choices, 6)
	assert.Equal(t, "Support", open.Options[0].Choices[0].Value)
	assert.Nil(t, defs.Ticket.Options[0].Options[0].Choices)
}
