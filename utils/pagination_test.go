package utils

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageBounds(t *testing.T) {
	assert.Equal(t, 3, PageCount(11, 5))
	assert.Equal(t, 1, PageCount(0, 5))

	start, end := PageBounds(3, 5, 11)
	assert.Equal(t, 10, start)
	assert.Equal(t, 11, end)

	start, end = PageBounds(9, 5, 11)
	assert.Equal(t, 11, start)
	assert.Equal(t, 11, end)
}

func TestPaginationRoundTrip(t *testing.T) {
	assert.Nil(t, CreatePaginationComponents(1, 1, "rule_search", "gang"))

	rows := CreatePaginationComponents(1, 3, "rule_search", "gang: war")
	require.Len(t, rows, 1)
	buttons := rows[0].(discordgo.ActionsRow).Components
	prev := buttons[0].(discordgo.Button)
	next := buttons[1].(discordgo.Button)
	assert.True(t, prev.Disabled)
	assert.False(t, next.Disabled)

	page, arg, ok := ParsePaginationID(next.CustomID, "rule_search")
	require.True(t, ok)
	assert.Equal(t, 2, page)
	assert.Equal(t, "gang: war", arg)

	_, _, ok = ParsePaginationID(next.CustomID, "violations")
	assert.False(t, ok)
}

func TestPaginationTruncatesLongArgs(t *testing.T) {
	rows := CreatePaginationComponents(2, 3, "rule_search", strings.Repeat("x", 200))
	for _, c := range rows[0].(discordgo.ActionsRow).Components {
		assert.LessOrEqual(t, len(c.(discordgo.Button).CustomID), 100)
	}
}
