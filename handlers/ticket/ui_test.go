package ticket

import (
	"community-bot/model"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTicket() *model.Ticket {
	created := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC).Unix()
	return &model.Ticket{
		ID:           "TKT-0007",
		MemberID:     "42",
		ChannelID:    "900",
		Category:     "Bug Report",
		Urgency:      "High",
		Priority:     4,
		Description:  "Car falls through the map at the docks",
		Status:       model.TicketOpen,
		CreatedAt:    created,
		LastActivity: created,
	}
}

func TestTicketEmbed(t *testing.T) {
	embed := TicketEmbed(sampleTicket())
	assert.Equal(t, "🐛 TKT-0007 · Bug Report", embed.Title)
	assert.Equal(t, urgencyColor["High"], embed.Color)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "4", embed.Fields[2].Value)

	tk := sampleTicket()
	tk.Category = "Mystery"
	tk.Urgency = "Unknown"
	embed = TicketEmbed(tk)
	assert.Equal(t, "🎫 TKT-0007 · Mystery", embed.Title)
	assert.Equal(t, urgencyColor["Medium"], embed.Color)
}

func TestTicketButtonsRoundTrip(t *testing.T) {
	rows := TicketButtons("TKT-0007")
	require.Len(t, rows, 1)
	buttons := rows[0].(discordgo.ActionsRow).Components
	require.Len(t, buttons, 2)

	id, ok := ParseButtonID(buttons[0].(discordgo.Button).CustomID, ClaimPrefix)
	assert.True(t, ok)
	assert.Equal(t, "TKT-0007", id)

	_, ok = ParseButtonID(buttons[1].(discordgo.Button).CustomID, ClaimPrefix)
	assert.False(t, ok)
	_, ok = ParseButtonID(ClosePrefix+":", ClosePrefix)
	assert.False(t, ok)
}

func TestOpenedMessage(t *testing.T) {
	assert.Equal(t, "🎫 Ticket `TKT-0007` opened under **Bug Report**. Expected response time: 20-30 minutes.", OpenedMessage(sampleTicket()))
}

func TestListEmbed(t *testing.T) {
	now := time.Date(2026, 5, 3, 12, 0, 0, 0, time.UTC)
	embed := ListEmbed("Open", []model.Ticket{*sampleTicket()}, now)
	assert.Equal(t, "`TKT-0007` 🐛 Bug Report · <@42> · P4 · opened 1d ago", embed.Description)

	assert.Equal(t, "No open tickets.", ListEmbed("Open", nil, now).Description)
}

func TestAgeText(t *testing.T) {
	assert.Equal(t, "5m", ageText(5*time.Minute))
	assert.Equal(t, "3h", ageText(3*time.Hour+20*time.Minute))
	assert.Equal(t, "2d", ageText(50*time.Hour))
}

func TestClosedNotice(t *testing.T) {
	tk := sampleTicket()
	assert.Contains(t, closedNotice(tk), "Reason: Resolved")
	reason := "Duplicate"
	tk.CloseReason = &reason
	assert.Equal(t, "🔒 Your ticket `TKT-0007` (Bug Report) was closed. Reason: Duplicate", closedNotice(tk))
}
