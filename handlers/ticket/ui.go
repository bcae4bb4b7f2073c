package ticket

import (
	"community-bot/model"
	"community-bot/tickets"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Component custom id prefixes for the buttons on a staff ticket post.
const (
	ClaimPrefix = "ticket_claim"
	ClosePrefix = "ticket_close"
)

var urgencyColor = map[string]int{
	"Low":      0x2ECC71,
	"Medium":   0xF1C40F,
	"High":     0xE67E22,
	"Critical": 0xE74C3C,
}

func categoryEmoji(name string) string {
	for _, c := range tickets.Categories {
		if c.Name == name {
			return c.Emoji
		}
	}
	return "🎫"
}

// TicketEmbed is the post staff see in the routed channel.
func TicketEmbed(t *model.Ticket) *discordgo.MessageEmbed {
	color, ok := urgencyColor[t.Urgency]
	if !ok {
		color = urgencyColor["Medium"]
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s %s · %s", categoryEmoji(t.Category), t.ID, t.Category),
		Description: t.Description,
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Member", Value: fmt.Sprintf("<@%s>", t.MemberID), Inline: true},
			{Name: "Urgency", Value: t.Urgency, Inline: true},
			{Name: "Priority", Value: fmt.Sprint(t.Priority), Inline: true},
		},
		Timestamp: time.Unix(t.CreatedAt, 0).UTC().Format(time.RFC3339),
	}
}

// TicketButtons returns the claim and close buttons for a ticket post.
func TicketButtons(id string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Claim", Style: discordgo.PrimaryButton, CustomID: ClaimPrefix + ":" + id},
				discordgo.Button{Label: "Close", Style: discordgo.DangerButton, CustomID: ClosePrefix + ":" + id},
			},
		},
	}
}

// ParseButtonID splits "prefix:id" and reports whether the prefix matched.
func ParseButtonID(customID, prefix string) (string, bool) {
	id, ok := strings.CutPrefix(customID, prefix+":")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// OpenedMessage is the confirmation shown to the member who opened the ticket.
func OpenedMessage(t *model.Ticket) string {
	cat := tickets.MatchCategory(t.Category)
	return fmt.Sprintf("🎫 Ticket `%s` opened under **%s**. Expected response time: %s.", t.ID, t.Category, cat.ResponseTime)
}

// ListEmbed lists tickets, highest priority first as given.
func ListEmbed(title string, list []model.Ticket, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{Title: title, Color: urgencyColor["Medium"]}
	if len(list) == 0 {
		embed.Description = "No open tickets."
		return embed
	}
	lines := make([]string, 0, len(list))
	for idx := range list {
		t := &list[idx]
		if len(lines) == 20 {
			lines = append(lines, fmt.Sprintf("...and %d more", len(list)-20))
			break
		}
		lines = append(lines, fmt.Sprintf("`%s` %s %s · <@%s> · P%d · opened %s ago",
			t.ID, categoryEmoji(t.Category), t.Category, t.MemberID, t.Priority, ageText(t.Age(now))))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}

func ageText(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// closedNotice is sent to the member when staff close their ticket.
func closedNotice(t *model.Ticket) string {
	reason := "Resolved"
	if t.CloseReason != nil {
		reason = *t.CloseReason
	}
	return fmt.Sprintf("🔒 Your ticket `%s` (%s) was closed. Reason: %s", t.ID, t.Category, reason)
}
