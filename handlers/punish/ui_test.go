package punish

import (
	"community-bot/model"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func sampleRecord() *model.ViolationRecord {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Unix()
	return &model.ViolationRecord{
		ID:              "rec-1",
		MemberID:        "42",
		RuleID:          "GR001",
		Ordinal:         2,
		StaffID:         "7",
		Severity:        2,
		Action:          model.ActionMute,
		DurationSeconds: ptr(7200),
		Fine:            ptr(10000),
		AppealEligible:  true,
		IssuedAt:        issued,
		ExpiresAt:       ptr(issued + 7200),
	}
}

func TestOrdinalSuffix(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 102: "102nd"}
	for n, want := range cases {
		assert.Equal(t, want, ordinalSuffix(n))
	}
}

func TestTimeoutFor(t *testing.T) {
	rec := sampleRecord()
	assert.Equal(t, 2*time.Hour, timeoutFor(rec))

	rec.DurationSeconds = ptr(int64((60 * 24 * time.Hour).Seconds()))
	assert.Equal(t, maxTimeout, timeoutFor(rec))

	rec.Action = model.ActionTempBan
	assert.Zero(t, timeoutFor(rec))

	warning := &model.ViolationRecord{Action: model.ActionWarning}
	assert.Zero(t, timeoutFor(warning))
}

func TestPunishmentEmbed(t *testing.T) {
	rec := sampleRecord()
	rule := &model.Rule{ID: "GR001", Title: "Respect All Players", AppealProcess: "Open a ticket within 7 days"}

	embed := PunishmentEmbed(rec, rule, "7")
	assert.Contains(t, embed.Title, "GR001 · Respect All Players")
	require.Len(t, embed.Fields, 6)
	assert.Equal(t, "2nd", embed.Fields[2].Value)
	assert.Equal(t, "Mute · 2 hours · $10,000 fine", embed.Fields[3].Value)
	assert.Equal(t, "<t:1772373600:R>", embed.Fields[4].Value)
	assert.Equal(t, "Open a ticket within 7 days", embed.Fields[5].Value)
	assert.Equal(t, "Record rec-1", embed.Footer.Text)

	rec.Notes = "spamming voice chat"
	rec.AppealEligible = false
	rec.ExpiresAt = nil
	embed = PunishmentEmbed(rec, nil, "7")
	require.Len(t, embed.Fields, 7)
	assert.Equal(t, "Never", embed.Fields[4].Value)
	assert.Equal(t, "Not eligible", embed.Fields[5].Value)
	assert.Equal(t, "spamming voice chat", embed.Fields[6].Value)
}

func TestMemberNotice(t *testing.T) {
	rec := sampleRecord()
	embed := MemberNotice(rec, &model.Rule{ID: "GR001", Title: "Respect All Players"}, "Test City")
	assert.Contains(t, embed.Description, "**Test City**")
	assert.Contains(t, embed.Description, "Respect All Players (GR001)")
	assert.True(t, strings.HasSuffix(embed.Description, "Eligible"))
}

func TestHistoryEmbed(t *testing.T) {
	now := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	active := sampleRecord()
	active.ExpiresAt = nil
	expired := sampleRecord()
	expired.ID = "rec-0"
	expired.Ordinal = 1
	expired.Action = model.ActionWarning
	expired.Expired = true

	embed := HistoryEmbed("42", []model.ViolationRecord{*active, *expired}, now)
	assert.Contains(t, embed.Description, "2 records, 1 active")
	assert.Contains(t, embed.Description, "`GR001` 2nd offense · Mute")
	assert.Contains(t, embed.Description, "`GR001` 1st offense · Warning")

	empty := HistoryEmbed("42", nil, now)
	assert.Equal(t, "<@42> has no violations on record.", empty.Description)
}

func TestHistoryEmbedTruncates(t *testing.T) {
	var recs []model.ViolationRecord
	for n := 0; n < maxHistoryLines+3; n++ {
		recs = append(recs, *sampleRecord())
	}
	embed := HistoryEmbed("42", recs, time.Now())
	assert.Contains(t, embed.Description, "...and 3 older records")
}

func TestStatsEmbed(t *testing.T) {
	stats := &model.ViolationStats{Total: 5, Active: 3, ByStaff: map[string]int{"a": 1, "b": 3, "c": 1}}
	embed := StatsEmbed(stats, 7)
	assert.Equal(t, "📈 Violations in the last 7 days", embed.Title)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "5", embed.Fields[0].Value)
	assert.Equal(t, "1. <@b>: 3\n2. <@a>: 1\n3. <@c>: 1", embed.Fields[2].Value)

	empty := StatsEmbed(&model.ViolationStats{}, 30)
	assert.Equal(t, "No punishments issued.", empty.Fields[2].Value)
}
