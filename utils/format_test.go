package utils

import (
	"community-bot/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	cases := map[int64]string{
		0:       "$0",
		999:     "$999",
		5000:    "$5,000",
		1234567: "$1,234,567",
		-2500:   "-$2,500",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatMoney(in))
	}
}

func TestTierSummary(t *testing.T) {
	secs, fine := int64(7200), int64(10000)
	assert.Equal(t, "Mute · 2 hours · $10,000 fine", TierSummary(model.Tier{Action: model.ActionMute, DurationSeconds: &secs, Fine: &fine}))
	assert.Equal(t, "Ban", TierSummary(model.Tier{Action: model.ActionBan}))
	assert.Equal(t, "Vehicle Impound (staff discretion)", TierSummary(model.Tier{Action: model.ActionVehicleImpound, StaffDiscretion: true}))
}
