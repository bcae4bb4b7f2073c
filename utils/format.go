package utils

import (
	"community-bot/model"
	"strconv"
	"strings"
)

// FormatMoney renders an amount with thousands separators, e.g. "$25,000".
func FormatMoney(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String()
}

// TierSummary renders a tier on one line: action, duration and fine.
func TierSummary(t model.Tier) string {
	parts := []string{t.Action.Label()}
	if d := t.Duration(); d > 0 {
		parts = append(parts, FormatDuration(d))
	}
	if t.Fine != nil && *t.Fine > 0 {
		parts = append(parts, FormatMoney(*t.Fine)+" fine")
	}
	s := strings.Join(parts, " · ")
	if t.StaffDiscretion {
		s += " (staff discretion)"
	}
	return s
}
