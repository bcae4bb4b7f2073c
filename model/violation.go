package model

import "time"

// ViolationRecord is one punishment issued against a member for a rule.
// The tier fields are a snapshot taken when the record was written.
type ViolationRecord struct {
	ID              string     `db:"id"`
	MemberID        string     `db:"member_id"`
	RuleID          string     `db:"rule_id"`
	Ordinal         int        `db:"ordinal"`
	StaffID         string     `db:"staff_id"`
	Severity        int        `db:"severity"`
	Action          ActionKind `db:"action"`
	DurationSeconds *int64     `db:"duration_seconds"`
	Fine            *int64     `db:"fine"`
	AppealEligible  bool       `db:"appeal_eligible"`
	StaffDiscretion bool       `db:"staff_discretion"`
	Notes           string     `db:"notes"`
	IssuedAt        int64      `db:"issued_at"`
	ExpiresAt       *int64     `db:"expires_at"`
	Expired         bool       `db:"expired"`
	ExpiredAt       *int64     `db:"expired_at"`
}

// Issued returns IssuedAt as a time.
func (v *ViolationRecord) Issued() time.Time {
	return time.Unix(v.IssuedAt, 0)
}

// Expiry returns the expiry time and false when the record is permanent.
func (v *ViolationRecord) Expiry() (time.Time, bool) {
	if v.ExpiresAt == nil {
		return time.Time{}, false
	}
	return time.Unix(*v.ExpiresAt, 0), true
}

// ActiveAt reports whether the record still counts at the given instant.
func (v *ViolationRecord) ActiveAt(now time.Time) bool {
	if v.Expired {
		return false
	}
	return v.ExpiresAt == nil || *v.ExpiresAt > now.Unix()
}

// Tier rebuilds the tier snapshot carried by the record.
func (v *ViolationRecord) Tier() Tier {
	return Tier{
		Severity:        v.Severity,
		Action:          v.Action,
		DurationSeconds: v.DurationSeconds,
		Fine:            v.Fine,
		AppealEligible:  v.AppealEligible,
		StaffDiscretion: v.StaffDiscretion,
	}
}

// ViolationStats is an aggregate view over the ledger.
type ViolationStats struct {
	Total   int            `json:"total"`
	Active  int            `json:"active"`
	ByStaff map[string]int `json:"by_staff"`
}
