package model

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ActionKind is the kind of penalty a tier applies. The set is open; the
// constants below are the kinds the bot knows how to describe.
type ActionKind string

const (
	ActionWarning         ActionKind = "warning"
	ActionTimeout         ActionKind = "timeout"
	ActionMute            ActionKind = "mute"
	ActionKick            ActionKind = "kick"
	ActionFine            ActionKind = "fine"
	ActionTempBan         ActionKind = "temp_ban"
	ActionBan             ActionKind = "ban"
	ActionVehicleImpound  ActionKind = "vehicle_impound"
	ActionGangWarning     ActionKind = "gang_warning"
	ActionGangSuspension  ActionKind = "gang_suspension"
	ActionGangDissolution ActionKind = "gang_dissolution"
)

// Label renders the action for display, e.g. "temp_ban" as "Temp Ban".
func (a ActionKind) Label() string {
	words := strings.Fields(strings.ReplaceAll(string(a), "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Rule priorities, lowest first.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// PriorityRank orders priorities for sorting. Unknown priorities rank as medium.
func PriorityRank(p string) int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// Tier is one offense level of a rule's punishment schedule.
type Tier struct {
	Severity        int        `db:"severity" json:"severity" yaml:"severity"`
	Action          ActionKind `db:"action" json:"action" yaml:"action"`
	DurationSeconds *int64     `db:"duration_seconds" json:"duration_seconds,omitempty" yaml:"duration_seconds,omitempty"`
	Fine            *int64     `db:"fine" json:"fine,omitempty" yaml:"fine,omitempty"`
	AppealEligible  bool       `db:"appeal_eligible" json:"appeal_eligible" yaml:"appeal_eligible"`
	StaffDiscretion bool       `db:"staff_discretion" json:"staff_discretion" yaml:"staff_discretion"`
	Details         string     `db:"details" json:"details,omitempty" yaml:"details,omitempty"`
}

// Duration returns the tier duration, or zero when the tier has none.
func (t Tier) Duration() time.Duration {
	if t.DurationSeconds == nil {
		return 0
	}
	return time.Duration(*t.DurationSeconds) * time.Second
}

// Rule is a server rule together with its punishment schedule.
type Rule struct {
	ID            string    `db:"id" json:"id" yaml:"id"`
	Category      string    `db:"category" json:"category" yaml:"category"`
	Subcategory   string    `db:"subcategory" json:"subcategory" yaml:"subcategory"`
	Title         string    `db:"title" json:"title" yaml:"title"`
	Body          string    `db:"body" json:"body" yaml:"body"`
	Keywords      []string  `db:"-" json:"keywords" yaml:"keywords"`
	Active        bool      `db:"active" json:"active" yaml:"active"`
	Priority      string    `db:"priority" json:"priority" yaml:"priority"`
	AppealProcess string    `db:"appeal_process" json:"appeal_process,omitempty" yaml:"appeal_process,omitempty"`
	CreatedBy     string    `db:"created_by" json:"created_by,omitempty" yaml:"created_by,omitempty"`
	UpdatedBy     string    `db:"updated_by" json:"updated_by,omitempty" yaml:"updated_by,omitempty"`
	CreatedAt     time.Time `db:"-" json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time `db:"-" json:"updated_at" yaml:"updated_at"`
	Tiers         []Tier    `db:"-" json:"tiers" yaml:"tiers"`
}

// LastTier returns the terminal repeat tier of the schedule.
func (r *Rule) LastTier() Tier {
	return r.Tiers[len(r.Tiers)-1]
}

// Category groups rules under a two-level taxonomy.
type Category struct {
	Name          string   `db:"name" json:"name" yaml:"name"`
	Prefix        string   `db:"prefix" json:"prefix" yaml:"prefix"`
	Description   string   `db:"description" json:"description,omitempty" yaml:"description,omitempty"`
	Color         int      `db:"color" json:"color,omitempty" yaml:"color,omitempty"`
	Emoji         string   `db:"emoji" json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Subcategories []string `db:"-" json:"subcategories" yaml:"subcategories"`
}

// HasSubcategory reports whether name is one of the category's subcategories.
func (c *Category) HasSubcategory(name string) bool {
	for _, s := range c.Subcategories {
		if s == name {
			return true
		}
	}
	return false
}

// CategoryStats summarizes the rules filed under one category.
type CategoryStats struct {
	Category      string         `json:"category"`
	TotalRules    int            `json:"total_rules"`
	ActiveRules   int            `json:"active_rules"`
	Subcategories map[string]int `json:"subcategories"`
	Priorities    map[string]int `json:"priorities"`
}
