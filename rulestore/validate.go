package rulestore

import (
	"community-bot/model"
	"regexp"
	"strings"
)

var (
	ruleIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	prefixPattern = regexp.MustCompile(`^[A-Z]{1,4}$`)
)

// normalizeRule trims text fields, deduplicates keywords and checks everything
// that does not need the database. It returns a cleaned copy of r.
func normalizeRule(r model.Rule) (model.Rule, error) {
	r.ID = strings.TrimSpace(r.ID)
	r.Title = strings.TrimSpace(r.Title)
	r.Body = strings.TrimSpace(r.Body)
	r.Category = strings.TrimSpace(r.Category)
	r.Subcategory = strings.TrimSpace(r.Subcategory)
	r.Priority = strings.ToLower(strings.TrimSpace(r.Priority))

	if r.ID != "" && !ruleIDPattern.MatchString(r.ID) {
		return r, model.Invalid("id", "%q may only contain letters, digits, '-' and '_'", r.ID)
	}
	if r.Title == "" {
		return r, model.Invalid("title", "must not be empty")
	}
	if r.Body == "" {
		return r, model.Invalid("body", "must not be empty")
	}
	if r.Category == "" {
		return r, model.Invalid("category", "must not be empty")
	}

	switch r.Priority {
	case "":
		r.Priority = model.PriorityMedium
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical:
	default:
		return r, model.Invalid("priority", "unknown priority %q", r.Priority)
	}

	r.Keywords = dedupeKeywords(r.Keywords)
	if len(r.Keywords) == 0 {
		return r, model.Invalid("keywords", "at least one keyword is required")
	}

	tiers, err := validateTiers(r.Tiers)
	if err != nil {
		return r, err
	}
	r.Tiers = tiers
	return r, nil
}

// validateTiers requires a non-empty schedule whose severities run 1..n in order.
func validateTiers(tiers []model.Tier) ([]model.Tier, error) {
	if len(tiers) == 0 {
		return nil, model.Invalid("tiers", "a rule needs at least one punishment tier")
	}

	out := make([]model.Tier, len(tiers))
	for i, t := range tiers {
		if t.Severity != i+1 {
			return nil, model.Invalid("tiers", "tier %d has severity %d, want %d", i+1, t.Severity, i+1)
		}
		t.Action = model.ActionKind(strings.ToLower(strings.TrimSpace(string(t.Action))))
		if t.Action == "" {
			return nil, model.Invalid("tiers", "tier %d has no action", t.Severity)
		}
		if t.DurationSeconds != nil {
			if *t.DurationSeconds < 0 {
				return nil, model.Invalid("tiers", "tier %d has a negative duration", t.Severity)
			}
			if *t.DurationSeconds == 0 {
				t.DurationSeconds = nil
			}
		}
		if t.Fine != nil && *t.Fine < 0 {
			return nil, model.Invalid("tiers", "tier %d has a negative fine", t.Severity)
		}
		t.Details = strings.TrimSpace(t.Details)
		out[i] = t
	}
	return out, nil
}

func dedupeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		key := strings.ToLower(k)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, k)
	}
	return out
}

func normalizeCategory(c model.Category) (model.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Prefix = strings.ToUpper(strings.TrimSpace(c.Prefix))
	c.Description = strings.TrimSpace(c.Description)

	if c.Name == "" {
		return c, model.Invalid("name", "must not be empty")
	}
	if !prefixPattern.MatchString(c.Prefix) {
		return c, model.Invalid("prefix", "%q must be 1-4 letters", c.Prefix)
	}

	seen := make(map[string]bool, len(c.Subcategories))
	subs := make([]string, 0, len(c.Subcategories))
	for _, s := range c.Subcategories {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if seen[s] {
			return c, model.Invalid("subcategories", "duplicate subcategory %q", s)
		}
		seen[s] = true
		subs = append(subs, s)
	}
	if len(subs) == 0 {
		return c, model.Invalid("subcategories", "at least one subcategory is required")
	}
	c.Subcategories = subs
	return c, nil
}
