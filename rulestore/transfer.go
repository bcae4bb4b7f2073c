package rulestore

import (
	"community-bot/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Document is the portable form of the whole rule database.
type Document struct {
	ExportedAt time.Time        `json:"exported_at" yaml:"exported_at"`
	TotalRules int              `json:"total_rules" yaml:"total_rules"`
	Categories []model.Category `json:"categories" yaml:"categories"`
	Rules      []model.Rule     `json:"rules" yaml:"rules"`
	Inactive   []string         `json:"inactive,omitempty" yaml:"inactive,omitempty"`
}

// ImportReport summarizes an Import run.
type ImportReport struct {
	Categories int
	Imported   int
	Skipped    []string
}

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// Export writes every category and rule, including inactive rules, to w.
func (s *Store) Export(ctx context.Context, w io.Writer, format string) (int, error) {
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return 0, err
	}
	rules, err := s.ListRules(ctx, Filter{IncludeInactive: true})
	if err != nil {
		return 0, err
	}

	doc := Document{
		ExportedAt: s.now().UTC().Truncate(time.Second),
		TotalRules: len(rules),
		Categories: cats,
		Rules:      rules,
	}
	for _, r := range rules {
		if !r.Active {
			doc.Inactive = append(doc.Inactive, r.ID)
		}
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return 0, fmt.Errorf("failed to encode yaml export: %w", err)
		}
		err = enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	default:
		return 0, model.Invalid("format", "unsupported export format %q", format)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write export: %w", err)
	}
	return len(rules), nil
}

// Import reads a Document from r. Categories are upserted; rules whose id
// already exists are skipped. Rules listed as inactive are deactivated after
// they are written.
func (s *Store) Import(ctx context.Context, r io.Reader, format, actorID string) (*ImportReport, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, model.Invalid("document", "malformed yaml: %v", err)
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, model.Invalid("document", "malformed json: %v", err)
		}
	default:
		return nil, model.Invalid("format", "unsupported import format %q", format)
	}

	report := &ImportReport{}
	for _, c := range doc.Categories {
		if _, err := s.UpsertCategory(ctx, c); err != nil {
			return report, fmt.Errorf("failed to import category %q: %w", c.Name, err)
		}
		report.Categories++
	}

	inactive := make(map[string]bool, len(doc.Inactive))
	for _, id := range doc.Inactive {
		inactive[id] = true
	}

	for _, rule := range doc.Rules {
		if rule.ID != "" {
			_, err := s.GetRule(ctx, rule.ID)
			if err == nil {
				report.Skipped = append(report.Skipped, rule.ID)
				continue
			}
			if !errors.Is(err, model.ErrNotFound) {
				return report, err
			}
		}

		saved, err := s.UpsertRule(ctx, rule, actorID)
		if err != nil {
			return report, fmt.Errorf("failed to import rule %q: %w", rule.ID, err)
		}
		if inactive[rule.ID] {
			if err := s.DeactivateRule(ctx, saved.ID, actorID); err != nil {
				return report, err
			}
		}
		report.Imported++
	}

	log.Printf("Imported %d rules (%d skipped) and %d categories", report.Imported, len(report.Skipped), report.Categories)
	return report, nil
}
