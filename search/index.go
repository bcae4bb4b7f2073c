// Package search ranks rules against free-text queries.
package search

import (
	"community-bot/metrics"
	"community-bot/model"
	"community-bot/rulestore"
	"context"
	"log"
	"sort"
	"strings"
	"sync/atomic"
	"unicode"

	"golang.org/x/sync/singleflight"
)

const (
	keywordWeight = 2
	textWeight    = 1
)

// Result is a matching rule and its relevance score.
type Result struct {
	Rule  model.Rule
	Score int
}

type document struct {
	rule     model.Rule
	keywords map[string]bool
	text     map[string]bool
}

// snapshot is immutable once published.
type snapshot struct {
	docs []document
}

// Index is a keyword index over active rules. Searches read the last published
// snapshot and never block on Rebuild.
type Index struct {
	rules   *rulestore.Store
	metrics *metrics.Metrics
	current atomic.Pointer[snapshot]
	group   singleflight.Group
}

// New creates an empty index. Call Rebuild to load rules.
func New(rules *rulestore.Store, m *metrics.Metrics) *Index {
	idx := &Index{rules: rules, metrics: m}
	idx.current.Store(&snapshot{})
	return idx
}

// Rebuild reloads active rules from the store and publishes a new snapshot.
// Concurrent calls share one reload.
func (idx *Index) Rebuild(ctx context.Context) error {
	_, err, _ := idx.group.Do("rebuild", func() (interface{}, error) {
		rules, err := idx.rules.ListRules(ctx, rulestore.Filter{})
		if err != nil {
			return nil, err
		}
		snap := build(rules)
		idx.current.Store(snap)
		idx.metrics.ObserveRebuild(len(snap.docs))
		log.Printf("Search index rebuilt with %d rules", len(snap.docs))
		return nil, nil
	})
	return err
}

// Len returns the number of indexed rules.
func (idx *Index) Len() int {
	return len(idx.current.Load().docs)
}

func build(rules []model.Rule) *snapshot {
	snap := &snapshot{docs: make([]document, 0, len(rules))}
	for _, r := range rules {
		if !r.Active {
			continue
		}
		doc := document{rule: r, keywords: make(map[string]bool), text: make(map[string]bool)}
		for _, k := range r.Keywords {
			for _, tok := range Tokenize(k) {
				doc.keywords[tok] = true
			}
		}
		for _, tok := range Tokenize(r.Title + " " + r.Body) {
			doc.text[tok] = true
		}
		snap.docs = append(snap.docs, doc)
	}
	return snap
}

// Search scores each active rule against query. Every distinct query term adds
// keywordWeight when it is one of the rule's keywords, otherwise textWeight
// when it appears in the title or body. Rules scoring zero are left out.
// An empty category matches every category.
func (idx *Index) Search(query, category string) []Result {
	idx.metrics.IncSearch()

	terms := distinct(Tokenize(query))
	if len(terms) == 0 {
		return nil
	}

	var results []Result
	for _, doc := range idx.current.Load().docs {
		if category != "" && !strings.EqualFold(doc.rule.Category, category) {
			continue
		}
		score := 0
		for _, term := range terms {
			switch {
			case doc.keywords[term]:
				score += keywordWeight
			case doc.text[term]:
				score += textWeight
			}
		}
		if score > 0 {
			results = append(results, Result{Rule: doc.rule, Score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Rule.ID < results[j].Rule.ID
	})
	return results
}

// Tokenize lower-cases s and splits it on anything that is not a letter or digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func distinct(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
