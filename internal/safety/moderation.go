// Package safety screens student input against category word lists before it
// can reach the completion provider.
package safety

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// Category is one named moderation category with its static term list.
// Category order in rules.yaml is the tie-break order: the first term of the
// first matching category wins.
type Category struct {
	Name  string   `yaml:"name"`
	Terms []string `yaml:"terms"`
}

type ruleFile struct {
	Categories []Category `yaml:"categories"`
}

// Result reports whether text was flagged, and by which term.
type Result struct {
	Flagged  bool
	Category string
	Term     string
}

// Gate is a stateless word-list moderation filter. Matching is
// case-insensitive and whole-word: a term never matches inside a longer word.
type Gate struct {
	categories []Category
	patterns   [][]*regexp.Regexp
}

// NewGate compiles the embedded rule set.
func NewGate() (*Gate, error) {
	var rules ruleFile
	if err := yaml.Unmarshal(rulesYAML, &rules); err != nil {
		return nil, fmt.Errorf("safety: parse rules: %w", err)
	}
	return NewGateWithRules(rules.Categories)
}

// NewGateWithRules compiles an explicit rule set, preserving category and
// term order.
func NewGateWithRules(categories []Category) (*Gate, error) {
	g := &Gate{categories: categories}
	for _, cat := range categories {
		pats := make([]*regexp.Regexp, 0, len(cat.Terms))
		for _, term := range cat.Terms {
			p, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("safety: compile term %q: %w", term, err)
			}
			pats = append(pats, p)
		}
		g.patterns = append(g.patterns, pats)
	}
	return g, nil
}

// Check scans text and returns the first matching term of the first matching
// category. It never aggregates multiple matches.
func (g *Gate) Check(text string) Result {
	for i, cat := range g.categories {
		for j, term := range cat.Terms {
			if g.patterns[i][j].MatchString(text) {
				return Result{Flagged: true, Category: cat.Name, Term: term}
			}
		}
	}
	return Result{}
}

// Categories exposes the loaded rule set, mainly for tests.
func (g *Gate) Categories() []Category {
	return g.categories
}
