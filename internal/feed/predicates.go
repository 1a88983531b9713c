package feed

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lescale-paris/escale-backend/internal/domain"
)

// CategoryRule is one named predicate of the category filter table. A rule
// matches when any keyword appears (case-insensitive) in the event's category
// or description, or, for suburb rules, when the location carries an
// outer-ring postal code.
type CategoryRule struct {
	Tag      string   `yaml:"tag"`
	Keywords []string `yaml:"keywords"`
	Suburbs  bool     `yaml:"suburbs"`
}

// outerPostalCode spots French postal codes starting with 9, the outer-suburb
// departments around Paris (91-95).
var outerPostalCode = regexp.MustCompile(`\b9[0-9]{4}\b`)

// Matches reports whether the event belongs to this rule's category.
func (r CategoryRule) Matches(ev domain.EventItem) bool {
	haystack := strings.ToLower(ev.Category + " " + ev.Description)
	for _, kw := range r.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return true
		}
	}
	if r.Suburbs {
		loc := strings.ToLower(ev.Location)
		if outerPostalCode.MatchString(loc) || strings.Contains(loc, "suburb") || strings.Contains(loc, "banlieue") {
			return true
		}
	}
	return false
}

// RuleSet is the predicate table keyed by tag. New tags are additions to the
// table, never edits to a conditional.
type RuleSet map[string]CategoryRule

// Match applies the rule registered for tag. The empty tag and CategoryAll
// match everything. An unregistered tag degrades to a plain substring rule on
// the tag itself, so ad-hoc client tags keep working.
func (rs RuleSet) Match(tag string, ev domain.EventItem) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.EqualFold(tag, CategoryAll) {
		return true
	}
	if rule, ok := rs[strings.ToLower(tag)]; ok {
		return rule.Matches(ev)
	}
	return CategoryRule{Tag: tag, Keywords: []string{tag}}.Matches(ev)
}

// Tags lists the registered tags plus CategoryAll, in stable display order.
func (rs RuleSet) Tags() []string {
	tags := []string{CategoryAll}
	for _, rule := range defaultRuleOrder {
		if _, ok := rs[strings.ToLower(rule)]; ok {
			tags = append(tags, rule)
		}
	}
	for tag, rule := range rs {
		if !containsFold(tags, rule.Tag) && !containsFold(defaultRuleOrder, tag) {
			tags = append(tags, rule.Tag)
		}
	}
	return tags
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

var defaultRuleOrder = []string{"Party", "Culture", "Food & Drink", "Free", "Erasmus", "Suburbs"}

// DefaultRules is the built-in predicate table.
func DefaultRules() RuleSet {
	rules := []CategoryRule{
		{Tag: "Party", Keywords: []string{"party", "club", "soirée", "night", "dj", "rave"}},
		{Tag: "Culture", Keywords: []string{"culture", "museum", "expo", "art", "cinema", "theatre", "concert"}},
		{Tag: "Food & Drink", Keywords: []string{"food", "drink", "apéro", "wine", "tasting", "brunch", "picnic"}},
		{Tag: "Free", Keywords: []string{"free", "gratuit", "no cover"}},
		{Tag: "Erasmus", Keywords: []string{"erasmus", "international", "exchange", "language"}},
		{Tag: "Suburbs", Keywords: []string{"suburb"}, Suburbs: true},
	}
	rs := make(RuleSet, len(rules))
	for _, r := range rules {
		rs[strings.ToLower(r.Tag)] = r
	}
	return rs
}

// LoadRules reads a rule table from a YAML file and merges it over the
// defaults. A tag present in the file replaces the built-in rule of the same
// name.
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category rules: %w", err)
	}

	var file struct {
		Rules []CategoryRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse category rules: %w", err)
	}

	rs := DefaultRules()
	for _, r := range file.Rules {
		if strings.TrimSpace(r.Tag) == "" {
			continue
		}
		rs[strings.ToLower(r.Tag)] = r
	}
	return rs, nil
}
