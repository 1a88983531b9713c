package feed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lescale-paris/escale-backend/internal/domain"
)

func TestRuleSetMatchAllAndEmpty(t *testing.T) {
	rules := DefaultRules()
	event := domain.EventItem{Category: "Anything"}

	if !rules.Match("", event) {
		t.Fatal("empty tag should match everything")
	}
	if !rules.Match("All", event) {
		t.Fatal("All should match everything")
	}
	if !rules.Match("all", event) {
		t.Fatal("tag matching should be case-insensitive")
	}
}

func TestRuleSetMatchSubstringOnCategoryOrDescription(t *testing.T) {
	rules := DefaultRules()

	byCategory := domain.EventItem{Category: "Techno PARTY", Description: "loud"}
	if !rules.Match("Party", byCategory) {
		t.Fatal("expected case-insensitive category match")
	}

	byDescription := domain.EventItem{Category: "Music", Description: "A wild rooftop club night"}
	if !rules.Match("Party", byDescription) {
		t.Fatal("expected description match")
	}

	neither := domain.EventItem{Category: "Yoga", Description: "calm morning session"}
	if rules.Match("Party", neither) {
		t.Fatal("expected no match")
	}
}

func TestRuleSetMatchSuburbs(t *testing.T) {
	rules := DefaultRules()

	cases := []struct {
		name     string
		location string
		want     bool
	}{
		{"outer postal code", "Le Plan, 91120 Palaiseau", true},
		{"suburb word", "a venue in the northern suburbs", true},
		{"banlieue word", "petite banlieue spot", true},
		{"paris proper", "15 Rue Oberkampf, 75011 Paris", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := domain.EventItem{Category: "Music", Location: tc.location}
			if got := rules.Match("Suburbs", event); got != tc.want {
				t.Fatalf("Match(Suburbs, %q) = %v, want %v", tc.location, got, tc.want)
			}
		})
	}
}

func TestRuleSetUnknownTagFallsBackToSubstring(t *testing.T) {
	rules := DefaultRules()
	event := domain.EventItem{Category: "Rooftop Jazz", Description: ""}

	if !rules.Match("jazz", event) {
		t.Fatal("unknown tag should degrade to substring match")
	}
	if rules.Match("opera", event) {
		t.Fatal("unknown tag with no occurrence should not match")
	}
}

func TestRuleSetTagsIncludesAllFirst(t *testing.T) {
	tags := DefaultRules().Tags()
	if len(tags) == 0 || tags[0] != CategoryAll {
		t.Fatalf("expected %q first, got %v", CategoryAll, tags)
	}
}

func TestLoadRulesMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := []byte(`rules:
  - tag: Party
    keywords: ["bal musette"]
  - tag: Study
    keywords: ["library", "revision"]
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write rules file: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules returned error: %v", err)
	}

	overridden := domain.EventItem{Category: "Dance", Description: "classic bal musette evening"}
	if !rules.Match("Party", overridden) {
		t.Fatal("file rule should replace the built-in Party rule")
	}
	plainClub := domain.EventItem{Category: "Club night"}
	if rules.Match("Party", plainClub) {
		t.Fatal("built-in Party keywords should be gone after override")
	}

	study := domain.EventItem{Category: "Campus", Description: "Revision marathon at the library"}
	if !rules.Match("Study", study) {
		t.Fatal("new tag from file should be registered")
	}

	if !rules.Match("Suburbs", domain.EventItem{Location: "93200 Saint-Denis"}) {
		t.Fatal("untouched default rules should survive the merge")
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
