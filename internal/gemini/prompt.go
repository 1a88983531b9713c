package gemini

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDiscoveryQuery stands in for an empty user query; it expresses the
// default curation intent of the events screen.
const DefaultDiscoveryQuery = "top upcoming international student gatherings, club nights, and parties in Paris this weekend"

// DefaultWindowDays bounds the search window when no override is configured.
const DefaultWindowDays = 14

const assistantPersona = "You are 'Lili', a local Parisian expert assistant for international students. " +
	"You help with lifestyle, nightlife, bureaucracy (CAF, Navigo), and socializing. " +
	"Keep your tone chic, friendly, and helpful. Use emojis like 🇫🇷 ✨ 🥖 🍷."

// buildDiscoveryPrompt assembles the backend instruction: anchor date, window
// bound, the two-part search scope, and the curation policy.
func buildDiscoveryPrompt(query string, now time.Time, windowDays int) string {
	if strings.TrimSpace(query) == "" {
		query = DefaultDiscoveryQuery
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	today := now.Format("2006-01-02")
	until := now.AddDate(0, 0, windowDays).Format("2006-01-02")

	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s. Find real-time upcoming events, parties, or gatherings in Paris happening between %s and %s for international students matching: %s.\n", today, today, until, query)
	b.WriteString("Search both mainstream international listings AND niche local French-language sources (small venues, associations, neighborhood pages).\n")
	b.WriteString("Translate any non-English content into English.\n")
	b.WriteString("For each event, decide whether it is beginner-friendly for non-French speakers (a 'Safe Bet', isAccessible true) or requires local fluency (a 'Deep Local', isAccessible false), and justify the call in accessibilityReason.\n")
	b.WriteString("Crucially, verify events are still upcoming and have not already passed. Return a list of specific events with details.")
	return b.String()
}
