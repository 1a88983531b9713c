package domain

import (
	"strings"
	"time"
)

// EventItem is one discovered event as returned by the discovery gateway.
// All free-text fields are author-supplied by the AI backend and are not
// content-validated. ID is the sole identity key for favoriting and share
// state; it is not guaranteed unique across discovery calls.
type EventItem struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	Category            string `json:"category"`
	Date                string `json:"date"`
	ISODate             string `json:"isoDate"`
	Location            string `json:"location"`
	Description         string `json:"description"`
	Vibe                string `json:"vibe"`
	StartTime           string `json:"startTime,omitempty"`
	EndTime             string `json:"endTime,omitempty"`
	IsAccessible        *bool  `json:"isAccessible,omitempty"`
	AccessibilityReason string `json:"accessibilityReason,omitempty"`
}

// StartsAt parses the machine-readable event start. The second return value
// is false when ISODate cannot be interpreted; callers must degrade rather
// than fail (unparsable dates are never "past" and sort last).
func (e EventItem) StartsAt() (time.Time, bool) {
	return ParseISODate(e.ISODate)
}

// Accessible reports whether the event carries the "Safe Bet" classification.
func (e EventItem) Accessible() bool {
	return e.IsAccessible != nil && *e.IsAccessible
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseISODate accepts the ISO-8601 variants the backend has been observed to
// emit, with or without an offset or a time component.
func ParseISODate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// GroundingSource is a citation the backend attaches to substantiate a
// discovery response. Informational only, never required for correctness.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// DiscoveryResult is the outcome of one discovery call. A failed call is
// represented by the zero value, never by a nil result.
type DiscoveryResult struct {
	Events  []EventItem       `json:"events"`
	Sources []GroundingSource `json:"sources"`
}

// EventStatus classifies an event relative to now.
type EventStatus string

const (
	StatusLive   EventStatus = "live"
	StatusSoon   EventStatus = "upcoming_soon"
	StatusPassed EventStatus = "passed"
	StatusNone   EventStatus = ""
)

// SharePayload is the formatted share sheet content for one event. The OS
// level share call is the caller's concern.
type SharePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// ChatTurn is one message of an assistant conversation. Role is either
// "user" or "model".
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
