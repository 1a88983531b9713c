package feed

import (
	"fmt"
	"time"

	"github.com/lescale-paris/escale-backend/internal/domain"
)

// IsPast reports whether the event started more than grace ago. Events
// without a parsable date are never past.
func IsPast(ev domain.EventItem, now time.Time, grace time.Duration) bool {
	start, ok := ev.StartsAt()
	if !ok {
		return false
	}
	return now.Sub(start) > grace
}

// ClassifyStatus assigns the display badge: live while inside the past grace
// window, upcoming-soon within the next UpcomingSoonWindow, passed once the
// grace window is exhausted, none otherwise.
func ClassifyStatus(ev domain.EventItem, now time.Time, grace time.Duration) domain.EventStatus {
	start, ok := ev.StartsAt()
	if !ok {
		return domain.StatusNone
	}

	diff := start.Sub(now)
	switch {
	case diff <= 0 && diff > -grace:
		return domain.StatusLive
	case diff > 0 && diff < UpcomingSoonWindow:
		return domain.StatusSoon
	case diff <= 0:
		return domain.StatusPassed
	default:
		return domain.StatusNone
	}
}

// BuildSharePayload formats the share sheet content for one event.
func BuildSharePayload(ev domain.EventItem, baseURL string) domain.SharePayload {
	return domain.SharePayload{
		Title: ev.Title,
		Text: fmt.Sprintf("Check out this student event in Paris: %s\n📅 %s\n📍 %s\n\nJoin via L'Escale Paris!",
			ev.Title, ev.Date, ev.Location),
		URL: baseURL,
	}
}
