// Package feed computes the ordered event display list. Everything in this
// package is pure: no I/O, no clocks other than the one passed in, identical
// inputs always produce identical output.
package feed

import (
	"sort"
	"time"

	"github.com/lescale-paris/escale-backend/internal/domain"
)

// DefaultPastGrace is how long after its start an event still counts as
// current. Tonight's parties stay visible for a while after doors open.
const DefaultPastGrace = 6 * time.Hour

// UpcomingSoonWindow is how far ahead an event may be to earn the
// "upcoming soon" status.
const UpcomingSoonWindow = 24 * time.Hour

// CategoryAll disables category filtering.
const CategoryAll = "All"

// Options selects and orders the display list. FavoritesOnly swaps the data
// source; every other field narrows it.
type Options struct {
	FavoritesOnly  bool
	HideOutdated   bool
	AccessibleOnly bool
	Category       string
	From           *time.Time
	To             *time.Time

	// Grace overrides DefaultPastGrace when positive.
	Grace time.Duration
	// Now anchors every temporal comparison. Zero means time.Now().
	Now time.Time
	// Rules overrides the default category predicate table.
	Rules RuleSet
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

func (o Options) grace() time.Duration {
	if o.Grace > 0 {
		return o.Grace
	}
	return DefaultPastGrace
}

func (o Options) rules() RuleSet {
	if o.Rules != nil {
		return o.Rules
	}
	return DefaultRules()
}

// ComputeDisplayList filters and sorts events for display. The live set and
// the favorites set are both passed in; FavoritesOnly picks which one is the
// source. Neither input slice is mutated.
func ComputeDisplayList(events, favorites []domain.EventItem, opts Options) []domain.EventItem {
	source := events
	if opts.FavoritesOnly {
		source = favorites
	}

	now := opts.now()
	out := make([]domain.EventItem, 0, len(source))
	for _, ev := range source {
		if opts.HideOutdated && IsPast(ev, now, opts.grace()) {
			continue
		}
		if opts.AccessibleOnly && !ev.Accessible() {
			continue
		}
		if !inDateRange(ev, opts.From, opts.To) {
			continue
		}
		if !opts.rules().Match(opts.Category, ev) {
			continue
		}
		out = append(out, ev)
	}

	sortChronological(out)
	return out
}

// inDateRange applies the inclusive bound filter. The To bound is inclusive
// through the end of that calendar day. Events without a parsable date pass;
// dropping them is the HideOutdated/status concern, not the range filter's.
func inDateRange(ev domain.EventItem, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	start, ok := ev.StartsAt()
	if !ok {
		return true
	}
	if from != nil && start.Before(*from) {
		return false
	}
	if to != nil {
		endOfDay := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), to.Location())
		if start.After(endOfDay) {
			return false
		}
	}
	return true
}

// sortChronological orders ascending by parsed start time. Unparsable dates
// are pinned to the far future so they sort last; the sort is stable, so
// ties and unparsable runs keep their input order.
func sortChronological(events []domain.EventItem) {
	sort.SliceStable(events, func(i, j int) bool {
		return sortKey(events[i]).Before(sortKey(events[j]))
	})
}

var farFuture = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

func sortKey(ev domain.EventItem) time.Time {
	if t, ok := ev.StartsAt(); ok {
		return t
	}
	return farFuture
}
