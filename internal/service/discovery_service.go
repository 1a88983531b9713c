package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lescale-paris/escale-backend/internal/domain"
	"github.com/lescale-paris/escale-backend/internal/repository/ports"
)

// DiscoveryService orchestrates discovery calls around one shared snapshot.
// Later calls supersede earlier ones: every call takes a generation token and
// only the holder of the newest token may commit its result, so a slow
// response can never overwrite fresher data. User-initiated calls and
// background refreshes are tracked separately so the UI can show a full
// loading state for one and a quiet indicator for the other.
type DiscoveryService struct {
	discoverer ports.EventDiscoverer
	stats      *DiscoveryStatsService
	timeout    time.Duration

	mu        sync.Mutex
	gen       uint64
	userCalls int
	bgCalls   int
	result    domain.DiscoveryResult
	lastQuery string
	updatedAt time.Time
}

// DiscoveryStatus describes the snapshot's provenance and in-flight state.
type DiscoveryStatus struct {
	Loading    bool      `json:"loading"`
	Refreshing bool      `json:"refreshing"`
	Query      string    `json:"query"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewDiscoveryService(discoverer ports.EventDiscoverer, stats *DiscoveryStatsService, timeout time.Duration) *DiscoveryService {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &DiscoveryService{
		discoverer: discoverer,
		stats:      stats,
		timeout:    timeout,
		result:     emptyResult(),
	}
}

// Discover runs a user-initiated discovery call and returns the freshest
// committed snapshot. An empty query is passed through; the gateway
// substitutes the default curation query.
func (s *DiscoveryService) Discover(ctx context.Context, query string) domain.DiscoveryResult {
	return s.run(ctx, query, false)
}

// Refresh re-runs the last query as a background refresh. Used by the
// periodic scheduler.
func (s *DiscoveryService) Refresh(ctx context.Context) {
	s.mu.Lock()
	query := s.lastQuery
	s.mu.Unlock()
	s.run(ctx, query, true)
}

// Snapshot returns the current result set and status without triggering a
// call.
func (s *DiscoveryService) Snapshot() (domain.DiscoveryResult, DiscoveryStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyResultLocked(), s.statusLocked()
}

// FindEvent looks an event up in the current snapshot by id.
func (s *DiscoveryService) FindEvent(id string) (domain.EventItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range s.result.Events {
		if ev.ID == id {
			return ev, true
		}
	}
	return domain.EventItem{}, false
}

func (s *DiscoveryService) run(ctx context.Context, query string, background bool) domain.DiscoveryResult {
	s.mu.Lock()
	s.gen++
	token := s.gen
	if background {
		s.bgCalls++
	} else {
		s.userCalls++
	}
	s.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	result, err := s.discoverer.Discover(cctx, query)
	latency := time.Since(started)
	if result == nil {
		result = &domain.DiscoveryResult{}
	}
	s.stats.RecordDiscovery(query, len(result.Events), len(result.Sources), latency, background, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if background {
		s.bgCalls--
	} else {
		s.userCalls--
	}

	if token != s.gen {
		// Superseded while in flight; the fresher call owns the snapshot.
		return s.copyResultLocked()
	}

	switch {
	case err == nil:
		s.result = *result
		s.lastQuery = query
		s.updatedAt = time.Now()
	case background:
		// A failed background refresh keeps the last good snapshot.
		log.Printf("discovery: background refresh failed, keeping previous results: %v", err)
	default:
		// A failed user search degrades to "nothing found".
		log.Printf("discovery: call failed, degrading to empty result: %v", err)
		s.result = emptyResult()
		s.lastQuery = query
		s.updatedAt = time.Now()
	}
	return s.copyResultLocked()
}

func (s *DiscoveryService) statusLocked() DiscoveryStatus {
	return DiscoveryStatus{
		Loading:    s.userCalls > 0,
		Refreshing: s.bgCalls > 0,
		Query:      s.lastQuery,
		UpdatedAt:  s.updatedAt,
	}
}

func (s *DiscoveryService) copyResultLocked() domain.DiscoveryResult {
	out := domain.DiscoveryResult{
		Events:  make([]domain.EventItem, len(s.result.Events)),
		Sources: make([]domain.GroundingSource, len(s.result.Sources)),
	}
	copy(out.Events, s.result.Events)
	copy(out.Sources, s.result.Sources)
	return out
}

func emptyResult() domain.DiscoveryResult {
	return domain.DiscoveryResult{
		Events:  []domain.EventItem{},
		Sources: []domain.GroundingSource{},
	}
}
