package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/lescale-paris/escale-backend/internal/domain"
	"github.com/lescale-paris/escale-backend/internal/repository/ports"
)

var (
	ErrFavoriteAlreadyExists = errors.New("event already saved to favorites")
	ErrFavoriteNotFound      = errors.New("favorite not found")
)

// FavoriteService owns the persisted favorites sets. Each namespace (one per
// user, or the shared anonymous one) is loaded from the key-value store once
// and cached; every mutation rewrites the whole set. Favorited events are
// snapshots, not references into the live discovered set.
type FavoriteService struct {
	store     ports.KeyValueStore
	namespace string

	mu   sync.Mutex
	sets map[string][]domain.EventItem
}

func NewFavoriteService(store ports.KeyValueStore, namespace string) *FavoriteService {
	if namespace == "" {
		namespace = "escale_favorites"
	}
	return &FavoriteService{
		store:     store,
		namespace: namespace,
		sets:      make(map[string][]domain.EventItem),
	}
}

// List returns a copy of the favorites set for userKey. userKey may be empty
// for the anonymous namespace.
func (s *FavoriteService) List(ctx context.Context, userKey string) []domain.EventItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEvents(s.loadLocked(ctx, userKey))
}

// IsFavorited tests membership by exact id match.
func (s *FavoriteService) IsFavorited(ctx context.Context, userKey, eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fav := range s.loadLocked(ctx, userKey) {
		if fav.ID == eventID {
			return true
		}
	}
	return false
}

// Toggle flips membership for the event's id. Toggling on stores the given
// snapshot; toggling off removes every entry with that id, so a backend that
// reuses ids can never strand a hidden duplicate. Returns whether the event
// is favorited after the call.
func (s *FavoriteService) Toggle(ctx context.Context, userKey string, event domain.EventItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.loadLocked(ctx, userKey)
	next := make([]domain.EventItem, 0, len(set)+1)
	removed := false
	for _, fav := range set {
		if fav.ID == event.ID {
			removed = true
			continue
		}
		next = append(next, fav)
	}
	if !removed {
		next = append(next, event)
	}

	if err := s.persistLocked(ctx, userKey, next); err != nil {
		return removed, err
	}
	return !removed, nil
}

// Save adds the snapshot, failing when the id is already present.
func (s *FavoriteService) Save(ctx context.Context, userKey string, event domain.EventItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.loadLocked(ctx, userKey)
	for _, fav := range set {
		if fav.ID == event.ID {
			return ErrFavoriteAlreadyExists
		}
	}
	return s.persistLocked(ctx, userKey, append(cloneEvents(set), event))
}

// Remove deletes every entry matching eventID.
func (s *FavoriteService) Remove(ctx context.Context, userKey, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.loadLocked(ctx, userKey)
	next := make([]domain.EventItem, 0, len(set))
	for _, fav := range set {
		if fav.ID != eventID {
			next = append(next, fav)
		}
	}
	if len(next) == len(set) {
		return ErrFavoriteNotFound
	}
	return s.persistLocked(ctx, userKey, next)
}

func (s *FavoriteService) key(userKey string) string {
	if userKey == "" {
		return s.namespace
	}
	return s.namespace + ":" + userKey
}

// loadLocked reads the namespace on first access. A missing key is an empty
// set; a corrupt blob is logged and treated as empty, never surfaced.
func (s *FavoriteService) loadLocked(ctx context.Context, userKey string) []domain.EventItem {
	key := s.key(userKey)
	if set, ok := s.sets[key]; ok {
		return set
	}

	var set []domain.EventItem
	data, err := s.store.GetItem(ctx, key)
	switch {
	case errors.Is(err, ports.ErrKeyNotFound):
	case err != nil:
		log.Printf("favorites: load %q: %v", key, err)
	default:
		if err := json.Unmarshal(data, &set); err != nil {
			log.Printf("favorites: corrupt blob at %q, starting empty: %v", key, err)
			set = nil
		}
	}
	if set == nil {
		set = []domain.EventItem{}
	}
	s.sets[key] = set
	return set
}

// persistLocked writes the whole set, then commits it to the cache.
func (s *FavoriteService) persistLocked(ctx context.Context, userKey string, set []domain.EventItem) error {
	key := s.key(userKey)
	data, err := json.Marshal(set)
	if err != nil {
		return err
	}
	if err := s.store.SetItem(ctx, key, data); err != nil {
		return err
	}
	s.sets[key] = set
	return nil
}

func cloneEvents(events []domain.EventItem) []domain.EventItem {
	out := make([]domain.EventItem, len(events))
	copy(out, events)
	return out
}
