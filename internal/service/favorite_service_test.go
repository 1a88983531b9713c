package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-test/deep"

	"github.com/lescale-paris/escale-backend/internal/domain"
	"github.com/lescale-paris/escale-backend/internal/repository/memory"
)

func favEvent(id string) domain.EventItem {
	return domain.EventItem{ID: id, Title: "Event " + id, Category: "Party", ISODate: "2024-06-01T22:00:00Z"}
}

func TestFavoriteToggleIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewFavoriteService(memory.NewKeyValueStore(), "escale_favorites")

	if _, err := svc.Toggle(ctx, "", favEvent("keep")); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	before := svc.List(ctx, "")

	on, err := svc.Toggle(ctx, "", favEvent("flip"))
	if err != nil || !on {
		t.Fatalf("expected toggle-on, got on=%v err=%v", on, err)
	}
	off, err := svc.Toggle(ctx, "", favEvent("flip"))
	if err != nil || off {
		t.Fatalf("expected toggle-off, got on=%v err=%v", off, err)
	}

	if diff := deep.Equal(before, svc.List(ctx, "")); diff != nil {
		t.Fatalf("toggle on+off did not restore the prior set: %v", diff)
	}
}

func TestFavoriteNeverContainsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	svc := NewFavoriteService(memory.NewKeyValueStore(), "escale_favorites")

	ops := []string{"a", "b", "a", "a", "c", "b", "b", "a"}
	for _, id := range ops {
		if _, err := svc.Toggle(ctx, "", favEvent(id)); err != nil {
			t.Fatalf("Toggle(%s): %v", id, err)
		}
		seen := make(map[string]bool)
		for _, fav := range svc.List(ctx, "") {
			if seen[fav.ID] {
				t.Fatalf("duplicate id %q after toggling %v", fav.ID, ops)
			}
			seen[fav.ID] = true
		}
	}
}

func TestFavoritePersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKeyValueStore()

	first := NewFavoriteService(store, "escale_favorites")
	for _, id := range []string{"a", "b", "c"} {
		if _, err := first.Toggle(ctx, "", favEvent(id)); err != nil {
			t.Fatalf("Toggle(%s): %v", id, err)
		}
	}
	saved := first.List(ctx, "")

	// A fresh service over the same store simulates a process restart.
	second := NewFavoriteService(store, "escale_favorites")
	if diff := deep.Equal(saved, second.List(ctx, "")); diff != nil {
		t.Fatalf("favorites did not survive reload: %v", diff)
	}
}

func TestFavoriteCorruptBlobTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKeyValueStore()
	if err := store.SetItem(ctx, "escale_favorites", []byte("{definitely not json")); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	svc := NewFavoriteService(store, "escale_favorites")
	if got := svc.List(ctx, ""); len(got) != 0 {
		t.Fatalf("expected corrupt blob to read as empty, got %+v", got)
	}

	// The store must still be writable after recovery.
	if _, err := svc.Toggle(ctx, "", favEvent("a")); err != nil {
		t.Fatalf("Toggle after corruption: %v", err)
	}
	if got := NewFavoriteService(store, "escale_favorites").List(ctx, ""); len(got) != 1 {
		t.Fatalf("expected recovered set of 1, got %+v", got)
	}
}

func TestFavoriteToggleOffRemovesEveryOccurrence(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKeyValueStore()

	// The backend does not guarantee id uniqueness; a blob may hold repeats.
	dupes := []domain.EventItem{favEvent("dup"), favEvent("other"), favEvent("dup")}
	blob, err := json.Marshal(dupes)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	if err := store.SetItem(ctx, "escale_favorites", blob); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	svc := NewFavoriteService(store, "escale_favorites")
	on, err := svc.Toggle(ctx, "", favEvent("dup"))
	if err != nil || on {
		t.Fatalf("expected toggle-off of duplicated id, got on=%v err=%v", on, err)
	}

	got := svc.List(ctx, "")
	if len(got) != 1 || got[0].ID != "other" {
		t.Fatalf("expected only 'other' to remain, got %+v", got)
	}
}

func TestFavoriteSaveAndRemoveErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewFavoriteService(memory.NewKeyValueStore(), "escale_favorites")

	if err := svc.Save(ctx, "", favEvent("a")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := svc.Save(ctx, "", favEvent("a")); !errors.Is(err, ErrFavoriteAlreadyExists) {
		t.Fatalf("expected ErrFavoriteAlreadyExists, got %v", err)
	}
	if err := svc.Remove(ctx, "", "missing"); !errors.Is(err, ErrFavoriteNotFound) {
		t.Fatalf("expected ErrFavoriteNotFound, got %v", err)
	}
	if err := svc.Remove(ctx, "", "a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := svc.List(ctx, ""); len(got) != 0 {
		t.Fatalf("expected empty set, got %+v", got)
	}
}

func TestFavoriteNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := NewFavoriteService(memory.NewKeyValueStore(), "escale_favorites")

	if _, err := svc.Toggle(ctx, "user-1", favEvent("a")); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	if got := svc.List(ctx, ""); len(got) != 0 {
		t.Fatalf("anonymous namespace should be untouched, got %+v", got)
	}
	if !svc.IsFavorited(ctx, "user-1", "a") {
		t.Fatal("expected favorite under user-1")
	}
	if svc.IsFavorited(ctx, "user-2", "a") {
		t.Fatal("user-2 should not see user-1 favorites")
	}
}
