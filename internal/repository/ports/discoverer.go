package ports

import (
	"context"

	"github.com/lescale-paris/escale-backend/internal/domain"
)

// EventDiscoverer is the generative backend boundary. Discover returns an
// empty (never nil) result alongside any transport error; schema recovery is
// the implementation's concern.
type EventDiscoverer interface {
	Discover(ctx context.Context, query string) (*domain.DiscoveryResult, error)
}

// Assistant answers free-form chat turns.
type Assistant interface {
	Chat(ctx context.Context, message string, history []domain.ChatTurn) (string, error)
}
