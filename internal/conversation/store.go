// internal/conversation/store.go
package conversation

import (
	"context"

	"travel-assistant/internal/models"
)

// Store persists trip conversations. Messages are append-only and
// fetched in insertion order; strict ordering under concurrent appends
// for the same trip is the store's responsibility.
type Store interface {
	Append(ctx context.Context, msg models.Message) error
	Fetch(ctx context.Context, tripID string) ([]models.Message, error)
}
