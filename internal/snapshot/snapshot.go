// Package snapshot persists the last settled cart state to a device-local
// store. The snapshot is strictly a cache of the last-known-good
// authoritative state: it is read once at session start as a fallback
// display and overwritten after every settled change, and it never acts as
// a write source toward the remote cart service.
package snapshot

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/scentcart/internal/domain/cart"
)

// ErrNoSnapshot is returned by Load when no snapshot exists for the session.
var ErrNoSnapshot = errors.New("snapshot: none stored")

// Snapshot is the persisted view of a settled cart: the items plus the
// serverID→kind memory that lets reconciliation recover fine product kinds
// the remote service does not round-trip.
type Snapshot struct {
	Items   []cart.Item
	Kinds   cart.KindMemory
	SavedAt time.Time
}

// Store is a key/value snapshot store keyed by session identifier.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Snapshot, error)
	Save(ctx context.Context, sessionID string, snap *Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}
