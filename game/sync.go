package game

import "context"

// Store is the synchronisation boundary holding the canonical copy of every
// match. Implementations must serialise writes to the same match.
type Store interface {
	// Save upserts the full snapshot. base is the Version the write was
	// derived from, 0 for a new match. It returns ErrStaleWrite unless the
	// stored snapshot is exactly at base and data.Version is above it.
	Save(ctx context.Context, matchID string, base int64, data GameData) error
	// Load fetches the latest snapshot, or ErrUnknownMatch.
	Load(ctx context.Context, matchID string) (GameData, error)
	// Observe calls onUpdate with every new snapshot until the subscription is closed.
	Observe(ctx context.Context, matchID string, onUpdate func(GameData)) (Subscription, error)
}

// Subscription stops delivery when closed
type Subscription interface {
	Close() error
}

// SaveResult receives the outcome of an asynchronous save, then closes
type SaveResult <-chan error
