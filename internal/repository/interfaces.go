package repository

import (
	"context"
	"time"
)

// KeyValueStore is the expiring keyed storage collaborator. Values are
// JSON-encoded on write and decoded into dest on read. A missing or expired
// key reads as absent, not as an error.
type KeyValueStore interface {
	// Store persists value under key for at most ttl.
	Store(ctx context.Context, key string, value any, ttl time.Duration) error

	// Retrieve decodes the stored value into dest. The bool reports whether
	// the key was present.
	Retrieve(ctx context.Context, key string, dest any) (bool, error)

	// Take atomically retrieves and deletes the value, so concurrent callers
	// observe at most one success for a given key.
	Take(ctx context.Context, key string, dest any) (bool, error)

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
