package storage

import "context"

// Storage is an origin-scoped key/value store, the same shape a browser
// gives a page through local storage.
type Storage interface {
	Get(ctx context.Context, origin, key string) (string, bool, error)

	Set(ctx context.Context, origin, key, value string) error

	Remove(ctx context.Context, origin, key string) error

	Close() error
}
