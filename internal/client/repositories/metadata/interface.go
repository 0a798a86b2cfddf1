// Package metadata stores small key/value pairs in the local SQLite
// database. The session layer keeps its cached tokens here.
package metadata

import (
	"context"
)

// Repository is a key/value store operated on in batches, so a token pair
// is read, written or dropped together.
type Repository interface {
	// GetMany returns the stored values of keys. Missing keys are absent
	// from the map.
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)

	// Put upserts every pair of values.
	Put(ctx context.Context, values map[string][]byte) error

	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
