// Package metadata is the durable key-value storage of the CLI. It persists
// the session credential across restarts, plus the salt and check value of
// the sealed store when a storage passphrase is configured.
package metadata

import (
	"context"
)

// Repository is a small key-value store.
//
// Get returns (nil, nil) for an absent key and Delete is idempotent, so the
// session teardown can run any number of times.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
