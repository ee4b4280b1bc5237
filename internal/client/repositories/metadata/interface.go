// Package metadata is the durable key/value storage of the client. Every key
// is independently present or absent.
package metadata

import (
	"context"
)

// Repository is a key/value table. Get returns (nil, nil) for an absent key
// and Delete of an absent key is a no-op.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
