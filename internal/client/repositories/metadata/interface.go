// Package metadata is the key/value table of the local client store. The
// session manager keeps the serialized session under one key and the API
// client keeps its credential cookies under another.
package metadata

import (
	"context"
)

// Repository is a byte-valued key/value store. Get on an absent key returns
// (nil, nil).
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
