// Package cache stores rendered pages for a fixed time window.
package cache

import (
	"context"
	"time"
)

// PageCache memoizes rendered output by key. Entries leave only by expiry or Clear;
// writes to the underlying data never invalidate them.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, page []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
}
