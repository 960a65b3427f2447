// Package cache backs internal/grid.DistanceOracle with a cache-through
// lookup: a local or Redis-backed key/value store fronting a routing
// service over the network, exactly as internal/grid's doc comment
// describes. Grounded on the teacher's cache adapter (local.go/redis.go),
// narrowed from its generic ports.Cache interface to the single Store
// shape this package's own callers need.
package cache

import (
	"context"
	"time"
)

// Store is the minimal key/value contract CachedOracle needs from a
// backing cache. LocalCache and RedisCache both implement it.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
