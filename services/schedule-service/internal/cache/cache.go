// Package cache provides the read-through cache for paginated listings.
// It is never the source of truth: a failed read is a miss and a failed
// write is logged and dropped, so the surrounding operation always falls
// back to the store.
package cache

import (
	"context"
	"time"
)

// TTL is the single fixed time-to-live for every list cache entry.
const TTL = 300 * time.Second

// Cache key namespaces, one per entity kind. Invalidation is deliberately
// coarse: any mutation to an entity kind clears the whole namespace, because
// list keys are derived from arbitrary filter/pagination combinations and
// cannot be enumerated cheaply.
const (
	KindSchedules = "schedules"
	KindCustomers = "customers"
	KindDoctors   = "doctors"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Invalidate(ctx context.Context, kind string)
}
