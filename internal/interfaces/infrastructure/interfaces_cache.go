package infrastructure

import (
	"context"
	"time"
)

// ReportCache is the read-through cache in front of the attainment query
// service. Implementations must treat a miss as (nil, nil).
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
