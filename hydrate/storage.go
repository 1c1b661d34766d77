// Package hydrate implements the dehydrate/hydrate snapshot round trip:
// serializing an EntryCache/MutationCache into a plain value a host can
// persist, and restoring it into a freshly booted client.
package hydrate

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidKey is returned by MemoryStorage.Set for an empty key.
var ErrInvalidKey = errors.New("hydrate: key is invalid")

// Storage is the sink a Dehydrator writes snapshots to and a Hydrator
// reads them back from. The core never assumes a durable store exists
// (Non-goal); Storage is the seam a host application uses to add one.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Policy configures how long a persisted snapshot lives.
type Policy struct {
	DefaultTTL time.Duration
	MaxTTL     time.Duration
}

// DefaultPolicy keeps snapshots for an hour by default, capped at a day.
func DefaultPolicy() Policy {
	return Policy{DefaultTTL: time.Hour, MaxTTL: 24 * time.Hour}
}

// EffectiveTTL resolves override against the policy's default and cap.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}
