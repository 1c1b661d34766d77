package hydrate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// SaveSnapshot marshals state as JSON and writes it to storage under key,
// governed by ttl (0 uses the storage's own default).
func SaveSnapshot(ctx context.Context, storage Storage, key string, state State, ttl time.Duration) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("hydrate: marshal snapshot: %w", err)
	}
	return storage.Set(ctx, key, b, ttl)
}

// LoadSnapshot reads and unmarshals a snapshot previously written by
// SaveSnapshot. Returns (State{}, false) on miss or corrupt payload —
// hydrate treats a missing/unreadable snapshot as a no-op, not an error.
func LoadSnapshot(ctx context.Context, storage Storage, key string) (State, bool) {
	b, ok := storage.Get(ctx, key)
	if !ok {
		return State{}, false
	}
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return State{}, false
	}
	return s, true
}
