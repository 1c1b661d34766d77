// Package client provides the facade that binds EntryCache, MutationCache,
// NotifyManager, FocusTracker/OnlineTracker, and the observability/resilience
// layers into the single object an application actually holds.
//
// A Client resolves three layers of configuration for every query or
// mutation it runs: global defaults, the first matching per-key default
// (partial key match), then whatever the caller passed to the call itself.
// Each layer is expressed as a slice of functional options — QueryOption or
// MutationOption — applied in that order, so a layer only ever overrides the
// fields it explicitly sets.
//
// # Basic usage
//
//	c, err := client.New(client.Options{})
//	unmount := c.Mount()
//	defer unmount()
//
//	data, err := c.Fetch(ctx, key.Key{"user", 1}, client.WithQueryFn(func(ctx context.Context) (any, error) {
//		return fetchUser(ctx, 1)
//	}))
package client
