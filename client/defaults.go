package client

import (
	"context"
	"time"

	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/key"
	"github.com/asyncache/asyncache/mutation"
	"github.com/asyncache/asyncache/observer"
	"github.com/asyncache/asyncache/retry"
)

// QueryOption configures an observer.Options field for one query, default
// layer, or call. The same func type is used for global defaults, per-key
// defaults, and caller options — only the set of fields an Option touches
// differs between layers.
type QueryOption func(*observer.Options)

// WithQueryFn sets the fetch function.
func WithQueryFn(fn entry.FetchFunc) QueryOption {
	return func(o *observer.Options) { o.QueryFn = fn }
}

// WithCacheTime sets how long an unobserved entry survives before GC.
func WithCacheTime(d time.Duration) QueryOption {
	return func(o *observer.Options) { o.CacheTime = d }
}

// WithStaleTime sets the duration data is considered fresh.
func WithStaleTime(d time.Duration) QueryOption {
	return func(o *observer.Options) { o.StaleTime = d }
}

// WithQueryRetry sets the retry policy for fetch attempts.
func WithQueryRetry(p retry.Policy) QueryOption {
	return func(o *observer.Options) { o.Retry = p }
}

// WithQuerySharing sets structural-sharing behavior.
func WithQuerySharing(s entry.SharingOptions) QueryOption {
	return func(o *observer.Options) { o.Sharing = s }
}

// WithQueryMeta attaches fetch-context metadata.
func WithQueryMeta(meta any) QueryOption {
	return func(o *observer.Options) { o.Meta = meta }
}

// WithDisabled marks the query disabled (no mount fetch, excluded from
// EntryCache's active filter).
func WithDisabled(disabled bool) QueryOption {
	return func(o *observer.Options) { o.Disabled = disabled }
}

// WithRefetchOnMount sets the mount refetch mode.
func WithRefetchOnMount(m observer.RefetchMode) QueryOption {
	return func(o *observer.Options) { o.RefetchOnMount = m }
}

// WithRefetchOnFocus sets the focus-regained refetch mode.
func WithRefetchOnFocus(m observer.RefetchMode) QueryOption {
	return func(o *observer.Options) { o.RefetchOnFocus = m }
}

// WithRefetchOnReconnect sets the reconnect refetch mode.
func WithRefetchOnReconnect(m observer.RefetchMode) QueryOption {
	return func(o *observer.Options) { o.RefetchOnReconnect = m }
}

// WithRefetchInterval installs background polling.
func WithRefetchInterval(fn observer.RefetchIntervalFunc) QueryOption {
	return func(o *observer.Options) { o.RefetchInterval = fn }
}

// WithSelect installs a derived-value selector.
func WithSelect(fn func(data any) (any, error)) QueryOption {
	return func(o *observer.Options) { o.Select = fn }
}

// WithKeepPreviousData keeps the last successful result visible across key
// changes until the new key's data arrives.
func WithKeepPreviousData(keep bool) QueryOption {
	return func(o *observer.Options) { o.KeepPreviousData = keep }
}

// WithQueryHooks installs lifecycle callbacks.
func WithQueryHooks(onSuccess func(data any), onError func(err error), onSettled func(data any, err error)) QueryOption {
	return func(o *observer.Options) {
		o.OnSuccess = onSuccess
		o.OnError = onError
		o.OnSettled = onSettled
	}
}

// MutationOption configures a mutation.Options field, mirroring QueryOption
// for the mutation side.
type MutationOption func(*mutation.Options)

// WithMutationKey sets the key used for default-matching and dehydration.
func WithMutationKey(k any) MutationOption {
	return func(o *mutation.Options) { o.MutationKey = k }
}

// WithMutationFn sets the write function.
func WithMutationFn(fn mutation.Fn) MutationOption {
	return func(o *mutation.Options) { o.Fn = fn }
}

// WithMutationRetry sets the retry policy.
func WithMutationRetry(p retry.Policy) MutationOption {
	return func(o *mutation.Options) { o.Retry = p }
}

// WithMutationOnline overrides the connectivity predicate for this
// mutation only; otherwise it inherits the Client's OnlineTracker.
func WithMutationOnline(fn func() bool) MutationOption {
	return func(o *mutation.Options) { o.Online = fn }
}

// WithMutationHooks installs lifecycle callbacks.
func WithMutationHooks(hooks mutation.Hooks) MutationOption {
	return func(o *mutation.Options) { o.Hooks = hooks }
}

// queryDefault pairs a key pattern with the options applied to any query
// key that partially matches it. The first registered pattern that matches
// wins.
type queryDefault struct {
	pattern key.Key
	hash    string
	opts    []QueryOption
}

// mutationDefault is queryDefault's mutation-key analogue. Mutation keys
// are arbitrary values, not key.Key tuples, so matching goes through
// key.PartialMatch directly instead of a precomputed hash.
type mutationDefault struct {
	pattern any
	opts    []MutationOption
}

// resolveQueryOptions applies, in order, the global defaults, the first
// per-key default whose pattern partially matches k, and caller options —
// each layer only overrides the fields it explicitly sets.
func (c *Client) resolveQueryOptions(k key.Key, caller []QueryOption) observer.Options {
	var resolved observer.Options

	c.mu.Lock()
	global := append([]QueryOption{}, c.globalQueryDefaults...)
	defaults := append([]queryDefault{}, c.queryDefaults...)
	c.mu.Unlock()

	for _, opt := range global {
		opt(&resolved)
	}
	for _, qd := range defaults {
		if key.PartialMatch(k, qd.pattern) {
			for _, opt := range qd.opts {
				opt(&resolved)
			}
			break
		}
	}
	for _, opt := range caller {
		opt(&resolved)
	}
	return resolved
}

// resolveMutationOptions is resolveQueryOptions' mutation counterpart.
// Matching happens against the MutationKey the caller options set, so
// caller options are pre-applied to a probe value the default lookup reads
// before the real resolved value is built.
func (c *Client) resolveMutationOptions(caller []MutationOption) mutation.Options {
	var probe mutation.Options
	for _, opt := range caller {
		opt(&probe)
	}

	var resolved mutation.Options

	c.mu.Lock()
	global := append([]MutationOption{}, c.globalMutationDefaults...)
	defaults := append([]mutationDefault{}, c.mutationDefaults...)
	c.mu.Unlock()

	for _, opt := range global {
		opt(&resolved)
	}
	for _, md := range defaults {
		if probe.MutationKey != nil && key.PartialMatch(probe.MutationKey, md.pattern) {
			for _, opt := range md.opts {
				opt(&resolved)
			}
			break
		}
	}
	for _, opt := range caller {
		opt(&resolved)
	}
	return resolved
}

// SetQueryDefaults registers opts for every query key that partially
// matches pattern. A pattern already registered logs a warning and
// replaces the prior registration.
func (c *Client) SetQueryDefaults(pattern key.Key, opts ...QueryOption) {
	h := key.MustHash(pattern)
	c.mu.Lock()
	for i, qd := range c.queryDefaults {
		if qd.hash == h {
			c.queryDefaults[i] = queryDefault{pattern: pattern, hash: h, opts: opts}
			c.mu.Unlock()
			c.logger().Warn(context.Background(), "duplicate query default pattern replaced")
			return
		}
	}
	c.queryDefaults = append(c.queryDefaults, queryDefault{pattern: pattern, hash: h, opts: opts})
	c.mu.Unlock()
}

// SetGlobalQueryDefaults replaces the defaults applied to every query
// regardless of key.
func (c *Client) SetGlobalQueryDefaults(opts ...QueryOption) {
	c.mu.Lock()
	c.globalQueryDefaults = opts
	c.mu.Unlock()
}

// GetQueryDefaults resolves the defaults (global + first matching per-key)
// that would apply to k, without any caller layer.
func (c *Client) GetQueryDefaults(k key.Key) observer.Options {
	return c.resolveQueryOptions(k, nil)
}

// SetMutationDefaults registers opts for every mutation whose
// WithMutationKey partially matches pattern.
func (c *Client) SetMutationDefaults(pattern any, opts ...MutationOption) {
	c.mu.Lock()
	for i, md := range c.mutationDefaults {
		if key.PartialMatch(md.pattern, pattern) && key.PartialMatch(pattern, md.pattern) {
			c.mutationDefaults[i] = mutationDefault{pattern: pattern, opts: opts}
			c.mu.Unlock()
			c.logger().Warn(context.Background(), "duplicate mutation default pattern replaced")
			return
		}
	}
	c.mutationDefaults = append(c.mutationDefaults, mutationDefault{pattern: pattern, opts: opts})
	c.mu.Unlock()
}

// SetGlobalMutationDefaults replaces the defaults applied to every
// mutation regardless of key.
func (c *Client) SetGlobalMutationDefaults(opts ...MutationOption) {
	c.mu.Lock()
	c.globalMutationDefaults = opts
	c.mu.Unlock()
}

// GetMutationDefaults resolves the defaults that would apply to a mutation
// built with the given key.
func (c *Client) GetMutationDefaults(mutationKey any) mutation.Options {
	return c.resolveMutationOptions([]MutationOption{WithMutationKey(mutationKey)})
}
