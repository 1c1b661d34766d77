package client

import (
	"context"

	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/key"
	"github.com/asyncache/asyncache/observe"
	"github.com/asyncache/asyncache/observer"
	"github.com/asyncache/asyncache/resilience"
)

// wrapQueryFn layers the Client's resilience executor and observability
// middleware around fn, in that order (executor gates whether an attempt
// starts at all; middleware only ever sees attempts that were let through).
func (c *Client) wrapQueryFn(k key.Key, hash string, fn entry.FetchFunc) entry.FetchFunc {
	if fn == nil {
		return nil
	}
	if c.executor != nil {
		fn = resilience.WrapFetchFunc(c.executor, fn)
	}
	if c.middleware != nil {
		meta := observe.QueryMeta{Hash: hash, Key: []any(k)}
		wrapped := c.middleware.Wrap(func(ctx context.Context, q observe.QueryMeta, input any) (any, error) {
			return fn(ctx)
		})
		fn = func(ctx context.Context) (any, error) {
			return wrapped(ctx, meta, nil)
		}
	}
	return fn
}

// wrapPageFn is wrapQueryFn's per-page analogue: each page fetch of an
// infinite query goes through the same resilience/observability layers as
// a regular fetch, with pageParam passed through as the middleware input.
func (c *Client) wrapPageFn(k key.Key, hash string, fn func(ctx context.Context, pageParam any) (any, error)) func(ctx context.Context, pageParam any) (any, error) {
	if fn == nil {
		return nil
	}
	if c.middleware != nil {
		meta := observe.QueryMeta{Hash: hash, Key: []any(k)}
		wrapped := c.middleware.Wrap(func(ctx context.Context, q observe.QueryMeta, input any) (any, error) {
			return fn(ctx, input)
		})
		fn = func(ctx context.Context, pageParam any) (any, error) {
			return wrapped(ctx, meta, pageParam)
		}
	}
	return fn
}

// buildEntry resolves k's layered query options, wraps its fetch function,
// and returns the (possibly newly built) cache entry alongside the
// resolved options. Only the fields an entry.Entry itself consumes are
// projected out of the resolved observer.Options; the rest (Select,
// KeepPreviousData, refetch modes, ...) only matter to a subscribed
// EntryObserver, not a one-shot call.
func (c *Client) buildEntry(k key.Key, caller []QueryOption) (*entry.Entry, observer.Options) {
	hash := key.MustHash(k)
	resolved := c.resolveQueryOptions(k, caller)
	entryOpts := entry.Options{
		QueryFn:   c.wrapQueryFn(k, hash, resolved.QueryFn),
		CacheTime: resolved.CacheTime,
		Retry:     resolved.Retry,
		Sharing:   resolved.Sharing,
		Behavior:  resolved.Behavior,
	}
	e := c.entryCache.Build(k, hash, entryOpts)
	// Build is a no-op for an entry that already exists, so a later call's
	// options (a fresher QueryFn closure, an updated retry policy) would
	// otherwise never take effect. SetOptions re-applies them every call.
	e.SetOptions(entryOpts)
	return e, resolved
}

// Fetch resolves k's entry, refetching unless its data is still fresh by
// the resolved StaleTime, and returns the settled value (or error).
func (c *Client) Fetch(ctx context.Context, k key.Key, opts ...QueryOption) (any, error) {
	e, resolved := c.buildEntry(k, opts)

	st := e.State()
	if st.DataUpdatedAt > 0 && !e.IsStaleByTime(resolved.StaleTime) {
		return st.Data, nil
	}
	return e.Fetch(ctx, entry.FetchOptions{})
}

// Prefetch behaves like Fetch but discards the error, matching the
// fire-and-forget semantics a warm-up call needs.
func (c *Client) Prefetch(ctx context.Context, k key.Key, opts ...QueryOption) {
	_, _ = c.Fetch(ctx, k, opts...)
}

// Ensure returns k's cached data immediately if any is present, regardless
// of staleness, otherwise fetches it first.
func (c *Client) Ensure(ctx context.Context, k key.Key, opts ...QueryOption) (any, error) {
	e, _ := c.buildEntry(k, opts)
	st := e.State()
	if st.DataUpdatedAt > 0 {
		return st.Data, nil
	}
	return e.Fetch(ctx, entry.FetchOptions{})
}

// FetchInfinite builds (or reuses) an infinite-paginated observer for k and
// fetches its first page, returning the accumulated pages.
func (c *Client) FetchInfinite(ctx context.Context, k key.Key, opts observer.InfiniteOptions) (observer.InfiniteData, error) {
	opts.PageFn = c.wrapPageFn(k, key.MustHash(k), opts.PageFn)
	obs := observer.NewInfinite(c.entryCache, k, opts)
	unsubscribe := obs.Subscribe(func(observer.Result) {})
	defer unsubscribe()

	result := obs.GetCurrentResult()
	if result.Data == nil {
		if _, err := obs.Refetch(ctx); err != nil {
			return observer.InfiniteData{}, err
		}
		result = obs.GetCurrentResult()
	}
	data, _ := result.Data.(observer.InfiniteData)
	return data, result.Error
}

// PrefetchInfinite behaves like FetchInfinite but discards the error.
func (c *Client) PrefetchInfinite(ctx context.Context, k key.Key, opts observer.InfiniteOptions) {
	_, _ = c.FetchInfinite(ctx, k, opts)
}
