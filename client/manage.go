package client

import (
	"context"

	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/retry"
)

// RefetchType selects which of the entries matched by Invalidate/Reset
// should be actively refetched afterward.
type RefetchType int

const (
	RefetchActive RefetchType = iota
	RefetchAll
	RefetchNone
)

// Invalidate marks every entry matching filters stale and, unless
// refetchType is RefetchNone, refetches the matching subset (RefetchActive
// only entries with a live observer, RefetchAll every match).
func (c *Client) Invalidate(ctx context.Context, filters entry.Filters, refetchType RefetchType) {
	matches := c.entryCache.FindAll(filters)
	for _, e := range matches {
		e.Invalidate()
	}
	c.refetchMatches(ctx, matches, refetchType)
}

// Refetch immediately re-runs every entry matching filters, active or not,
// cancelling and restarting a fetch already in flight.
func (c *Client) Refetch(ctx context.Context, filters entry.Filters) []error {
	matches := c.entryCache.FindAll(filters)
	return c.fetchAll(ctx, matches)
}

func (c *Client) refetchMatches(ctx context.Context, matches []*entry.Entry, refetchType RefetchType) {
	switch refetchType {
	case RefetchNone:
		return
	case RefetchActive:
		var active []*entry.Entry
		for _, e := range matches {
			if e.IsActive() {
				active = append(active, e)
			}
		}
		c.fetchAll(ctx, active)
	case RefetchAll:
		c.fetchAll(ctx, matches)
	}
}

func (c *Client) fetchAll(ctx context.Context, matches []*entry.Entry) []error {
	errs := make([]error, 0, len(matches))
	for _, e := range matches {
		if _, err := e.Fetch(ctx, entry.FetchOptions{CancelRefetch: true}); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Cancel stops the in-flight fetch of every entry matching filters. By
// default the entry reverts to its pre-fetch state (Revert: true); pass
// opts to silence the resulting error or keep the cancellation state
// instead of reverting.
func (c *Client) Cancel(filters entry.Filters, opts ...retry.CancelOptions) {
	cancelOpts := retry.CancelOptions{Revert: true}
	if len(opts) > 0 {
		cancelOpts = opts[0]
	}
	for _, e := range c.entryCache.FindAll(filters) {
		e.Cancel(cancelOpts)
	}
}

// Remove drops every entry matching filters from the cache entirely.
func (c *Client) Remove(filters entry.Filters) {
	for _, e := range c.entryCache.FindAll(filters) {
		c.entryCache.Remove(e)
	}
}

// Reset clears the data of every entry matching filters back to its
// initial state, then refetches whatever is still actively observed.
func (c *Client) Reset(ctx context.Context, filters entry.Filters) {
	matches := c.entryCache.FindAll(filters)
	for _, e := range matches {
		e.SetState(entry.State{})
	}
	c.refetchMatches(ctx, matches, RefetchActive)
}

// IsFetching reports the number of entries matching filters currently
// fetching.
func (c *Client) IsFetching(filters entry.Filters) int {
	fetching := entry.FetchFetching
	filters.FetchStatus = &fetching
	return len(c.entryCache.FindAll(filters))
}

// IsMutating reports whether any mutation is currently loading.
func (c *Client) IsMutating() bool {
	return c.mutationCache.IsMutating()
}
