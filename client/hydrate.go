package client

import (
	"github.com/asyncache/asyncache/hydrate"
)

// Dehydrate snapshots every entry/mutation currently held by the Client
// that passes opts' filters, suitable for persisting and later restoring
// via Hydrate on a freshly built Client.
func (c *Client) Dehydrate(opts hydrate.Options) hydrate.State {
	return hydrate.Dehydrate(c.entryCache, c.mutationCache, opts)
}

// Hydrate restores a snapshot produced by Dehydrate into the Client.
// Mutations are rebuilt in a paused state; a subsequent focus/online
// regain (or an explicit call to MutationCache().ResumePaused) re-runs
// them through opts.ResolveMutationFn.
func (c *Client) Hydrate(snapshot hydrate.State, opts hydrate.HydrateOptions) {
	hydrate.Hydrate(c.entryCache, c.mutationCache, snapshot, opts)
}
