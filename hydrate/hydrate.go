package hydrate

import (
	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/mutation"
	"github.com/asyncache/asyncache/retry"
)

// ResolveMutationFn looks up the write function for a rehydrated
// mutation by its key — mutation functions are closures and can't be
// serialized, so a snapshot only carries the key and last variables; the
// host must supply a resolver that maps a mutationKey back to a live Fn.
// A resolver returning nil skips that mutation.
type ResolveMutationFn func(mutationKey any) mutation.Fn

// HydrateOptions configures Hydrate.
type HydrateOptions struct {
	ResolveMutationFn ResolveMutationFn
	MutationRetry     retry.Policy
	MutationOnline    func() bool
}

// Hydrate restores snapshot into entryCache and mutationCache. Existing
// entries with fresher data than the snapshot are left untouched;
// existing entries with older or no data are overwritten;
// entries absent from the cache are built fresh. Mutations are rebuilt
// into the MutationCache in paused state so a subsequent ResumePaused
// re-executes them; a mutation is skipped when opts.ResolveMutationFn is
// nil or returns nil for it.
func Hydrate(entryCache *entry.Cache, mutationCache *mutation.Cache, snapshot State, opts HydrateOptions) {
	for _, de := range snapshot.Entries {
		hydrateEntry(entryCache, de)
	}
	for _, dm := range snapshot.Mutations {
		hydrateMutation(mutationCache, dm, opts)
	}
}

func hydrateEntry(entryCache *entry.Cache, de DehydratedEntry) {
	if entryCache == nil {
		return
	}
	st := de.State
	st.FetchStatus = entry.FetchIdle

	if existing, ok := entryCache.Get(de.Hash); ok {
		if existing.State().DataUpdatedAt >= st.DataUpdatedAt {
			return
		}
		existing.SetState(st)
		return
	}

	e := entryCache.Build(de.Key, de.Hash, entry.Options{})
	e.SetState(st)
}

func hydrateMutation(mutationCache *mutation.Cache, dm DehydratedMutation, opts HydrateOptions) {
	if mutationCache == nil || opts.ResolveMutationFn == nil {
		return
	}
	fn := opts.ResolveMutationFn(dm.MutationKey)
	if fn == nil {
		return
	}
	mutationCache.BuildPaused(mutation.Options{
		MutationKey: dm.MutationKey,
		Fn:          fn,
		Retry:       opts.MutationRetry,
		Online:      opts.MutationOnline,
	}, dm.State)
}
