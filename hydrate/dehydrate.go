package hydrate

import (
	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/key"
	"github.com/asyncache/asyncache/mutation"
)

// DehydratedEntry is one query entry's serializable snapshot.
type DehydratedEntry struct {
	Hash  string
	Key   key.Key
	State entry.State
}

// DehydratedMutation is one paused mutation's serializable snapshot.
type DehydratedMutation struct {
	MutationKey any
	State       mutation.State
}

// State is the full snapshot dehydrate produces and hydrate consumes.
type State struct {
	Mutations []DehydratedMutation
	Entries   []DehydratedEntry
}

// Options controls which entries/mutations dehydrate includes. Nil
// predicates fall back to the package defaults.
type Options struct {
	// ShouldDehydrateMutation defaults to "state.IsPaused".
	ShouldDehydrateMutation func(m *mutation.Mutation) bool
	// ShouldDehydrateEntry defaults to "status == success".
	ShouldDehydrateEntry func(e *entry.Entry) bool
}

func defaultShouldDehydrateMutation(m *mutation.Mutation) bool {
	return m.State().IsPaused
}

func defaultShouldDehydrateEntry(e *entry.Entry) bool {
	return e.State().Status == entry.StatusSuccess
}

// Dehydrate builds a State snapshot of every entry/mutation the caches
// currently hold that passes the (default or supplied) filters.
func Dehydrate(entryCache *entry.Cache, mutationCache *mutation.Cache, opts Options) State {
	shouldEntry := opts.ShouldDehydrateEntry
	if shouldEntry == nil {
		shouldEntry = defaultShouldDehydrateEntry
	}
	shouldMutation := opts.ShouldDehydrateMutation
	if shouldMutation == nil {
		shouldMutation = defaultShouldDehydrateMutation
	}

	var out State
	if entryCache != nil {
		for _, e := range entryCache.FindAll(entry.Filters{}) {
			if !shouldEntry(e) {
				continue
			}
			out.Entries = append(out.Entries, DehydratedEntry{
				Hash:  e.Hash(),
				Key:   e.Key(),
				State: e.State(),
			})
		}
	}
	if mutationCache != nil {
		for _, m := range mutationCache.All() {
			if !shouldMutation(m) {
				continue
			}
			out.Mutations = append(out.Mutations, DehydratedMutation{
				MutationKey: m.MutationKey(),
				State:       m.State(),
			})
		}
	}
	return out
}
