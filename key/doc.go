// Package key computes deterministic cache-key hashes and partial-match
// predicates used by entry.EntryCache to locate and filter entries.
//
// A Key is an ordered slice of JSON-serializable values. Hash canonicalizes
// it (sorted object keys, ordered arrays) so structurally-equal keys built
// in any iteration order hash identically; PartialMatch answers whether one
// key is a structural subset of another, the basis for entry.Filters'
// `key`/`exact` matching.
package key
