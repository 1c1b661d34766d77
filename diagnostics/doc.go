// Package diagnostics provides health-style introspection over a client's
// cache state.
//
// It is the same Checker/Aggregator/Status shape a process health-check
// framework would use, pointed at EntryCache/MutationCache instead of
// process memory or database connectivity: stale-entry ratio and
// paused-fetch count for queries, paused-mutation count for mutations.
//
// # Basic Usage
//
//	agg := diagnostics.NewAggregator()
//	agg.Register("entries", diagnostics.NewEntryCacheChecker(entryCache, diagnostics.EntryCacheCheckerConfig{}))
//	agg.Register("mutations", diagnostics.NewMutationCacheChecker(mutationCache))
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// There are no HTTP handlers here: diagnostics has no transport surface of
// its own. A host application that wants a liveness endpoint wires
// Aggregator.CheckAll into its own handler.
package diagnostics
