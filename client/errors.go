package client

import "errors"

// ErrNoQueryFn names the case where neither the call nor any resolved
// default supplied a query function. Fetch and Ensure do not return it: they
// hand the entry to entry.Entry.Fetch, which fails with
// entry.ErrMissingFetcher when the entry has no fetch function.
var ErrNoQueryFn = errors.New("client: no query function for key")

// ErrNoMutationFn is returned when neither the call nor any resolved
// default supplied a mutation function.
var ErrNoMutationFn = errors.New("client: no mutation function")
