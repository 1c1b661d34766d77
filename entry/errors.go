package entry

import "errors"

// ErrMissingFetcher is returned when a fetch is attempted on an entry that
// has neither its own fetch function nor one supplied by any observer.
var ErrMissingFetcher = errors.New("entry: no fetch function registered")

// ErrUndefinedResult is returned when a fetch function succeeds but
// produces no value.
var ErrUndefinedResult = errors.New("entry: fetch resolved with no data")
