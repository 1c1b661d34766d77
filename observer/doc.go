// Package observer derives a read-facing Result from an entry.Entry and
// keeps it current as the Entry's state changes: EntryObserver layers
// select/keep-previous-data/placeholder on top of the raw state and manages
// stale/refetch timers, InfiniteEntryObserver adds page-fetch behavior on
// top of that, and MultiEntryObserver reuses a set of child EntryObservers
// across option-list changes the way a dynamic list of queries would.
package observer
