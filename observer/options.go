package observer

import (
	"time"

	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/retry"
)

// RefetchMode is the normalized form of the source's `boolean | 'always'`
// refetch-trigger typing (the same normalize-to-values approach
// retry.Policy uses for its own dynamic option fields).
type RefetchMode int

const (
	RefetchDisabled RefetchMode = iota
	RefetchIfStale
	RefetchAlways
)

// RefetchIntervalFunc computes the polling interval for the refetch timer.
// Returning <= 0 disables polling. A nil Options.RefetchInterval disables it
// unconditionally.
type RefetchIntervalFunc func(data any, e *entry.Entry) time.Duration

// EveryInterval returns a RefetchIntervalFunc that always polls at d.
func EveryInterval(d time.Duration) RefetchIntervalFunc {
	return func(any, *entry.Entry) time.Duration { return d }
}

// Options configures one EntryObserver. Boolean fields default to the
// permissive/enabled Go zero value; fields that need the opposite default
// are named in the negative (Disabled, NoRetryOnMount) so a zero Options
// behaves like the source's own defaults.
type Options struct {
	Disabled bool

	CacheTime time.Duration
	StaleTime time.Duration // < 0 means never stale

	Retry    retry.Policy
	Sharing  entry.SharingOptions
	QueryFn  entry.FetchFunc
	Behavior entry.Behavior
	Meta     any

	RefetchOnMount     RefetchMode
	RefetchOnFocus     RefetchMode
	RefetchOnReconnect RefetchMode
	NoRetryOnMount     bool

	RefetchInterval             RefetchIntervalFunc
	RefetchIntervalInBackground bool
	Backgrounded                func() bool

	Select           func(data any) (any, error)
	KeepPreviousData bool
	PlaceholderData  func() any

	// NotifyOnChangeProps, when non-empty, limits notification to changes
	// in the named Result fields. Empty means notify on any change (the
	// source's notifyOnChangeProps:'all').
	NotifyOnChangeProps []string
	UseErrorBoundary    bool

	OnSuccess func(data any)
	OnError   func(err error)
	OnSettled func(data any, err error)
}

// resolveEntryOptions projects the fields an entry.Entry itself needs out
// of Options.
func (o Options) resolveEntryOptions() entry.Options {
	return entry.Options{
		QueryFn:   o.QueryFn,
		CacheTime: o.CacheTime,
		Retry:     o.Retry,
		Sharing:   o.Sharing,
		Behavior:  o.Behavior,
	}
}
