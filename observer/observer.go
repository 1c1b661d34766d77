package observer

import (
	"context"
	"sync"
	"time"

	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/key"
)

// Listener receives a derived Result after every change.
type Listener func(Result)

// EntryObserver derives and keeps current a Result for one Entry. It
// implements entry.Observer so an Entry can address it directly.
type EntryObserver struct {
	mu    sync.Mutex
	cache *entry.Cache
	k     key.Key
	hash  string
	opts  Options

	entry *entry.Entry

	initialDataUpdateCount  int
	initialErrorUpdateCount int

	current  Result
	previous *Result // last successful result, for keepPreviousData

	selectSource any
	selectValue  any
	selectErr    error
	haveSelected bool

	staleTimer   *time.Timer
	refetchTimer *time.Timer
	interval     time.Duration

	listeners map[int]Listener
	nextID    int
}

// New builds an EntryObserver bound to k. The Entry itself is only
// acquired from cache on the first Subscribe call.
func New(cache *entry.Cache, k key.Key, opts Options) *EntryObserver {
	return &EntryObserver{
		cache:     cache,
		k:         k,
		hash:      key.MustHash(k),
		opts:      opts,
		listeners: make(map[int]Listener),
	}
}

// SetOptions replaces this observer's options and re-derives its result —
// used when the caller changes select/staleTime/etc without unmounting.
func (o *EntryObserver) SetOptions(opts Options) {
	o.mu.Lock()
	o.opts = opts
	e := o.entry
	o.mu.Unlock()
	if e != nil {
		e.SetOptions(opts.resolveEntryOptions())
		o.recompute("optionsChanged", true)
	}
}

// Options returns the observer's current options.
func (o *EntryObserver) Options() Options {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opts
}

// GetCurrentResult returns the last-derived Result without side effects.
func (o *EntryObserver) GetCurrentResult() Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Subscribe registers fn and, on the first listener, attaches to the Entry:
// runs a mount fetch if warranted and starts the stale/refetch timers.
func (o *EntryObserver) Subscribe(fn Listener) (unsubscribe func()) {
	o.mu.Lock()
	first := len(o.listeners) == 0
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	o.mu.Unlock()

	if first {
		o.mount()
	}

	return func() {
		o.mu.Lock()
		delete(o.listeners, id)
		last := len(o.listeners) == 0
		o.mu.Unlock()
		if last {
			o.unmount()
		}
	}
}

func (o *EntryObserver) mount() {
	e := o.cache.Build(o.k, o.hash, o.opts.resolveEntryOptions())

	o.mu.Lock()
	o.entry = e
	st := e.State()
	o.initialDataUpdateCount = st.DataUpdateCount
	o.initialErrorUpdateCount = st.ErrorUpdateCount
	o.mu.Unlock()

	e.AddObserver(o)

	if o.shouldFetchOnMount(st) {
		go e.Fetch(context.Background(), entry.FetchOptions{Meta: o.opts.Meta})
	}

	o.recompute("mount", false)
	o.armStaleTimer()
	o.armRefetchTimer()
}

func (o *EntryObserver) unmount() {
	o.mu.Lock()
	e := o.entry
	o.stopTimersLocked()
	o.mu.Unlock()
	if e != nil {
		e.RemoveObserver(o)
	}
}

func (o *EntryObserver) stopTimersLocked() {
	if o.staleTimer != nil {
		o.staleTimer.Stop()
		o.staleTimer = nil
	}
	if o.refetchTimer != nil {
		o.refetchTimer.Stop()
		o.refetchTimer = nil
	}
}

// SetKey rebinds the observer to a new cache key while keeping its last
// successful result around for keepPreviousData overlay — used by
// MultiEntryObserver to "adopt" an unmatched prior child onto a new key
// instead of building a fresh observer with no previous data.
func (o *EntryObserver) SetKey(k key.Key, opts Options) {
	o.mu.Lock()
	hadListeners := len(o.listeners) > 0
	oldEntry := o.entry
	o.mu.Unlock()

	if hadListeners && oldEntry != nil {
		oldEntry.RemoveObserver(o)
	}

	o.mu.Lock()
	o.k = k
	o.hash = key.MustHash(k)
	o.opts = opts
	o.entry = nil
	o.stopTimersLocked()
	o.mu.Unlock()

	if hadListeners {
		o.mount()
	}
}

// Refetch re-runs the Entry's fetch, cancelling any in-flight one, and
// waits for the result.
func (o *EntryObserver) Refetch(ctx context.Context) (any, error) {
	o.mu.Lock()
	e := o.entry
	meta := o.opts.Meta
	o.mu.Unlock()
	if e == nil {
		return nil, nil
	}
	return e.Fetch(ctx, entry.FetchOptions{Meta: meta, CancelRefetch: true})
}

// --- entry.Observer interface ---

func (o *EntryObserver) Enabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.opts.Disabled
}

func (o *EntryObserver) QueryFn() entry.FetchFunc {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opts.QueryFn
}

func (o *EntryObserver) ShouldRefetchOnFocus() bool {
	return o.shouldFetchOnField(o.fieldMode(func(opts Options) RefetchMode { return opts.RefetchOnFocus }))
}

func (o *EntryObserver) ShouldRefetchOnReconnect() bool {
	return o.shouldFetchOnField(o.fieldMode(func(opts Options) RefetchMode { return opts.RefetchOnReconnect }))
}

func (o *EntryObserver) fieldMode(pick func(Options) RefetchMode) RefetchMode {
	o.mu.Lock()
	defer o.mu.Unlock()
	return pick(o.opts)
}

func (o *EntryObserver) shouldFetchOnField(mode RefetchMode) bool {
	o.mu.Lock()
	disabled := o.opts.Disabled
	e := o.entry
	staleTime := o.opts.StaleTime
	o.mu.Unlock()
	if disabled || e == nil {
		return false
	}
	switch mode {
	case RefetchAlways:
		return true
	case RefetchIfStale:
		return e.IsStaleByTime(staleTime)
	default:
		return false
	}
}

func (o *EntryObserver) shouldFetchOnMount(st entry.State) bool {
	o.mu.Lock()
	disabled := o.opts.Disabled
	noRetryOnMount := o.opts.NoRetryOnMount
	mountMode := o.opts.RefetchOnMount
	staleTime := o.opts.StaleTime
	o.mu.Unlock()
	if disabled {
		return false
	}
	if st.DataUpdatedAt == 0 {
		if st.Status == entry.StatusError && noRetryOnMount {
			return false
		}
		return true
	}
	return o.shouldFetchOnFieldWithStale(mountMode, staleTime, st)
}

func (o *EntryObserver) shouldFetchOnFieldWithStale(mode RefetchMode, staleTime time.Duration, st entry.State) bool {
	switch mode {
	case RefetchAlways:
		return true
	case RefetchIfStale:
		if st.IsInvalidated || st.DataUpdatedAt == 0 {
			return true
		}
		if staleTime < 0 {
			return false
		}
		return time.Now().UnixMilli() >= st.DataUpdatedAt+staleTime.Milliseconds()
	default:
		return false
	}
}

// OnEntryUpdate re-derives the result and, if it changed, dispatches
// hooks and notifies listeners.
func (o *EntryObserver) OnEntryUpdate(action string) {
	manual := action == "setState"
	o.recompute(action, manual)
	o.rearmStaleTimer()
	if action == "success" {
		o.armRefetchTimer()
	}
}

func (o *EntryObserver) recompute(action string, manual bool) {
	o.mu.Lock()
	e := o.entry
	if e == nil {
		o.mu.Unlock()
		return
	}
	st := e.State()
	prevResult := o.current
	next := o.deriveLocked(st)
	changed := !shallowEqual(prevResult, next)
	if changed {
		o.current = next
		if next.Status == entry.StatusSuccess {
			cp := next
			o.previous = &cp
		}
	}
	opts := o.opts
	ls := make([]Listener, 0, len(o.listeners))
	for _, l := range o.listeners {
		ls = append(ls, l)
	}
	o.mu.Unlock()

	if !changed {
		return
	}

	if !manual && st.Status == entry.StatusSuccess && action == "success" && opts.OnSuccess != nil {
		opts.OnSuccess(next.Data)
	}
	if action == "error" && opts.OnError != nil {
		opts.OnError(next.Error)
	}
	if action == "success" || action == "error" {
		if opts.OnSettled != nil {
			opts.OnSettled(next.Data, next.Error)
		}
	}

	if len(gatedProps(opts)) == 0 || anyPropChanged(prevResult, next, gatedProps(opts)) {
		for _, l := range ls {
			l := l
			l(next)
		}
	}
}

func gatedProps(opts Options) []string {
	props := opts.NotifyOnChangeProps
	if opts.UseErrorBoundary && len(props) > 0 {
		for _, p := range props {
			if p == "error" {
				return props
			}
		}
		return append(append([]string{}, props...), "error")
	}
	return props
}
