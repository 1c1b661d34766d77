// Package entry implements the per-key cache record (Entry) and its keyed
// index (EntryCache): a small reducer over fetch/success/error actions,
// wrapped around a retry.Retryer and backed by structural sharing so
// untouched subtrees of a value stay reference-stable across fetches.
package entry

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/asyncache/asyncache/key"
	"github.com/asyncache/asyncache/notify"
	"github.com/asyncache/asyncache/retry"
)

// Observer is the Entry side of the weak observer<->entry back-reference:
// Entry holds a set of Observers and asks them questions, but never owns
// their lifetime.
type Observer interface {
	OnEntryUpdate(action string)
	Enabled() bool
	ShouldRefetchOnFocus() bool
	ShouldRefetchOnReconnect() bool
	QueryFn() FetchFunc
}

// Behavior lets a caller rewrite the fetch context before an attempt runs —
// infinite-pagination observers use this to fan one logical fetch out into
// one request per stale/requested page.
type Behavior interface {
	OnFetch(fc *FetchContext)
}

// Options configures one Entry's fetch/cache behavior.
type Options struct {
	QueryFn     FetchFunc
	CacheTime   time.Duration
	Retry       retry.Policy
	Sharing     SharingOptions
	Behavior    Behavior
}

// FetchContext is the mutable record passed to Behavior.OnFetch and used to
// resolve the actual FetchFunc for an attempt.
type FetchContext struct {
	Key     key.Key
	Meta    any
	State   State
	Options Options
	FetchFn FetchFunc

	entry *Entry
}

// Signal returns the context bound to the in-flight attempt. Reading it
// marks abortSignalConsumed so removeObserver knows whether to cancel with
// revert (consumed) or merely cancelRetry (never observed).
func (fc *FetchContext) Signal() context.Context {
	fc.entry.mu.Lock()
	fc.entry.abortSignalConsumed = true
	ctx := fc.entry.fetchCtx
	fc.entry.mu.Unlock()
	return ctx
}

// FetchOptions tunes a single Fetch call.
type FetchOptions struct {
	Meta         any
	CancelRefetch bool
	QueryFn      FetchFunc
}

const fetchGroupKey = "fetch"

// Entry is the cached state of one request key, reducer-owned and
// single-writer: only its own methods ever mutate its State.
type Entry struct {
	mu sync.Mutex

	k       key.Key
	hash    string
	state   State
	options Options

	observers map[Observer]struct{}

	retryer             *retry.Retryer[any]
	fetchCtx            context.Context
	fetchCancel         context.CancelFunc
	abortSignalConsumed bool
	revertState         *State

	cacheTime time.Duration
	gcTimer   *time.Timer

	group singleflight.Group

	notify *notify.Manager
	cache  *Cache // owning EntryCache, for added/removed/updated events
}

func newEntry(k key.Key, hash string, opts Options, nm *notify.Manager, c *Cache) *Entry {
	cacheTime := opts.CacheTime
	if cacheTime <= 0 {
		cacheTime = 5 * time.Minute
	}
	return &Entry{
		k:         k,
		hash:      hash,
		options:   opts,
		observers: make(map[Observer]struct{}),
		cacheTime: cacheTime,
		notify:    nm,
		cache:     c,
	}
}

// Key returns the entry's cache key.
func (e *Entry) Key() key.Key { return e.k }

// Hash returns the entry's precomputed key hash.
func (e *Entry) Hash() string { return e.hash }

// State returns a snapshot of the current reducer state.
func (e *Entry) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Options returns the entry's current options.
func (e *Entry) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.options
}

// SetOptions replaces the entry's options, e.g. when a later observer's
// options should take over query-fn resolution.
func (e *Entry) SetOptions(opts Options) {
	e.mu.Lock()
	e.options = opts
	e.mu.Unlock()
}

func nowMillis() int64 { return time.Now().UnixMilli() }

// --- reducer actions ---

func (e *Entry) dispatchFetch(meta any, canFetch bool) {
	e.mu.Lock()
	e.state.FetchFailureCount = 0
	e.state.FetchMeta = meta
	if canFetch {
		e.state.FetchStatus = FetchFetching
	} else {
		e.state.FetchStatus = FetchPaused
	}
	if e.state.DataUpdatedAt == 0 {
		e.state.Status = StatusLoading
		e.state.Err = nil
	}
	e.mu.Unlock()
	e.onUpdate("fetch")
}

func (e *Entry) dispatchFailed(n int, err error) {
	e.mu.Lock()
	e.state.FetchFailureCount = n
	e.state.FetchFailureReason = err
	e.mu.Unlock()
	e.onUpdate("failed")
}

func (e *Entry) dispatchPause() {
	e.mu.Lock()
	e.state.FetchStatus = FetchPaused
	e.mu.Unlock()
	e.onUpdate("pause")
}

func (e *Entry) dispatchContinue() {
	e.mu.Lock()
	e.state.FetchStatus = FetchFetching
	e.mu.Unlock()
	e.onUpdate("continue")
}

// dispatchSuccess applies structural sharing and the success transition.
// manual=true (explicit SetData) leaves fetchStatus untouched.
func (e *Entry) dispatchSuccess(data any, at int64, manual bool) {
	e.mu.Lock()
	shared := ReplaceData(e.state.Data, data, e.options.Sharing)
	e.state.Data = shared
	e.state.DataUpdateCount++
	if at == 0 {
		at = nowMillis()
	}
	e.state.DataUpdatedAt = at
	e.state.Err = nil
	e.state.IsInvalidated = false
	e.state.Status = StatusSuccess
	if !manual {
		e.state.FetchStatus = FetchIdle
		e.state.FetchFailureCount = 0
		e.state.FetchFailureReason = nil
	}
	e.mu.Unlock()
	e.onUpdate("success")
}

// dispatchError applies the error transition, honoring revert-on-cancel and
// dropping cancelled+silent errors.
func (e *Entry) dispatchError(err error) {
	if ce, ok := retry.AsCancelled(err); ok && ce.Revert {
		e.mu.Lock()
		if e.revertState != nil {
			e.state = *e.revertState
			e.revertState = nil
			e.mu.Unlock()
			e.onUpdate("error")
			return
		}
		e.mu.Unlock()
	}
	if ce, ok := retry.AsCancelled(err); ok && ce.Silent {
		return
	}
	e.mu.Lock()
	e.state.Err = err
	e.state.ErrorUpdateCount++
	e.state.ErrorUpdatedAt = nowMillis()
	e.state.FetchFailureCount++
	e.state.FetchFailureReason = err
	e.state.FetchStatus = FetchIdle
	e.state.Status = StatusError
	e.mu.Unlock()
	e.onUpdate("error")
}

func (e *Entry) dispatchInvalidate() {
	e.mu.Lock()
	already := e.state.IsInvalidated
	e.state.IsInvalidated = true
	e.mu.Unlock()
	if !already {
		e.onUpdate("invalidate")
	}
}

// SetState applies an explicit external patch (hydration's setState
// action). Unlike the other actions, the caller supplies the whole value.
func (e *Entry) SetState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	e.onUpdate("setState")
}

func (e *Entry) onUpdate(action string) {
	if e.cache != nil {
		e.cache.emitUpdated(e, action)
	}
	e.mu.Lock()
	obs := make([]Observer, 0, len(e.observers))
	for o := range e.observers {
		obs = append(obs, o)
	}
	e.mu.Unlock()
	for _, o := range obs {
		o := o
		e.notify.Schedule(func() { o.OnEntryUpdate(action) })
	}
}

// --- fetch lifecycle ---

// Fetch runs (or joins an in-flight run of) this entry's fetch function.
// Two concurrent Fetch calls share the same execution unless cancelRefetch
// is requested while data already exists, in which case the first is
// silently cancelled and a fresh attempt starts.
func (e *Entry) Fetch(ctx context.Context, opts FetchOptions) (any, error) {
	e.mu.Lock()
	fetching := e.state.FetchStatus != FetchIdle
	hasData := e.state.DataUpdatedAt > 0
	e.mu.Unlock()

	if fetching {
		if hasData && opts.CancelRefetch {
			e.Cancel(retry.CancelOptions{Silent: true})
			// Join and discard the now-cancelling in-flight call so the
			// next Do below genuinely starts a fresh attempt.
			e.group.Do(fetchGroupKey, func() (any, error) { return e.runFetch(ctx, opts) })
		} else if r := e.retryerRef(); r != nil {
			r.ContinueRetry()
		}
	}

	v, err, _ := e.group.Do(fetchGroupKey, func() (any, error) { return e.runFetch(ctx, opts) })
	return v, err
}

func (e *Entry) retryerRef() *retry.Retryer[any] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.retryer
}

func (e *Entry) resolveQueryFn(override FetchFunc) FetchFunc {
	if override != nil {
		return override
	}
	e.mu.Lock()
	fn := e.options.QueryFn
	e.mu.Unlock()
	if fn != nil {
		return fn
	}
	e.mu.Lock()
	for o := range e.observers {
		if qfn := o.QueryFn(); qfn != nil {
			e.mu.Unlock()
			return qfn
		}
	}
	e.mu.Unlock()
	return nil
}

func (e *Entry) runFetch(ctx context.Context, opts FetchOptions) (any, error) {
	fn := e.resolveQueryFn(opts.QueryFn)
	if fn == nil {
		e.dispatchError(ErrMissingFetcher)
		return nil, ErrMissingFetcher
	}

	fetchCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	e.fetchCtx = fetchCtx
	e.fetchCancel = cancel
	e.abortSignalConsumed = false
	snapshot := e.state
	e.revertState = &snapshot
	options := e.options
	e.mu.Unlock()

	fc := &FetchContext{Key: e.k, Meta: opts.Meta, State: snapshot, Options: options, FetchFn: fn, entry: e}
	if options.Behavior != nil {
		options.Behavior.OnFetch(fc)
	}

	policy := options.Retry
	online := func() bool { return true }
	if e.cache != nil && e.cache.online != nil {
		online = e.cache.online
	}

	r := retry.New(retry.Config[any]{
		Fn:    fc.FetchFn,
		Abort: cancel,
		Policy: policy,
		Online: online,
		OnFail: func(n int, err error) { e.dispatchFailed(n, err) },
		OnPause: func() { e.dispatchPause() },
		OnContinue: func() { e.dispatchContinue() },
	})

	e.mu.Lock()
	e.retryer = r
	e.mu.Unlock()

	canFetch := policy.NetworkMode == retry.NetworkOfflineFirst || policy.CanFetch(online())
	e.dispatchFetch(opts.Meta, canFetch)

	r.Start(fetchCtx)
	value, err := r.Wait()
	cancel()

	if err != nil {
		e.dispatchError(err)
		e.scheduleGC()
		return nil, err
	}
	if value == nil {
		e.dispatchError(ErrUndefinedResult)
		e.scheduleGC()
		return nil, ErrUndefinedResult
	}
	e.dispatchSuccess(value, 0, false)
	e.scheduleGC()
	return value, nil
}

// SetData applies value directly, bypassing the Retryer. manual=true
// leaves fetchStatus untouched.
func (e *Entry) SetData(value any, updatedAt int64, manual bool) {
	e.dispatchSuccess(value, updatedAt, manual)
}

// Invalidate marks the entry stale (idempotent).
func (e *Entry) Invalidate() { e.dispatchInvalidate() }

// Cancel forwards to the active retryer, if any. Once it settles the state
// reflects either the reverted snapshot (revert, if one exists) or a
// cancelled-error record (unless silent).
func (e *Entry) Cancel(opts retry.CancelOptions) {
	r := e.retryerRef()
	if r == nil {
		return
	}
	r.Cancel(opts)
}

// --- observer registration ---

// AddObserver registers o, clearing any pending GC.
func (e *Entry) AddObserver(o Observer) {
	e.mu.Lock()
	e.observers[o] = struct{}{}
	e.clearGCLocked()
	e.mu.Unlock()
	e.onUpdate("observerAdded")
}

// RemoveObserver unregisters o. If it was the last observer and a fetch is
// in flight, a consumed signal is cancelled with revert; otherwise the
// retry loop is merely told to stop so the in-flight result still caches.
func (e *Entry) RemoveObserver(o Observer) {
	e.mu.Lock()
	delete(e.observers, o)
	remaining := len(e.observers)
	r := e.retryer
	consumed := e.abortSignalConsumed
	e.mu.Unlock()

	if remaining == 0 && r != nil {
		if consumed {
			r.Cancel(retry.CancelOptions{Revert: true})
		} else {
			r.CancelRetry()
		}
	}

	e.onUpdate("observerRemoved")
	if remaining == 0 {
		e.scheduleGC()
	}
}

// ObserverCount reports the number of registered observers.
func (e *Entry) ObserverCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.observers)
}

// IsActive reports whether at least one observer is enabled (EntryCache's
// `type=active` filter).
func (e *Entry) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for o := range e.observers {
		if o.Enabled() {
			return true
		}
	}
	return false
}

// --- focus/online hooks ---

// OnFocus asks each observer whether it wants a refetch-on-focus; the first
// affirmative triggers a non-cancelling refetch. Any paused retryer resumes.
func (e *Entry) OnFocus() {
	e.mu.Lock()
	obs := make([]Observer, 0, len(e.observers))
	for o := range e.observers {
		obs = append(obs, o)
	}
	r := e.retryer
	e.mu.Unlock()

	for _, o := range obs {
		if o.ShouldRefetchOnFocus() {
			go e.Fetch(context.Background(), FetchOptions{CancelRefetch: false})
			break
		}
	}
	if r != nil {
		r.Continue()
	}
}

// OnOnline is OnFocus' analogue for connectivity regained.
func (e *Entry) OnOnline() {
	e.mu.Lock()
	obs := make([]Observer, 0, len(e.observers))
	for o := range e.observers {
		obs = append(obs, o)
	}
	r := e.retryer
	e.mu.Unlock()

	for _, o := range obs {
		if o.ShouldRefetchOnReconnect() {
			go e.Fetch(context.Background(), FetchOptions{CancelRefetch: false})
			break
		}
	}
	if r != nil {
		r.Continue()
	}
}

// --- staleness ---

// IsStale reports invalidated-or-absent-or-any-observer-thinks-stale.
func (e *Entry) IsStale(observerStale func() bool) bool {
	e.mu.Lock()
	invalidated := e.state.IsInvalidated
	absent := e.state.DataUpdatedAt == 0
	e.mu.Unlock()
	if invalidated || absent {
		return true
	}
	return observerStale != nil && observerStale()
}

// IsStaleByTime reports whether the entry's data is stale given staleTime.
// staleTime<0 is treated as infinite (never stale).
func (e *Entry) IsStaleByTime(staleTime time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.IsInvalidated || e.state.DataUpdatedAt == 0 {
		return true
	}
	if staleTime < 0 {
		return false
	}
	return nowMillis() >= e.state.DataUpdatedAt+staleTime.Milliseconds()
}

// --- GC ---

func (e *Entry) clearGCLocked() {
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
}

// scheduleGC arms deletion after cacheTime if there are no observers and no
// fetch in flight; any pre-existing timer is replaced.
func (e *Entry) scheduleGC() {
	e.mu.Lock()
	if len(e.observers) > 0 || e.state.FetchStatus != FetchIdle {
		e.clearGCLocked()
		e.mu.Unlock()
		return
	}
	e.clearGCLocked()
	cacheTime := e.cacheTime
	cache := e.cache
	e.gcTimer = time.AfterFunc(cacheTime, func() {
		if cache != nil {
			cache.remove(e)
		}
	})
	e.mu.Unlock()
}

// destroy stops all timers and cancels any in-flight retryer without
// reverting. Called by EntryCache.remove/Clear.
func (e *Entry) destroy() {
	e.mu.Lock()
	e.clearGCLocked()
	r := e.retryer
	e.mu.Unlock()
	if r != nil {
		r.Cancel(retry.CancelOptions{Silent: true})
	}
}
