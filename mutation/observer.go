package mutation

import (
	"context"
	"sync"
)

// Observer projects one Mutation's state plus boolean convenience flags to
// a subscriber, and exposes Mutate/Reset the way an Entry observer exposes
// Fetch/Refetch.
type Observer struct {
	mu      sync.Mutex
	cache   *Cache
	opts    Options
	current *Mutation
	unsub   func()

	listeners map[int]Listener
	nextID    int
}

// NewObserver builds an Observer bound to cache with the given default
// options; each Mutate call builds a fresh Mutation from opts merged with
// per-call variables.
func NewObserver(cache *Cache, opts Options) *Observer {
	return &Observer{cache: cache, opts: opts, listeners: make(map[int]Listener)}
}

// Subscribe registers fn for state changes of whichever Mutation is
// current at the time of the change.
func (o *Observer) Subscribe(fn Listener) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	o.mu.Unlock()
	return func() {
		o.mu.Lock()
		delete(o.listeners, id)
		o.mu.Unlock()
	}
}

// Mutate builds a new Mutation and runs it to completion, projecting every
// state change to this Observer's subscribers as it goes.
func (o *Observer) Mutate(ctx context.Context, variables any) (any, error) {
	m := o.cache.Build(o.opts)

	o.mu.Lock()
	if o.unsub != nil {
		o.unsub()
	}
	o.current = m
	o.unsub = m.Subscribe(func(s State) { o.broadcast(s) })
	o.mu.Unlock()

	return m.Execute(ctx, variables)
}

// Reset discards the current mutation, returning the Observer to idle.
func (o *Observer) Reset() {
	o.mu.Lock()
	if o.unsub != nil {
		o.unsub()
		o.unsub = nil
	}
	o.current = nil
	o.mu.Unlock()
	o.broadcast(State{Status: StatusIdle})
}

func (o *Observer) broadcast(s State) {
	o.mu.Lock()
	ls := make([]Listener, 0, len(o.listeners))
	for _, l := range o.listeners {
		ls = append(ls, l)
	}
	o.mu.Unlock()
	for _, l := range ls {
		l(s)
	}
}

// State returns the current mutation's state, or an idle zero-state if
// none has run yet.
func (o *Observer) State() State {
	o.mu.Lock()
	m := o.current
	o.mu.Unlock()
	if m == nil {
		return State{Status: StatusIdle}
	}
	return m.State()
}

func (o *Observer) IsIdle() bool    { return o.State().Status == StatusIdle }
func (o *Observer) IsLoading() bool { return o.State().Status == StatusLoading }
func (o *Observer) IsSuccess() bool { return o.State().Status == StatusSuccess }
func (o *Observer) IsError() bool   { return o.State().Status == StatusError }
