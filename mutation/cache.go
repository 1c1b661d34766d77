package mutation

import (
	"context"
	"errors"
	"sync"

	"github.com/asyncache/asyncache/notify"
)

// Event is delivered to Cache listeners on every Mutation state change.
type Event struct {
	Mutation *Mutation
	State    State
}

// EventListener receives Cache-wide mutation events.
type EventListener func(Event)

// Cache tracks every Mutation built through it, in insertion order, and
// resumes paused ones strictly FIFO.
type Cache struct {
	mu        sync.Mutex
	mutations []*Mutation
	listeners []EventListener
	hooks     Hooks

	notify *notify.Manager
}

// NewCache builds an empty MutationCache. hooks, if non-zero, run
// alongside every Mutation's own hooks as cache-level side effects.
func NewCache(nm *notify.Manager, hooks Hooks) *Cache {
	return &Cache{notify: nm, hooks: hooks}
}

// Build creates and registers a new Mutation. Unlike entry.Cache.Build,
// mutations are never deduplicated by key — each call to mutate is its own
// one-shot write.
func (c *Cache) Build(opts Options) *Mutation {
	m := newMutation(opts, c.notify, c)
	c.mu.Lock()
	c.mutations = append(c.mutations, m)
	c.mu.Unlock()
	return m
}

// BuildPaused registers a Mutation directly into the paused state,
// without running it — used by hydrate.Hydrate to restore a snapshot
// so a later ResumePaused picks it up.
func (c *Cache) BuildPaused(opts Options, state State) *Mutation {
	state.Status = StatusLoading
	state.IsPaused = true
	m := newMutation(opts, c.notify, c)
	m.state = state
	c.mu.Lock()
	c.mutations = append(c.mutations, m)
	c.mu.Unlock()
	return m
}

// All returns every mutation ever built, in insertion order.
func (c *Cache) All() []*Mutation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Mutation, len(c.mutations))
	copy(out, c.mutations)
	return out
}

// AddListener registers l for every mutation's state changes.
func (c *Cache) AddListener(l EventListener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

func (c *Cache) emitUpdated(m *Mutation) {
	c.mu.Lock()
	ls := make([]EventListener, len(c.listeners))
	copy(ls, c.listeners)
	c.mu.Unlock()
	ev := Event{Mutation: m, State: m.State()}
	for _, l := range ls {
		l := l
		c.notify.Schedule(func() { l(ev) })
	}
}

// ResumePaused resumes every currently-paused mutation in the order it was
// built, sequentially — each must settle before the next one resumes.
//
// This deliberately does not use an errgroup.WithContext-derived context to
// run the resumes: that context is cancelled the instant any one mutation's
// Fn returns an error, and a cancelled ctx passed into a sibling's Execute
// would make it settle as cancelled without ever calling its own Fn. Each
// paused mutation must independently reach its own outcome regardless of
// how the ones ahead of it in the queue settled, so resumes share ctx
// itself — never a derived, error-triggered one — and errors are collected
// rather than used for cancellation.
func (c *Cache) ResumePaused(ctx context.Context) error {
	c.mu.Lock()
	var paused []*Mutation
	for _, m := range c.mutations {
		if m.State().IsPaused {
			paused = append(paused, m)
		}
	}
	c.mu.Unlock()

	var errs []error
	for _, m := range paused {
		if _, err := m.resume(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IsMutating reports whether any tracked mutation is currently loading.
func (c *Cache) IsMutating() bool {
	c.mu.Lock()
	ms := make([]*Mutation, len(c.mutations))
	copy(ms, c.mutations)
	c.mu.Unlock()
	for _, m := range ms {
		if m.State().Status == StatusLoading {
			return true
		}
	}
	return false
}

// Clear drops every tracked mutation. Pending/paused ones are not
// cancelled — callers that care should have already settled or abandoned
// them (Mutations don't carry a cancellation hook of their own; the
// underlying context governs that).
func (c *Cache) Clear() {
	c.mu.Lock()
	c.mutations = nil
	c.mu.Unlock()
}
