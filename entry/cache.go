package entry

import (
	"sync"

	"github.com/asyncache/asyncache/key"
	"github.com/asyncache/asyncache/notify"
)

// EventKind names a Cache-level notification.
type EventKind int

const (
	EventAdded EventKind = iota
	EventRemoved
	EventUpdated
	EventObserverAdded
	EventObserverRemoved
)

// Event is delivered to Cache listeners via NotifyManager.
type Event struct {
	Kind   EventKind
	Entry  *Entry
	Action string // the reducer action name, set only for EventUpdated
}

// Listener receives Cache events.
type Listener func(Event)

// Cache is a mapping hash -> Entry plus an insertion-ordered list for
// stable iteration.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]*Entry
	order     []*Entry
	listeners []Listener

	notify *notify.Manager
	online func() bool
}

// NewCache constructs an empty EntryCache. nm is shared with the rest of
// the client so cache events and observer notifications interleave
// correctly; online reports current connectivity for the pause gate.
func NewCache(nm *notify.Manager, online func() bool) *Cache {
	if online == nil {
		online = func() bool { return true }
	}
	return &Cache{
		entries: make(map[string]*Entry),
		notify:  nm,
		online:  online,
	}
}

// Filters narrows Find/FindAll/Clear-style operations.
type Filters struct {
	Key         key.Key
	Exact       bool
	HasKey      bool
	Type        FilterType
	Stale       *bool
	FetchStatus *FetchStatus
	Predicate   func(*Entry) bool
}

type FilterType int

const (
	FilterAll FilterType = iota
	FilterActive
	FilterInactive
)

func (f Filters) matches(e *Entry) bool {
	if f.HasKey {
		if f.Exact {
			if key.MustHash(f.Key) != e.hash {
				return false
			}
		} else if !key.PartialMatch(e.k, f.Key) {
			return false
		}
	}
	switch f.Type {
	case FilterActive:
		if !e.IsActive() {
			return false
		}
	case FilterInactive:
		if e.IsActive() {
			return false
		}
	}
	if f.Stale != nil {
		if e.IsStale(nil) != *f.Stale {
			return false
		}
	}
	if f.FetchStatus != nil {
		if e.State().FetchStatus != *f.FetchStatus {
			return false
		}
	}
	if f.Predicate != nil && !f.Predicate(e) {
		return false
	}
	return true
}

// AddListener registers l for all Cache events.
func (c *Cache) AddListener(l Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

func (c *Cache) emit(ev Event) {
	c.mu.RLock()
	ls := make([]Listener, len(c.listeners))
	copy(ls, c.listeners)
	c.mu.RUnlock()
	for _, l := range ls {
		l := l
		c.notify.Schedule(func() { l(ev) })
	}
}

func (c *Cache) emitUpdated(e *Entry, action string) {
	c.emit(Event{Kind: EventUpdated, Entry: e, Action: action})
}

// Build returns the existing entry for (k, opts) or creates one.
// hash is computed from k when the hash argument is empty.
func (c *Cache) Build(k key.Key, hash string, opts Options) *Entry {
	if hash == "" {
		hash = key.MustHash(k)
	}

	c.mu.Lock()
	if e, ok := c.entries[hash]; ok {
		c.mu.Unlock()
		return e
	}
	e := newEntry(k, hash, opts, c.notify, c)
	c.entries[hash] = e
	c.order = append(c.order, e)
	c.mu.Unlock()

	c.emit(Event{Kind: EventAdded, Entry: e})
	return e
}

// Get looks up an entry by precomputed hash.
func (c *Cache) Get(hash string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[hash]
	return e, ok
}

// Find returns the first entry matching filters, if any.
func (c *Cache) Find(filters Filters) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.order {
		if filters.matches(e) {
			return e, true
		}
	}
	return nil, false
}

// FindAll returns every entry matching filters, in insertion order.
func (c *Cache) FindAll(filters Filters) []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Entry, 0, len(c.order))
	for _, e := range c.order {
		if filters.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Remove destroys and deletes e from the cache.
func (c *Cache) Remove(e *Entry) { c.remove(e) }

func (c *Cache) remove(e *Entry) {
	c.mu.Lock()
	if _, ok := c.entries[e.hash]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.entries, e.hash)
	for i, oe := range c.order {
		if oe == e {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	e.destroy()
	c.emit(Event{Kind: EventRemoved, Entry: e})
}

// Clear destroys and removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	all := make([]*Entry, len(c.order))
	copy(all, c.order)
	c.entries = make(map[string]*Entry)
	c.order = nil
	c.mu.Unlock()

	for _, e := range all {
		e.destroy()
		c.emit(Event{Kind: EventRemoved, Entry: e})
	}
}

// OnFocus fans out to every entry's OnFocus hook.
func (c *Cache) OnFocus() {
	for _, e := range c.snapshot() {
		e.OnFocus()
	}
}

// OnOnline is OnFocus' connectivity analogue.
func (c *Cache) OnOnline() {
	for _, e := range c.snapshot() {
		e.OnOnline()
	}
}

func (c *Cache) snapshot() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Entry, len(c.order))
	copy(out, c.order)
	return out
}

// Online reports the connectivity function the cache was built with — used
// by newly-built entries to gate their first fetch.
func (c *Cache) Online() bool { return c.online() }
