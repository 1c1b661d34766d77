package observer

import (
	"sync"

	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/key"
)

// EntrySpec pairs a cache key with the Options a MultiEntryObserver child
// should use for it.
type EntrySpec struct {
	Key     key.Key
	Options Options
}

// MultiEntryObserver maintains an ordered list of child EntryObservers
// across option-list changes, reusing children by key hash (and, for
// keepPreviousData requests, by slot) instead of rebuilding the whole list.
type MultiEntryObserver struct {
	mu       sync.Mutex
	cache    *entry.Cache
	children []*EntryObserver
	results  []Result
	subs     map[*EntryObserver]func()

	listeners map[int]func([]Result)
	nextID    int
}

// NewMulti builds an empty MultiEntryObserver bound to cache.
func NewMulti(cache *entry.Cache) *MultiEntryObserver {
	return &MultiEntryObserver{
		cache:     cache,
		subs:      make(map[*EntryObserver]func()),
		listeners: make(map[int]func([]Result)),
	}
}

// Subscribe registers fn for whole-array result changes.
func (m *MultiEntryObserver) Subscribe(fn func([]Result)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Results returns a snapshot of the current per-child result array, in the
// same order as the last SetEntries call.
func (m *MultiEntryObserver) Results() []Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Result, len(m.results))
	copy(out, m.results)
	return out
}

// Children returns the current child observers, in order. Exposed for
// callers that need per-child affordances (Refetch, SetOptions).
func (m *MultiEntryObserver) Children() []*EntryObserver {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*EntryObserver, len(m.children))
	copy(out, m.children)
	return out
}

// SetEntries reconciles the child list against specs: greedy-reuse by
// hash, then keepPreviousData slot-adoption for anything left unmatched,
// then build fresh observers for the rest.
func (m *MultiEntryObserver) SetEntries(specs []EntrySpec) {
	m.mu.Lock()
	oldChildren := append([]*EntryObserver{}, m.children...)
	m.mu.Unlock()

	matchedOld := make([]bool, len(oldChildren))
	newAssigned := make([]*EntryObserver, len(specs))
	matchedNew := make([]bool, len(specs))

	for i, spec := range specs {
		h := key.MustHash(spec.Key)
		for j, c := range oldChildren {
			if matchedOld[j] {
				continue
			}
			if c.hash == h {
				matchedOld[j] = true
				matchedNew[i] = true
				newAssigned[i] = c
				c.SetOptions(spec.Options)
				break
			}
		}
	}

	var unmatchedNewIdx []int
	for i, ok := range matchedNew {
		if !ok {
			unmatchedNewIdx = append(unmatchedNewIdx, i)
		}
	}
	var unmatchedOld []*EntryObserver
	for j, ok := range matchedOld {
		if !ok {
			unmatchedOld = append(unmatchedOld, oldChildren[j])
		}
	}

	cursor := 0
	for _, i := range unmatchedNewIdx {
		spec := specs[i]
		if spec.Options.KeepPreviousData && cursor < len(unmatchedOld) {
			reused := unmatchedOld[cursor]
			cursor++
			reused.SetKey(spec.Key, spec.Options)
			newAssigned[i] = reused
			continue
		}
		newAssigned[i] = New(m.cache, spec.Key, spec.Options)
	}
	toDestroy := unmatchedOld[cursor:]

	same := len(newAssigned) == len(oldChildren)
	if same {
		for i := range newAssigned {
			if newAssigned[i] != oldChildren[i] {
				same = false
				break
			}
		}
	}
	if same {
		return
	}

	newResults := make([]Result, len(newAssigned))
	for i, c := range newAssigned {
		newResults[i] = c.GetCurrentResult()
	}

	m.mu.Lock()
	m.children = newAssigned
	m.results = newResults
	m.mu.Unlock()

	for _, c := range toDestroy {
		m.unsubscribeChild(c)
	}
	for _, c := range newAssigned {
		m.subscribeChild(c)
	}
	m.notifyAll()
}

// Destroy tears down every child observer, unsubscribing this Multi from
// all of them.
func (m *MultiEntryObserver) Destroy() {
	m.mu.Lock()
	children := append([]*EntryObserver{}, m.children...)
	m.children = nil
	m.results = nil
	m.mu.Unlock()
	for _, c := range children {
		m.unsubscribeChild(c)
	}
}

func (m *MultiEntryObserver) indexOf(c *EntryObserver) int {
	for i, x := range m.children {
		if x == c {
			return i
		}
	}
	return -1
}

func (m *MultiEntryObserver) subscribeChild(c *EntryObserver) {
	m.mu.Lock()
	if _, ok := m.subs[c]; ok {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	unsub := c.Subscribe(func(r Result) {
		m.mu.Lock()
		idx := m.indexOf(c)
		if idx >= 0 {
			m.results[idx] = r
		}
		snapshot := make([]Result, len(m.results))
		copy(snapshot, m.results)
		ls := make([]func([]Result), 0, len(m.listeners))
		for _, l := range m.listeners {
			ls = append(ls, l)
		}
		m.mu.Unlock()
		if idx < 0 {
			return
		}
		for _, l := range ls {
			l(snapshot)
		}
	})

	m.mu.Lock()
	m.subs[c] = unsub
	m.mu.Unlock()
}

func (m *MultiEntryObserver) unsubscribeChild(c *EntryObserver) {
	m.mu.Lock()
	unsub, ok := m.subs[c]
	delete(m.subs, c)
	m.mu.Unlock()
	if ok {
		unsub()
	}
}

func (m *MultiEntryObserver) notifyAll() {
	m.mu.Lock()
	snapshot := make([]Result, len(m.results))
	copy(snapshot, m.results)
	ls := make([]func([]Result), 0, len(m.listeners))
	for _, l := range m.listeners {
		ls = append(ls, l)
	}
	m.mu.Unlock()
	for _, l := range ls {
		l(snapshot)
	}
}
