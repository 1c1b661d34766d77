package tracker

import "sync"

// Listener is notified with the tracker's new value whenever it changes.
type Listener func(value bool)

// Setup wires a tracker to an external event source. It must call onChange
// whenever the environment's signal changes and may return a teardown func
// invoked when the source is replaced.
type Setup func(onChange func(bool)) (teardown func())

// Tracker is a generalized boolean signal with subscriber fan-out,
// grounded on the registration/fan-out shape of a provider registry
// (register once, notify many) generalized from a name-keyed map of
// factories to a single mutable value.
type Tracker struct {
	mu        sync.Mutex
	value     bool
	listeners map[int]Listener
	nextID    int
	teardown  func()
}

// New creates a Tracker with an initial value.
func New(initial bool) *Tracker {
	return &Tracker{value: initial, listeners: make(map[int]Listener)}
}

// Value reports the tracker's current boolean.
func (t *Tracker) Value() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

// Set updates the value and, if changed, fans out to every subscriber.
func (t *Tracker) Set(v bool) {
	t.mu.Lock()
	if t.value == v {
		t.mu.Unlock()
		return
	}
	t.value = v
	listeners := make([]Listener, 0, len(t.listeners))
	for _, l := range t.listeners {
		listeners = append(listeners, l)
	}
	t.mu.Unlock()

	for _, l := range listeners {
		l(v)
	}
}

// Subscribe registers fn for future changes and returns an unsubscribe
// func. Subscribing and unsubscribing do not arm or tear down the event
// source: SetEventListener arms it when installed and tears it down when
// replaced.
func (t *Tracker) Subscribe(fn Listener) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

// SetEventListener installs setup as the tracker's event source,
// tearing down any prior source first. setup is invoked immediately so
// the tracker starts observing right away.
func (t *Tracker) SetEventListener(setup Setup) {
	t.mu.Lock()
	prevTeardown := t.teardown
	t.mu.Unlock()
	if prevTeardown != nil {
		prevTeardown()
	}
	if setup == nil {
		t.mu.Lock()
		t.teardown = nil
		t.mu.Unlock()
		return
	}
	teardown := setup(t.Set)
	t.mu.Lock()
	t.teardown = teardown
	t.mu.Unlock()
}

// FocusTracker is a Tracker defaulted to true (assume focused until an
// environment event source says otherwise).
type FocusTracker struct{ *Tracker }

// NewFocusTracker builds a FocusTracker.
func NewFocusTracker() *FocusTracker { return &FocusTracker{New(true)} }

// IsFocused reports the current focus state.
func (f *FocusTracker) IsFocused() bool { return f.Value() }

// SetFocused updates the focus state manually.
func (f *FocusTracker) SetFocused(v bool) { f.Set(v) }

// OnlineTracker is a Tracker defaulted to true (assume online until an
// environment event source says otherwise).
type OnlineTracker struct{ *Tracker }

// NewOnlineTracker builds an OnlineTracker.
func NewOnlineTracker() *OnlineTracker { return &OnlineTracker{New(true)} }

// IsOnline reports the current connectivity state.
func (o *OnlineTracker) IsOnline() bool { return o.Value() }

// SetOnline updates the connectivity state manually.
func (o *OnlineTracker) SetOnline(v bool) { o.Set(v) }
