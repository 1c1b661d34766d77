package mutation

import (
	"context"
	"errors"
	"sync"

	"github.com/asyncache/asyncache/notify"
	"github.com/asyncache/asyncache/retry"
)

// Status is a Mutation's coarse lifecycle stage.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// State is the reducer-owned value of a Mutation.
type State struct {
	Status        Status
	Variables     any
	Context       any
	Data          any
	Err           error
	FailureCount  int
	FailureReason error
	IsPaused      bool
}

// Fn performs the mutation's single write attempt.
type Fn func(ctx context.Context, variables any) (any, error)

// Hooks are lifecycle callbacks. Any subset may be nil.
type Hooks struct {
	OnMutate  func(variables any) (mutationContext any, err error)
	OnSuccess func(data, variables, mutationContext any)
	OnError   func(err error, variables, mutationContext any)
	OnSettled func(data any, err error, variables, mutationContext any)
}

// Options configures one Mutation.
type Options struct {
	MutationKey any
	Fn          Fn
	Retry       retry.Policy
	Online      func() bool
	Hooks       Hooks
}

// ErrNoMutationFn is returned when Options.Fn is nil.
var ErrNoMutationFn = errors.New("mutation: no mutation function registered")

// Listener receives a Mutation's state after every transition.
type Listener func(State)

// Mutation is a single write's lifecycle: idle -> loading ->
// (success|error), possibly pausing (isPaused=true, status=loading) while
// offline before resuming.
type Mutation struct {
	mu      sync.Mutex
	opts    Options
	state   State
	retryer *retry.Retryer[any]

	listeners map[int]Listener
	nextID    int

	notify *notify.Manager
	cache  *Cache
}

func newMutation(opts Options, nm *notify.Manager, c *Cache) *Mutation {
	return &Mutation{
		opts:      opts,
		listeners: make(map[int]Listener),
		notify:    nm,
		cache:     c,
	}
}

// State returns a snapshot of the current state.
func (m *Mutation) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// MutationKey returns the key this mutation was built with, if any.
func (m *Mutation) MutationKey() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts.MutationKey
}

// Subscribe registers fn for state transitions and returns an unsubscribe
// func.
func (m *Mutation) Subscribe(fn Listener) (unsubscribe func()) {
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

func (m *Mutation) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()

	m.mu.Lock()
	ls := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		ls = append(ls, l)
	}
	m.mu.Unlock()
	for _, l := range ls {
		l := l
		m.notify.Schedule(func() { l(s) })
	}
	if m.cache != nil {
		m.cache.emitUpdated(m)
	}
}

// Execute runs the mutation's lifecycle to completion: dispatch loading,
// call onMutate, run the retryer-wrapped Fn,
// dispatch success or error, call the matching hooks, always call
// onSettled. It blocks the caller until the mutation settles — including
// through any pause, which Cache.ResumePaused later lifts by waking the
// same retryer.
func (m *Mutation) Execute(ctx context.Context, variables any) (any, error) {
	if m.opts.Fn == nil {
		m.dispatchError(ErrNoMutationFn, variables, nil)
		return nil, ErrNoMutationFn
	}

	m.setState(State{Status: StatusLoading, Variables: variables})

	var mutationCtx any
	if m.opts.Hooks.OnMutate != nil {
		ctxVal, err := m.opts.Hooks.OnMutate(variables)
		if err != nil {
			m.dispatchError(err, variables, ctxVal)
			return nil, err
		}
		mutationCtx = ctxVal
	}
	if m.cache != nil && m.cache.hooks.OnMutate != nil {
		m.cache.hooks.OnMutate(variables)
	}

	online := m.opts.Online
	if online == nil {
		online = func() bool { return true }
	}

	r := retry.New(retry.Config[any]{
		Fn:     func(ctx context.Context) (any, error) { return m.opts.Fn(ctx, variables) },
		Policy: m.opts.Retry,
		Online: online,
		OnFail: func(n int, err error) {
			m.mu.Lock()
			s := m.state
			s.FailureCount = n
			s.FailureReason = err
			m.state = s
			m.mu.Unlock()
		},
		OnPause: func() {
			m.mu.Lock()
			m.state.IsPaused = true
			m.mu.Unlock()
		},
		OnContinue: func() {
			m.mu.Lock()
			m.state.IsPaused = false
			m.mu.Unlock()
		},
	})

	m.mu.Lock()
	m.retryer = r
	m.mu.Unlock()

	r.Start(ctx)
	data, err := r.Wait()

	if err != nil {
		m.dispatchError(err, variables, mutationCtx)
		return nil, err
	}
	m.dispatchSuccess(data, variables, mutationCtx)
	return data, nil
}

func (m *Mutation) dispatchSuccess(data, variables, mutationCtx any) {
	m.setState(State{Status: StatusSuccess, Variables: variables, Context: mutationCtx, Data: data})
	if m.opts.Hooks.OnSuccess != nil {
		m.opts.Hooks.OnSuccess(data, variables, mutationCtx)
	}
	if m.cache != nil && m.cache.hooks.OnSuccess != nil {
		m.cache.hooks.OnSuccess(data, variables, mutationCtx)
	}
	if m.opts.Hooks.OnSettled != nil {
		m.opts.Hooks.OnSettled(data, nil, variables, mutationCtx)
	}
	if m.cache != nil && m.cache.hooks.OnSettled != nil {
		m.cache.hooks.OnSettled(data, nil, variables, mutationCtx)
	}
}

func (m *Mutation) dispatchError(err error, variables, mutationCtx any) {
	m.setState(State{Status: StatusError, Variables: variables, Context: mutationCtx, Err: err})
	if m.opts.Hooks.OnError != nil {
		m.opts.Hooks.OnError(err, variables, mutationCtx)
	}
	if m.cache != nil && m.cache.hooks.OnError != nil {
		m.cache.hooks.OnError(err, variables, mutationCtx)
	}
	if m.opts.Hooks.OnSettled != nil {
		m.opts.Hooks.OnSettled(nil, err, variables, mutationCtx)
	}
	if m.cache != nil && m.cache.hooks.OnSettled != nil {
		m.cache.hooks.OnSettled(nil, err, variables, mutationCtx)
	}
}

// resume wakes a paused mutation's retryer and waits for it to settle.
// Used exclusively by Cache.ResumePaused's FIFO drain. A hydrated
// mutation has no live retryer (the process that started it never ran
// this one) — resuming it means running Execute fresh with the
// variables the snapshot recorded.
func (m *Mutation) resume(ctx context.Context) (any, error) {
	m.mu.Lock()
	r := m.retryer
	vars := m.state.Variables
	m.mu.Unlock()
	if r == nil {
		return m.Execute(ctx, vars)
	}
	r.ContinueRetry()
	r.Continue()
	return r.Wait()
}
