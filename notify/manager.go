package notify

import "sync"

// Manager batches and defers listener callbacks.
//
// Outside a Batch scope, Schedule hands a callback to a single worker
// goroutine that drains a FIFO queue — the closest idiomatic analogue of
// "deferred to a microtask" Go has, since there is no cooperative event
// loop to piggyback on. Inside a Batch scope, scheduled callbacks are
// collected and flushed together once the outermost Batch call returns.
// Callbacks always flush in enqueue order; a callback that itself calls
// Schedule is safe — the new callback simply runs after the current one.
type Manager struct {
	mu            sync.Mutex
	cond          *sync.Cond
	batchDepth    int
	collected     []func()
	pending       []func()
	notifyFn      func(fn func())
	batchNotifyFn func(flush func())
	closed        bool
	closeOnce     sync.Once
}

// New creates a Manager with identity notify/batch dispatchers and starts
// its worker goroutine.
func New() *Manager {
	m := &Manager{
		notifyFn:      func(fn func()) { fn() },
		batchNotifyFn: func(flush func()) { flush() },
	}
	m.cond = sync.NewCond(&m.mu)
	go m.worker()
	return m
}

// SetNotifyFn replaces the per-callback dispatcher. The embedding can wrap
// it in a UI framework's batched-update primitive.
func (m *Manager) SetNotifyFn(fn func(cb func())) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn == nil {
		fn = func(cb func()) { cb() }
	}
	m.notifyFn = fn
}

// SetBatchNotifyFn replaces the dispatcher used to wrap a batch flush.
func (m *Manager) SetBatchNotifyFn(fn func(flush func())) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn == nil {
		fn = func(flush func()) { flush() }
	}
	m.batchNotifyFn = fn
}

// Batch runs fn with the batch counter incremented. Any Schedule call made
// during fn (directly or transitively) is queued; when the outermost Batch
// call returns, the queue is flushed through batchNotifyFn to the worker.
func (m *Manager) Batch(fn func()) {
	m.mu.Lock()
	m.batchDepth++
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.batchDepth--
		var flushed []func()
		if m.batchDepth == 0 && len(m.collected) > 0 {
			flushed = m.collected
			m.collected = nil
		}
		bnf := m.batchNotifyFn
		m.mu.Unlock()

		if flushed != nil {
			bnf(func() {
				for _, cb := range flushed {
					m.enqueue(cb)
				}
			})
		}
	}()

	fn()
}

// Schedule defers fn for asynchronous delivery: queued if called within a
// Batch scope, otherwise handed directly to the async worker.
func (m *Manager) Schedule(fn func()) {
	m.mu.Lock()
	if m.batchDepth > 0 {
		m.collected = append(m.collected, fn)
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.enqueue(fn)
}

func (m *Manager) enqueue(fn func()) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.pending = append(m.pending, fn)
	m.mu.Unlock()
	m.cond.Signal()
}

func (m *Manager) worker() {
	for {
		m.mu.Lock()
		for len(m.pending) == 0 && !m.closed {
			m.cond.Wait()
		}
		if len(m.pending) == 0 && m.closed {
			m.mu.Unlock()
			return
		}
		fn := m.pending[0]
		m.pending = m.pending[1:]
		notifyFn := m.notifyFn
		m.mu.Unlock()

		notifyFn(fn)
	}
}

// Close stops the worker goroutine after draining any already-enqueued
// callbacks. Safe to call multiple times.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()
		m.cond.Broadcast()
	})
}

// Flush blocks until every callback scheduled before this call returns has
// been delivered. Used by tests and by callers that need a synchronization
// point after a batch of state changes.
func (m *Manager) Flush() {
	var wg sync.WaitGroup
	wg.Add(1)
	m.enqueue(func() { wg.Done() })
	wg.Wait()
}
