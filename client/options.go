package client

import (
	"github.com/asyncache/asyncache/key"
	"github.com/asyncache/asyncache/observe"
	"github.com/asyncache/asyncache/resilience"
	"github.com/asyncache/asyncache/tracker"
)

// Options holds the construction-time configuration validated before a
// Client is built. It is intentionally small: most wiring happens through
// the functional Option constructors below, mirroring how observe.Config
// separates required fields from optional subsystem toggles.
type Options struct {
	// Observability, if ServiceName is non-empty, builds the Client's
	// tracer/meter/logger and installs them as its middleware.
	Observability observe.Config
}

// Validate rejects a half-specified Observability config up front instead
// of surfacing a confusing failure on the first fetch.
func (o *Options) Validate() error {
	if o.Observability.ServiceName == "" {
		return nil
	}
	return o.Observability.Validate()
}

// Option applies a functional override to a Client during New, following
// the same composable-option shape as resilience.ExecutorOption.
type Option func(*Client)

// WithExecutor installs the resilience executor wrapping every fetch and
// mutation function (circuit breaker, rate limiter, bulkhead, timeout).
func WithExecutor(e *resilience.Executor) Option {
	return func(c *Client) { c.executor = e }
}

// WithMiddleware installs observability middleware wrapping every fetch
// and mutation function with a span, metrics, and structured logging.
func WithMiddleware(m *observe.Middleware) Option {
	return func(c *Client) { c.middleware = m }
}

// WithLogger overrides the Client's logger directly, without requiring a
// full observe.Observer.
func WithLogger(l observe.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithFocusTracker replaces the Client's default FocusTracker, letting a
// caller wire SetEventListener to a real environment signal before New
// returns.
func WithFocusTracker(t *tracker.FocusTracker) Option {
	return func(c *Client) { c.focus = t }
}

// WithOnlineTracker replaces the Client's default OnlineTracker.
func WithOnlineTracker(t *tracker.OnlineTracker) Option {
	return func(c *Client) { c.online = t }
}

// WithGlobalQueryDefaults seeds the defaults applied to every query
// regardless of key.
func WithGlobalQueryDefaults(opts ...QueryOption) Option {
	return func(c *Client) { c.globalQueryDefaults = opts }
}

// WithGlobalMutationDefaults seeds the defaults applied to every mutation
// regardless of key.
func WithGlobalMutationDefaults(opts ...MutationOption) Option {
	return func(c *Client) { c.globalMutationDefaults = opts }
}

// WithQueryDefaults seeds a per-key default at construction time,
// equivalent to calling SetQueryDefaults right after New.
func WithQueryDefaults(pattern key.Key, opts ...QueryOption) Option {
	return func(c *Client) {
		c.queryDefaults = append(c.queryDefaults, queryDefault{
			pattern: pattern,
			hash:    key.MustHash(pattern),
			opts:    opts,
		})
	}
}

// WithMutationDefaults seeds a per-key mutation default at construction
// time, equivalent to calling SetMutationDefaults right after New.
func WithMutationDefaults(pattern any, opts ...MutationOption) Option {
	return func(c *Client) {
		c.mutationDefaults = append(c.mutationDefaults, mutationDefault{
			pattern: pattern,
			opts:    opts,
		})
	}
}
