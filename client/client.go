package client

import (
	"context"
	"sync"

	"github.com/asyncache/asyncache/diagnostics"
	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/mutation"
	"github.com/asyncache/asyncache/notify"
	"github.com/asyncache/asyncache/observe"
	"github.com/asyncache/asyncache/resilience"
	"github.com/asyncache/asyncache/tracker"
)

// Client binds the entry cache, mutation cache, notification manager,
// focus/online trackers, and the observability/resilience layers into the
// single object an application holds for its lifetime.
type Client struct {
	entryCache    *entry.Cache
	mutationCache *mutation.Cache
	notify        *notify.Manager
	focus         *tracker.FocusTracker
	online        *tracker.OnlineTracker

	executor   *resilience.Executor
	middleware *observe.Middleware
	log        observe.Logger
	diag       *diagnostics.Aggregator

	mu                     sync.Mutex
	globalQueryDefaults    []QueryOption
	queryDefaults          []queryDefault
	globalMutationDefaults []MutationOption
	mutationDefaults       []mutationDefault

	mountMu     sync.Mutex
	mountCount  int
	unsubFocus  func()
	unsubOnline func()
}

// New builds a Client from opts plus any functional overrides.
func New(opts Options, options ...Option) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		notify: notify.New(),
		focus:  tracker.NewFocusTracker(),
		online: tracker.NewOnlineTracker(),
		log:    noopLogger{},
	}
	c.entryCache = entry.NewCache(c.notify, func() bool { return c.online.IsOnline() })
	c.mutationCache = mutation.NewCache(c.notify, mutation.Hooks{})

	for _, o := range options {
		o(c)
	}

	if c.middleware == nil && opts.Observability.ServiceName != "" {
		obs, err := observe.NewObserver(context.Background(), opts.Observability)
		if err != nil {
			return nil, err
		}
		mw, err := observe.MiddlewareFromObserver(obs)
		if err != nil {
			return nil, err
		}
		c.middleware = mw
		c.log = obs.Logger()
	}

	if c.diag == nil {
		agg := diagnostics.NewAggregator()
		agg.Register("entry_cache", diagnostics.NewEntryCacheChecker(c.entryCache, diagnostics.EntryCacheCheckerConfig{}))
		agg.Register("mutation_cache", diagnostics.NewMutationCacheChecker(c.mutationCache))
		if c.executor != nil {
			if cb := c.executor.CircuitBreaker(); cb != nil {
				agg.Register("circuit_breaker", diagnostics.NewCircuitBreakerChecker("executor", cb))
			}
			if bh := c.executor.Bulkhead(); bh != nil {
				agg.Register("bulkhead", diagnostics.NewBulkheadChecker("executor", bh, 0, 0))
			}
		}
		c.diag = agg
	}

	return c, nil
}

// logger returns the configured logger, or a noop if none was set.
func (c *Client) logger() observe.Logger {
	if c.log == nil {
		return noopLogger{}
	}
	return c.log
}

// Logger exposes the Client's configured logger.
func (c *Client) Logger() observe.Logger { return c.logger() }

// Cache exposes the underlying entry cache for callers that need direct
// access (e.g. custom filters not covered by the facade).
func (c *Client) Cache() *entry.Cache { return c.entryCache }

// MutationCache exposes the underlying mutation cache.
func (c *Client) MutationCache() *mutation.Cache { return c.mutationCache }

// FocusTracker exposes the focus signal so callers can wire it to a real
// environment event source via SetEventListener.
func (c *Client) FocusTracker() *tracker.FocusTracker { return c.focus }

// OnlineTracker exposes the connectivity signal for the same reason.
func (c *Client) OnlineTracker() *tracker.OnlineTracker { return c.online }

// Clear drops every entry and mutation, cancelling anything in flight.
func (c *Client) Clear() {
	c.entryCache.Clear()
	c.mutationCache.Clear()
}

// noopLogger discards everything; it is the Client's logger until WithLogger
// installs a real one.
type noopLogger struct{}

func (noopLogger) Info(ctx context.Context, msg string, fields ...observe.Field)  {}
func (noopLogger) Warn(ctx context.Context, msg string, fields ...observe.Field)  {}
func (noopLogger) Error(ctx context.Context, msg string, fields ...observe.Field) {}
func (noopLogger) Debug(ctx context.Context, msg string, fields ...observe.Field) {}
func (l noopLogger) WithQuery(meta observe.QueryMeta) observe.Logger              { return l }
