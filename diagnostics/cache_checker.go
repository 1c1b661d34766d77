package diagnostics

import (
	"context"
	"fmt"

	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/mutation"
)

// EntryCacheCheckerConfig configures the EntryCache staleness checker.
type EntryCacheCheckerConfig struct {
	// StaleWarningRatio is the fraction of entries considered stale that
	// triggers a Degraded result. Default: 0.5 (50%)
	StaleWarningRatio float64

	// StaleCriticalRatio triggers an Unhealthy result. Default: 0.9 (90%)
	StaleCriticalRatio float64
}

// EntryCacheChecker reports on an entry.Cache's stale-entry ratio and
// paused-fetch count.
type EntryCacheChecker struct {
	cache  *entry.Cache
	config EntryCacheCheckerConfig
}

// NewEntryCacheChecker creates a checker bound to the given cache.
func NewEntryCacheChecker(cache *entry.Cache, config EntryCacheCheckerConfig) *EntryCacheChecker {
	if config.StaleWarningRatio <= 0 || config.StaleWarningRatio >= 1 {
		config.StaleWarningRatio = 0.5
	}
	if config.StaleCriticalRatio <= 0 || config.StaleCriticalRatio >= 1 {
		config.StaleCriticalRatio = 0.9
	}
	if config.StaleCriticalRatio < config.StaleWarningRatio {
		config.StaleCriticalRatio = config.StaleWarningRatio
	}
	return &EntryCacheChecker{cache: cache, config: config}
}

// Name returns the name of this checker.
func (c *EntryCacheChecker) Name() string { return "entry_cache" }

// Check reports the cache's stale ratio and paused-fetch count.
func (c *EntryCacheChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	entries := c.cache.FindAll(entry.Filters{})
	total := len(entries)

	var stale, paused, fetching, errored int
	for _, e := range entries {
		if e.IsStale(nil) {
			stale++
		}
		state := e.State()
		switch state.FetchStatus {
		case entry.FetchPaused:
			paused++
		case entry.FetchFetching:
			fetching++
		}
		if state.Status == entry.StatusError {
			errored++
		}
	}

	var staleRatio float64
	if total > 0 {
		staleRatio = float64(stale) / float64(total)
	}

	details := map[string]any{
		"total_entries": total,
		"stale_entries": stale,
		"stale_ratio":   staleRatio,
		"paused_fetch":  paused,
		"fetching":      fetching,
		"errored":       errored,
	}

	if total == 0 {
		return Healthy("no entries cached").WithDetails(details)
	}

	if staleRatio >= c.config.StaleCriticalRatio {
		return Unhealthy(
			fmt.Sprintf("stale entry ratio critical: %.1f%%", staleRatio*100),
			ErrCheckFailed,
		).WithDetails(details)
	}

	if staleRatio >= c.config.StaleWarningRatio {
		return Degraded(
			fmt.Sprintf("stale entry ratio high: %.1f%%", staleRatio*100),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("stale entry ratio normal: %.1f%%", staleRatio*100),
	).WithDetails(details)
}

// MutationCacheChecker reports on a mutation.Cache's paused-mutation count.
type MutationCacheChecker struct {
	cache *mutation.Cache
}

// NewMutationCacheChecker creates a checker bound to the given cache.
func NewMutationCacheChecker(cache *mutation.Cache) *MutationCacheChecker {
	return &MutationCacheChecker{cache: cache}
}

// Name returns the name of this checker.
func (c *MutationCacheChecker) Name() string { return "mutation_cache" }

// Check reports the cache's paused-mutation count. Any paused mutation
// means a retry loop is waiting on the network, so this checker never
// reports Unhealthy on its own — that is the Retryer's job, not the
// cache's.
func (c *MutationCacheChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	mutations := c.cache.All()
	total := len(mutations)

	var paused, loading, errored int
	for _, m := range mutations {
		state := m.State()
		if state.IsPaused {
			paused++
		}
		switch state.Status {
		case mutation.StatusLoading:
			loading++
		case mutation.StatusError:
			errored++
		}
	}

	details := map[string]any{
		"total_mutations": total,
		"paused":          paused,
		"loading":         loading,
		"errored":         errored,
	}

	if total == 0 {
		return Healthy("no mutations tracked").WithDetails(details)
	}

	if paused > 0 {
		return Degraded(
			fmt.Sprintf("%d mutation(s) paused awaiting network", paused),
		).WithDetails(details)
	}

	return Healthy("no mutations paused").WithDetails(details)
}
