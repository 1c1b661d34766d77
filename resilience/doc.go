// Package resilience provides optional client-side resilience patterns
// for query fetch and mutation attempts, layered outside retry.Retryer
// rather than replacing it.
//
// retry.Retryer already owns backoff, pause-on-offline, and cancellation
// for every Entry fetch and Mutation execute. The patterns here gate
// whether an attempt is allowed to start in the first place:
//
//   - Circuit Breaker: stops attempts against a failing resource once a
//     failure threshold is reached, until a reset timeout passes.
//
//   - Rate Limiter: caps how often attempts may start, independent of
//     how many are already in flight.
//
//   - Bulkhead: caps how many attempts may be in flight concurrently.
//
//   - Timeout: bounds a single attempt's wall-clock duration.
//
// # Usage
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    MaxFailures:  5,
//	    ResetTimeout: time.Minute,
//	})
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 20})
//
//	executor := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(cb),
//	    resilience.WithBulkhead(bh),
//	    resilience.WithTimeout(10*time.Second),
//	)
//
//	queryFn := resilience.WrapFetchFunc(executor, func(ctx context.Context) (any, error) {
//	    return fetchFromUpstream(ctx)
//	})
//	// queryFn now satisfies entry.FetchFunc / observer.Options.QueryFn.
package resilience
