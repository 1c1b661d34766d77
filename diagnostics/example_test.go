package diagnostics_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asyncache/asyncache/diagnostics"
	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/notify"
)

func ExampleNewEntryCacheChecker() {
	cache := entry.NewCache(notify.New(), func() bool { return true })
	e := cache.Build([]any{"user", 1}, "", entry.Options{})
	e.SetData(map[string]any{"id": 1}, 1, true)

	checker := diagnostics.NewEntryCacheChecker(cache, diagnostics.EntryCacheCheckerConfig{})

	ctx := context.Background()
	result := checker.Check(ctx)

	fmt.Println("Checker name:", checker.Name())
	fmt.Println("Status is healthy:", result.Status == diagnostics.StatusHealthy)
	// Output:
	// Checker name: entry_cache
	// Status is healthy: true
}

func ExampleNewCheckerFunc() {
	dbChecker := diagnostics.NewCheckerFunc("database", func(ctx context.Context) diagnostics.Result {
		return diagnostics.Healthy("database connected")
	})

	ctx := context.Background()
	result := dbChecker.Check(ctx)

	fmt.Println("Checker name:", dbChecker.Name())
	fmt.Println("Status:", result.Status.String())
	fmt.Println("Message:", result.Message)
	// Output:
	// Checker name: database
	// Status: healthy
	// Message: database connected
}

func ExampleHealthy() {
	result := diagnostics.Healthy("all systems operational")

	fmt.Println("Status:", result.Status.String())
	fmt.Println("Message:", result.Message)
	// Output:
	// Status: healthy
	// Message: all systems operational
}

func ExampleDegraded() {
	result := diagnostics.Degraded("high latency detected")

	fmt.Println("Status:", result.Status.String())
	fmt.Println("Message:", result.Message)
	// Output:
	// Status: degraded
	// Message: high latency detected
}

func ExampleUnhealthy() {
	err := errors.New("connection refused")
	result := diagnostics.Unhealthy("cache unreachable", err)

	fmt.Println("Status:", result.Status.String())
	fmt.Println("Message:", result.Message)
	fmt.Println("Has error:", result.Error != nil)
	// Output:
	// Status: unhealthy
	// Message: cache unreachable
	// Has error: true
}

func ExampleResult_WithDetails() {
	result := diagnostics.Healthy("cache operational").WithDetails(map[string]any{
		"stale_ratio": 0.1,
		"entries":     1234,
	})

	fmt.Println("Status:", result.Status.String())
	fmt.Println("Has details:", result.Details != nil)
	fmt.Printf("Stale ratio: %.0f%%\n", result.Details["stale_ratio"].(float64)*100)
	// Output:
	// Status: healthy
	// Has details: true
	// Stale ratio: 10%
}

func ExampleResult_WithDuration() {
	start := time.Now()
	time.Sleep(10 * time.Millisecond)
	result := diagnostics.Healthy("check complete").WithDuration(time.Since(start))

	fmt.Println("Status:", result.Status.String())
	fmt.Println("Has duration:", result.Duration > 0)
	// Output:
	// Status: healthy
	// Has duration: true
}

func ExampleNewAggregator() {
	cache := entry.NewCache(notify.New(), func() bool { return true })
	agg := diagnostics.NewAggregator()

	agg.Register("entries", diagnostics.NewEntryCacheChecker(cache, diagnostics.EntryCacheCheckerConfig{}))
	agg.Register("service", diagnostics.NewCheckerFunc("service", func(ctx context.Context) diagnostics.Result {
		return diagnostics.Healthy("service running")
	}))

	fmt.Println("Registered checkers:", agg.CheckerNames())
	// Output:
	// Registered checkers: [entries service]
}

func ExampleAggregator_CheckAll() {
	agg := diagnostics.NewAggregator()

	agg.Register("check1", diagnostics.NewCheckerFunc("check1", func(ctx context.Context) diagnostics.Result {
		return diagnostics.Healthy("check1 ok")
	}))
	agg.Register("check2", diagnostics.NewCheckerFunc("check2", func(ctx context.Context) diagnostics.Result {
		return diagnostics.Healthy("check2 ok")
	}))

	ctx := context.Background()
	results := agg.CheckAll(ctx)

	fmt.Println("Number of results:", len(results))
	fmt.Println("check1 status:", results["check1"].Status.String())
	fmt.Println("check2 status:", results["check2"].Status.String())
	// Output:
	// Number of results: 2
	// check1 status: healthy
	// check2 status: healthy
}

func ExampleAggregator_OverallStatus() {
	agg := diagnostics.NewAggregator()

	results := map[string]diagnostics.Result{
		"a": diagnostics.Healthy("ok"),
		"b": diagnostics.Healthy("ok"),
	}
	fmt.Println("All healthy:", agg.OverallStatus(results).String())

	results["c"] = diagnostics.Degraded("slow")
	fmt.Println("One degraded:", agg.OverallStatus(results).String())

	results["d"] = diagnostics.Unhealthy("down", nil)
	fmt.Println("One unhealthy:", agg.OverallStatus(results).String())
	// Output:
	// All healthy: healthy
	// One degraded: degraded
	// One unhealthy: unhealthy
}

func ExampleAggregator_Check() {
	agg := diagnostics.NewAggregator()
	agg.Register("mycheck", diagnostics.NewCheckerFunc("mycheck", func(ctx context.Context) diagnostics.Result {
		return diagnostics.Healthy("specific check passed")
	}))

	ctx := context.Background()

	result, err := agg.Check(ctx, "mycheck")
	if err == nil {
		fmt.Println("Status:", result.Status.String())
		fmt.Println("Message:", result.Message)
	}

	_, err = agg.Check(ctx, "unknown")
	fmt.Println("Unknown checker error:", errors.Is(err, diagnostics.ErrCheckerNotFound))
	// Output:
	// Status: healthy
	// Message: specific check passed
	// Unknown checker error: true
}

func ExampleAggregator_Checker() {
	agg := diagnostics.NewAggregator()
	agg.Register("sub1", diagnostics.NewCheckerFunc("sub1", func(ctx context.Context) diagnostics.Result {
		return diagnostics.Healthy("sub1 ok")
	}))
	agg.Register("sub2", diagnostics.NewCheckerFunc("sub2", func(ctx context.Context) diagnostics.Result {
		return diagnostics.Healthy("sub2 ok")
	}))

	checker := agg.Checker()
	ctx := context.Background()
	result := checker.Check(ctx)

	fmt.Println("Checker name:", checker.Name())
	fmt.Println("Overall status:", result.Status.String())
	fmt.Println("Has sub-check details:", result.Details != nil)
	// Output:
	// Checker name: aggregate
	// Overall status: healthy
	// Has sub-check details: true
}

func ExampleNewAggregator_withConfig() {
	agg := diagnostics.NewAggregator(diagnostics.AggregatorConfig{
		Timeout:  5 * time.Second,
		Parallel: false, // Run checks sequentially
	})

	agg.Register("check1", diagnostics.NewCheckerFunc("check1", func(ctx context.Context) diagnostics.Result {
		return diagnostics.Healthy("sequential check")
	}))

	ctx := context.Background()
	results := agg.CheckAll(ctx)

	fmt.Println("Check completed:", len(results) == 1)
	// Output:
	// Check completed: true
}

func ExampleStatus_String() {
	statuses := []diagnostics.Status{
		diagnostics.StatusHealthy,
		diagnostics.StatusDegraded,
		diagnostics.StatusUnhealthy,
	}

	for _, s := range statuses {
		fmt.Println(s.String())
	}
	// Output:
	// healthy
	// degraded
	// unhealthy
}
