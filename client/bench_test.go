package client

import (
	"context"
	"testing"
	"time"

	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/key"
)

func BenchmarkFetchCached(b *testing.B) {
	c, err := New(Options{})
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	k := key.Key{"bench"}
	opts := []QueryOption{
		WithStaleTime(time.Hour),
		WithQueryFn(func(ctx context.Context) (any, error) { return 1, nil }),
	}
	if _, err := c.Fetch(ctx, k, opts...); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Fetch(ctx, k, opts...); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFetchFreshEntry(b *testing.B) {
	c, err := New(Options{})
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := key.Key{"bench", i}
		if _, err := c.Fetch(ctx, k, WithQueryFn(func(ctx context.Context) (any, error) {
			return i, nil
		})); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkResolveQueryOptions(b *testing.B) {
	c, err := New(Options{})
	if err != nil {
		b.Fatal(err)
	}
	c.SetGlobalQueryDefaults(WithCacheTime(1))
	for i := 0; i < 20; i++ {
		c.SetQueryDefaults(key.Key{i}, WithCacheTime(2))
	}
	k := key.Key{19}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.resolveQueryOptions(k, nil)
	}
}

func BenchmarkMutate(b *testing.B) {
	c, err := New(Options{})
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	opt := WithMutationFn(func(ctx context.Context, variables any) (any, error) { return 1, nil })

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Mutate(ctx, nil, opt); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSetData(b *testing.B) {
	c, err := New(Options{})
	if err != nil {
		b.Fatal(err)
	}
	k := key.Key{"bench-set"}
	updater := func(previous any) any { return 1 }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.SetData(k, updater)
	}
}

func BenchmarkIsFetching(b *testing.B) {
	c, err := New(Options{})
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		if _, err := c.Fetch(ctx, key.Key{"bench-fetching", i}, WithQueryFn(func(ctx context.Context) (any, error) {
			return i, nil
		})); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.IsFetching(entry.Filters{})
	}
}
