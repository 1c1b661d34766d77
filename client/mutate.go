package client

import (
	"context"

	"github.com/asyncache/asyncache/mutation"
	"github.com/asyncache/asyncache/observe"
	"github.com/asyncache/asyncache/resilience"
)

// wrapMutationFn layers the Client's resilience executor and observability
// middleware around fn, mirroring wrapQueryFn.
func (c *Client) wrapMutationFn(mutationKey any, fn mutation.Fn) mutation.Fn {
	if fn == nil {
		return nil
	}
	if c.executor != nil {
		fn = resilience.WrapMutationFn(c.executor, fn)
	}
	if c.middleware != nil {
		meta := observe.QueryMeta{Key: []any{mutationKey}}
		wrapped := c.middleware.Wrap(func(ctx context.Context, q observe.QueryMeta, input any) (any, error) {
			return fn(ctx, input)
		})
		fn = func(ctx context.Context, variables any) (any, error) {
			return wrapped(ctx, meta, variables)
		}
	}
	return fn
}

// Mutate resolves opts against the mutation defaults, builds a fresh
// Mutation, and runs it to completion.
func (c *Client) Mutate(ctx context.Context, variables any, opts ...MutationOption) (any, error) {
	resolved := c.resolveMutationOptions(opts)
	if resolved.Fn == nil {
		return nil, ErrNoMutationFn
	}
	resolved.Fn = c.wrapMutationFn(resolved.MutationKey, resolved.Fn)
	if resolved.Online == nil {
		resolved.Online = c.online.IsOnline
	}

	m := c.mutationCache.Build(resolved)
	return m.Execute(ctx, variables)
}
