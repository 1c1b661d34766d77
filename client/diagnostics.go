package client

import (
	"context"

	"github.com/asyncache/asyncache/diagnostics"
)

// RegisterChecker adds an extra checker (e.g. a downstream service) to the
// Client's diagnostics aggregator.
func (c *Client) RegisterChecker(name string, checker diagnostics.Checker) {
	c.diag.Register(name, checker)
}

// Diagnostics runs every registered checker and reports the aggregate
// status alongside each individual result.
func (c *Client) Diagnostics(ctx context.Context) (diagnostics.Status, map[string]diagnostics.Result) {
	results := c.diag.CheckAll(ctx)
	return c.diag.OverallStatus(results), results
}
