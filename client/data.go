package client

import (
	"time"

	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/key"
)

func nowMillis() int64 { return time.Now().UnixMilli() }

// GetData returns k's cached data and whether any is present, without
// triggering a fetch.
func (c *Client) GetData(k key.Key) (any, bool) {
	e, ok := c.entryCache.Get(key.MustHash(k))
	if !ok {
		return nil, false
	}
	st := e.State()
	return st.Data, st.DataUpdatedAt > 0
}

// GetState returns k's full entry state, if the entry exists.
func (c *Client) GetState(k key.Key) (entry.State, bool) {
	e, ok := c.entryCache.Get(key.MustHash(k))
	if !ok {
		return entry.State{}, false
	}
	return e.State(), true
}

// SetData writes k's data directly, bypassing a fetch. updater receives the
// previous value (nil if absent) and returns the new one; a nil return is a
// no-op, matching the convention that skipping a write needs no sentinel.
func (c *Client) SetData(k key.Key, updater func(previous any) any) {
	hash := key.MustHash(k)
	e, ok := c.entryCache.Get(hash)
	if !ok {
		e = c.entryCache.Build(k, hash, entry.Options{})
	}
	prev, _ := c.GetData(k)
	next := updater(prev)
	if next == nil {
		return
	}
	e.SetData(next, nowMillis(), true)
}

// SetQueriesData applies updater to every entry matching filters and
// returns the keys whose data changed.
func (c *Client) SetQueriesData(filters entry.Filters, updater func(previous any) any) []key.Key {
	var changed []key.Key
	for _, e := range c.entryCache.FindAll(filters) {
		prev := e.State().Data
		next := updater(prev)
		if next == nil {
			continue
		}
		e.SetData(next, nowMillis(), true)
		changed = append(changed, e.Key())
	}
	return changed
}
