package client

import "context"

// Mount ref-counts a caller's interest in the Client's environment
// signals. The first Mount call subscribes to FocusTracker/OnlineTracker;
// the matching unmount func (from the last outstanding Mount) tears the
// subscriptions down. Every focus-regained or online-regained transition
// resumes paused mutations and re-runs the entry cache's own focus/online
// hooks.
func (c *Client) Mount() (unmount func()) {
	c.mountMu.Lock()
	first := c.mountCount == 0
	c.mountCount++
	c.mountMu.Unlock()

	if first {
		c.mountMu.Lock()
		c.unsubFocus = c.focus.Subscribe(func(focused bool) {
			if focused {
				c.onFocusRegained()
			}
		})
		c.unsubOnline = c.online.Subscribe(func(online bool) {
			if online {
				c.onOnlineRegained()
			}
		})
		c.mountMu.Unlock()
	}

	var unmounted bool
	return func() {
		c.mountMu.Lock()
		defer c.mountMu.Unlock()
		if unmounted {
			return
		}
		unmounted = true
		c.mountCount--
		if c.mountCount == 0 {
			if c.unsubFocus != nil {
				c.unsubFocus()
				c.unsubFocus = nil
			}
			if c.unsubOnline != nil {
				c.unsubOnline()
				c.unsubOnline = nil
			}
		}
	}
}

func (c *Client) onFocusRegained() {
	_ = c.mutationCache.ResumePaused(context.Background())
	c.entryCache.OnFocus()
}

func (c *Client) onOnlineRegained() {
	_ = c.mutationCache.ResumePaused(context.Background())
	c.entryCache.OnOnline()
}
