package observer

import (
	"context"
	"time"

	"github.com/asyncache/asyncache/entry"
)

// armStaleTimer schedules a single timeout that flips isStale once the
// current data crosses staleTime. A no-op if staleTime is infinite (<0)
// or the result is already stale.
func (o *EntryObserver) armStaleTimer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.armStaleTimerLocked()
}

func (o *EntryObserver) armStaleTimerLocked() {
	if o.staleTimer != nil {
		o.staleTimer.Stop()
		o.staleTimer = nil
	}
	if o.opts.StaleTime < 0 || o.entry == nil {
		return
	}
	if o.current.IsStale {
		return
	}
	st := o.entry.State()
	if st.DataUpdatedAt == 0 {
		return
	}
	dueAt := time.UnixMilli(st.DataUpdatedAt).Add(o.opts.StaleTime).Add(time.Millisecond)
	delay := time.Until(dueAt)
	if delay <= 0 {
		delay = time.Millisecond
	}
	o.staleTimer = time.AfterFunc(delay, func() {
		o.recompute("staleTimeElapsed", true)
	})
}

// rearmStaleTimer re-evaluates the stale timer after any Entry update —
// dataUpdatedAt may have changed, invalidating the previous schedule.
func (o *EntryObserver) rearmStaleTimer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.armStaleTimerLocked()
}

// armRefetchTimer starts the periodic refetch poll. It reschedules itself
// after every fire since the interval may be a function of (data, entry)
// that changes between calls.
func (o *EntryObserver) armRefetchTimer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.armRefetchTimerLocked()
}

func (o *EntryObserver) armRefetchTimerLocked() {
	if o.refetchTimer != nil {
		o.refetchTimer.Stop()
		o.refetchTimer = nil
	}
	if o.opts.RefetchInterval == nil || o.entry == nil {
		o.interval = 0
		return
	}
	d := o.opts.RefetchInterval(o.current.Data, o.entry)
	o.interval = d
	if d <= 0 {
		return
	}
	inBackground := o.opts.RefetchIntervalInBackground
	backgrounded := o.opts.Backgrounded
	e := o.entry
	meta := o.opts.Meta
	o.refetchTimer = time.AfterFunc(d, func() {
		if backgrounded == nil || !backgrounded() || inBackground {
			go e.Fetch(context.Background(), entry.FetchOptions{Meta: meta})
		}
		o.armRefetchTimer()
	})
}
