package observer

import (
	"time"

	"github.com/asyncache/asyncache/entry"
)

// deriveLocked derives a Result from the Entry's state, layering
// keep-previous-data, select, and placeholder on top. FetchStatus is
// reported as the Entry has it; a mount fetch that has not started yet is
// not shown as fetching. Caller must hold o.mu.
func (o *EntryObserver) deriveLocked(st entry.State) Result {
	opts := o.opts
	e := o.entry

	r := Result{
		Data:          st.Data,
		DataUpdatedAt: st.DataUpdatedAt,
		Error:         st.Err,
		ErrorUpdatedAt: st.ErrorUpdatedAt,
		Status:        st.Status,
		FetchStatus:   st.FetchStatus,
		FailureCount:  st.FetchFailureCount,
		FailureReason: st.FetchFailureReason,
	}

	// 2. keep-previous-data
	if opts.KeepPreviousData && st.DataUpdatedAt == 0 && o.previous != nil &&
		o.previous.Status == entry.StatusSuccess && st.Status != entry.StatusError {
		r.Data = o.previous.Data
		r.DataUpdatedAt = o.previous.DataUpdatedAt
		r.Status = entry.StatusSuccess
		r.IsPreviousData = true
	}

	// 3. select
	if opts.Select != nil && r.Data != nil {
		if o.haveSelected && sameValue(o.selectSource, r.Data) {
			r.Data = o.selectValue
			r.Error = combineErr(r.Error, o.selectErr)
		} else {
			selected, selErr := opts.Select(r.Data)
			o.selectSource = r.Data
			if selErr != nil {
				selected = entry.ReplaceData(o.selectValue, nil, entry.SharingOptions{Mode: entry.SharingDisabled})
				o.selectValue = nil
				o.selectErr = selErr
				o.haveSelected = true
				r.Error = selErr
				r.ErrorUpdatedAt = nowMillis()
				r.Status = entry.StatusError
			} else {
				shared := entry.ReplaceData(o.selectValue, selected, opts.Sharing)
				o.selectValue = shared
				o.selectErr = nil
				o.haveSelected = true
				r.Data = shared
			}
		}
	}

	// 4. placeholder
	if r.Data == nil && r.Status == entry.StatusLoading && opts.PlaceholderData != nil {
		ph := opts.PlaceholderData()
		if opts.Select != nil {
			if selected, selErr := opts.Select(ph); selErr == nil {
				ph = selected
			}
		}
		r.Data = ph
		r.IsPlaceholderData = true
		r.Status = entry.StatusSuccess
	}

	r.IsFetching = r.FetchStatus == entry.FetchFetching || r.FetchStatus == entry.FetchPaused
	r.IsLoading = r.Status == entry.StatusLoading
	r.IsError = r.Status == entry.StatusError
	r.IsSuccess = r.Status == entry.StatusSuccess
	r.IsInitialLoading = r.IsLoading && r.IsFetching
	r.IsFetched = st.DataUpdateCount+st.ErrorUpdateCount > 0
	r.IsFetchedAfterMount = st.DataUpdateCount > o.initialDataUpdateCount || st.ErrorUpdateCount > o.initialErrorUpdateCount
	r.IsRefetching = r.IsFetching && !r.IsLoading
	r.IsLoadingError = r.IsError && st.DataUpdatedAt == 0
	r.IsRefetchError = r.IsError && st.DataUpdatedAt > 0
	r.IsPaused = r.FetchStatus == entry.FetchPaused
	if e != nil {
		r.IsStale = e.IsStale(nil) || e.IsStaleByTime(opts.StaleTime)
	}

	r.Refetch = o.Refetch
	return r
}

func combineErr(a, b error) error {
	if b != nil {
		return b
	}
	return a
}

func nowMillis() int64 { return time.Now().UnixMilli() }

// anyPropChanged reports whether any of props differs between a and b,
// read by name off the exported Result fields notifyOnChangeProps names.
func anyPropChanged(a, b Result, props []string) bool {
	for _, p := range props {
		if fieldDiffers(a, b, p) {
			return true
		}
	}
	return false
}

func fieldDiffers(a, b Result, name string) bool {
	switch name {
	case "data":
		return !sameValue(a.Data, b.Data)
	case "error":
		return a.Error != b.Error
	case "status":
		return a.Status != b.Status
	case "fetchStatus":
		return a.FetchStatus != b.FetchStatus
	case "isFetching":
		return a.IsFetching != b.IsFetching
	case "isLoading":
		return a.IsLoading != b.IsLoading
	case "isError":
		return a.IsError != b.IsError
	case "isSuccess":
		return a.IsSuccess != b.IsSuccess
	case "isStale":
		return a.IsStale != b.IsStale
	case "isPaused":
		return a.IsPaused != b.IsPaused
	default:
		return true
	}
}
