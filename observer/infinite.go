package observer

import (
	"context"
	"sync"

	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/key"
)

// InfiniteData is the accumulated shape of a paginated fetch.
type InfiniteData struct {
	Pages      []any
	PageParams []any
}

// FetchDirection selects which end of an InfiniteData a fetchMore request
// extends.
type FetchDirection int

const (
	FetchNone FetchDirection = iota
	FetchForward
	FetchBackward
)

// FetchMoreRequest is the one-shot instruction consumed by the next fetch
// the infinite behavior intercepts.
type FetchMoreRequest struct {
	Direction    FetchDirection
	PageParam    any
	HasPageParam bool
}

// InfiniteOptions configures an InfiniteEntryObserver. PageFn replaces the
// base Options.QueryFn — it is called once per page with that page's
// pageParam (nil for the first page) instead of once per logical fetch.
type InfiniteOptions struct {
	Options
	PageFn               func(ctx context.Context, pageParam any) (any, error)
	GetNextPageParam     func(lastPage any, pages []any) (param any, ok bool)
	GetPreviousPageParam func(firstPage any, pages []any) (param any, ok bool)
	// RefetchPage decides, per existing page, whether a refetch
	// re-requests it or reuses the cached value. Nil means always refetch.
	RefetchPage func(lastPage any, index int, allPages []any) bool
}

// infiniteBehavior installs as an entry.Behavior, rewriting the Entry's
// single FetchFunc into a page-fetch loop over whatever fetchMore request
// is currently pending.
type infiniteBehavior struct {
	mu      sync.Mutex
	pageFn  func(ctx context.Context, pageParam any) (any, error)
	getNext func(lastPage any, pages []any) (any, bool)
	getPrev func(firstPage any, pages []any) (any, bool)
	refetch func(lastPage any, i int, all []any) bool

	pending *FetchMoreRequest
	active  FetchDirection
}

func (b *infiniteBehavior) setPending(r *FetchMoreRequest) {
	b.mu.Lock()
	b.pending = r
	b.mu.Unlock()
}

func (b *infiniteBehavior) takePending() *FetchMoreRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.pending
	b.pending = nil
	return r
}

func (b *infiniteBehavior) activeDirection() FetchDirection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// OnFetch implements entry.Behavior: it replaces fc.FetchFn with the
// page-fetch loop, computed against the entry's current InfiniteData and
// whatever fetchMore request is pending.
func (b *infiniteBehavior) OnFetch(fc *entry.FetchContext) {
	req := b.takePending()
	dir := FetchNone
	if req != nil {
		dir = req.Direction
	}
	b.mu.Lock()
	b.active = dir
	b.mu.Unlock()

	prevData, _ := fc.State.Data.(InfiniteData)
	fc.FetchFn = func(ctx context.Context) (any, error) {
		fc.Signal() // marks the abort signal consumed for Entry.RemoveObserver's revert decision
		defer func() {
			b.mu.Lock()
			b.active = FetchNone
			b.mu.Unlock()
		}()
		return b.run(ctx, prevData, req)
	}
}

func (b *infiniteBehavior) run(runCtx context.Context, prev InfiniteData, req *FetchMoreRequest) (any, error) {
	if len(prev.Pages) == 0 {
		page, err := b.pageFn(runCtx, nil)
		if err != nil {
			return nil, err
		}
		return InfiniteData{Pages: []any{page}, PageParams: []any{nil}}, nil
	}

	if req != nil && req.Direction == FetchForward {
		param := req.PageParam
		if !req.HasPageParam {
			if b.getNext == nil {
				return prev, nil
			}
			p, ok := b.getNext(prev.Pages[len(prev.Pages)-1], prev.Pages)
			if !ok {
				return prev, nil
			}
			param = p
		}
		page, err := b.pageFn(runCtx, param)
		if err != nil {
			return nil, err
		}
		return InfiniteData{
			Pages:      append(append([]any{}, prev.Pages...), page),
			PageParams: append(append([]any{}, prev.PageParams...), param),
		}, nil
	}

	if req != nil && req.Direction == FetchBackward {
		param := req.PageParam
		if !req.HasPageParam {
			if b.getPrev == nil {
				return prev, nil
			}
			p, ok := b.getPrev(prev.Pages[0], prev.Pages)
			if !ok {
				return prev, nil
			}
			param = p
		}
		page, err := b.pageFn(runCtx, param)
		if err != nil {
			return nil, err
		}
		return InfiniteData{
			Pages:      append([]any{page}, prev.Pages...),
			PageParams: append([]any{param}, prev.PageParams...),
		}, nil
	}

	newPages := make([]any, len(prev.Pages))
	for i, param := range prev.PageParams {
		refetch := true
		if b.refetch != nil {
			refetch = b.refetch(prev.Pages[i], i, prev.Pages)
		}
		if !refetch {
			newPages[i] = prev.Pages[i]
			continue
		}
		page, err := b.pageFn(runCtx, param)
		if err != nil {
			return nil, err
		}
		newPages[i] = page
	}
	return InfiniteData{Pages: newPages, PageParams: append([]any{}, prev.PageParams...)}, nil
}

// InfiniteEntryObserver layers page-fetch affordances on top of
// EntryObserver.
type InfiniteEntryObserver struct {
	*EntryObserver
	opts     InfiniteOptions
	behavior *infiniteBehavior
}

// NewInfinite builds an InfiniteEntryObserver bound to k.
func NewInfinite(cache *entry.Cache, k key.Key, opts InfiniteOptions) *InfiniteEntryObserver {
	b := &infiniteBehavior{
		pageFn:  opts.PageFn,
		getNext: opts.GetNextPageParam,
		getPrev: opts.GetPreviousPageParam,
		refetch: opts.RefetchPage,
	}
	base := opts.Options
	base.Behavior = b
	// Entry resolves a non-nil QueryFn before invoking Behavior.OnFetch, so
	// this placeholder only has to exist — OnFetch always overwrites
	// fc.FetchFn with the real page-fetch loop before any attempt runs.
	base.QueryFn = func(context.Context) (any, error) { return nil, nil }
	return &InfiniteEntryObserver{
		EntryObserver: New(cache, k, base),
		opts:          opts,
		behavior:      b,
	}
}

func (o *InfiniteEntryObserver) fetchDirection(ctx context.Context, dir FetchDirection, param any, has bool) (InfiniteData, error) {
	o.behavior.setPending(&FetchMoreRequest{Direction: dir, PageParam: param, HasPageParam: has})
	o.mu.Lock()
	e := o.entry
	meta := o.opts.Meta
	o.mu.Unlock()
	if e == nil {
		return InfiniteData{}, nil
	}
	v, err := e.Fetch(ctx, entry.FetchOptions{Meta: meta})
	if err != nil {
		return InfiniteData{}, err
	}
	data, _ := v.(InfiniteData)
	return data, nil
}

// FetchNextPage requests the next page using GetNextPageParam.
func (o *InfiniteEntryObserver) FetchNextPage(ctx context.Context) (InfiniteData, error) {
	return o.fetchDirection(ctx, FetchForward, nil, false)
}

// FetchNextPageWithParam requests the next page with an explicit pageParam
// override.
func (o *InfiniteEntryObserver) FetchNextPageWithParam(ctx context.Context, param any) (InfiniteData, error) {
	return o.fetchDirection(ctx, FetchForward, param, true)
}

// FetchPreviousPage requests the previous page using GetPreviousPageParam.
func (o *InfiniteEntryObserver) FetchPreviousPage(ctx context.Context) (InfiniteData, error) {
	return o.fetchDirection(ctx, FetchBackward, nil, false)
}

// FetchPreviousPageWithParam requests the previous page with an explicit
// pageParam override.
func (o *InfiniteEntryObserver) FetchPreviousPageWithParam(ctx context.Context, param any) (InfiniteData, error) {
	return o.fetchDirection(ctx, FetchBackward, param, true)
}

func (o *InfiniteEntryObserver) currentData() InfiniteData {
	o.mu.Lock()
	e := o.entry
	o.mu.Unlock()
	if e == nil {
		return InfiniteData{}
	}
	data, _ := e.State().Data.(InfiniteData)
	return data
}

// HasNextPage reports whether GetNextPageParam names another page to fetch.
func (o *InfiniteEntryObserver) HasNextPage() bool {
	if o.opts.GetNextPageParam == nil {
		return false
	}
	data := o.currentData()
	if len(data.Pages) == 0 {
		return false
	}
	_, ok := o.opts.GetNextPageParam(data.Pages[len(data.Pages)-1], data.Pages)
	return ok
}

// HasPreviousPage reports whether GetPreviousPageParam names another page
// to fetch.
func (o *InfiniteEntryObserver) HasPreviousPage() bool {
	if o.opts.GetPreviousPageParam == nil {
		return false
	}
	data := o.currentData()
	if len(data.Pages) == 0 {
		return false
	}
	_, ok := o.opts.GetPreviousPageParam(data.Pages[0], data.Pages)
	return ok
}

// IsFetchingNextPage reports whether the in-flight fetch, if any, is a
// forward page fetch.
func (o *InfiniteEntryObserver) IsFetchingNextPage() bool {
	return o.GetCurrentResult().IsFetching && o.behavior.activeDirection() == FetchForward
}

// IsFetchingPreviousPage reports whether the in-flight fetch, if any, is a
// backward page fetch.
func (o *InfiniteEntryObserver) IsFetchingPreviousPage() bool {
	return o.GetCurrentResult().IsFetching && o.behavior.activeDirection() == FetchBackward
}
