package observer

import (
	"context"
	"reflect"

	"github.com/asyncache/asyncache/entry"
)

// Result is the read-facing projection of an Entry plus whatever
// select/keep-previous-data/placeholder layering the observer's Options
// request.
type Result struct {
	Data           any
	DataUpdatedAt  int64
	Error          error
	ErrorUpdatedAt int64
	Status         entry.Status
	FetchStatus    entry.FetchStatus
	FailureCount   int
	FailureReason  error

	IsFetching          bool
	IsLoading           bool
	IsError             bool
	IsSuccess           bool
	IsInitialLoading    bool
	IsFetched           bool
	IsFetchedAfterMount bool
	IsRefetching        bool
	IsLoadingError      bool
	IsRefetchError      bool
	IsPaused            bool
	IsStale             bool
	IsPlaceholderData   bool
	IsPreviousData      bool

	Refetch func(ctx context.Context) (any, error)
}

// shallowEqual reports whether two Results carry the same observable
// fields, ignoring Refetch (a closure, never meaningfully comparable).
func shallowEqual(a, b Result) bool {
	a.Refetch, b.Refetch = nil, nil
	if a.Data != nil && b.Data != nil {
		if !sameValue(a.Data, b.Data) {
			return false
		}
		a.Data, b.Data = nil, nil
	} else if (a.Data == nil) != (b.Data == nil) {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// sameValue mirrors entry's identity rule: pointer identity for map, slice,
// func and chan, reflect.DeepEqual for struct, array and interface, and ==
// otherwise.
func sameValue(a, b any) bool {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Kind() != bv.Kind() {
		return false
	}
	switch av.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return av.Pointer() == bv.Pointer()
	case reflect.Struct, reflect.Array, reflect.Interface:
		return reflect.DeepEqual(a, b)
	default:
		return a == b
	}
}
