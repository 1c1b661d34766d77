package entry

import "context"

// Status is the coarse lifecycle of an Entry's data.
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "loading"
	}
}

// FetchStatus is whether a Retryer currently holds this Entry's promise.
type FetchStatus int

const (
	FetchIdle FetchStatus = iota
	FetchFetching
	FetchPaused
)

func (s FetchStatus) String() string {
	switch s {
	case FetchFetching:
		return "fetching"
	case FetchPaused:
		return "paused"
	default:
		return "idle"
	}
}

// State is the reducer-owned value of an Entry: everything an observer
// reads to derive its own result.
type State struct {
	Data            any
	DataUpdatedAt   int64 // unix milliseconds; 0 means absent
	DataUpdateCount int

	Err              error
	ErrorUpdatedAt   int64
	ErrorUpdateCount int

	FetchFailureCount  int
	FetchFailureReason error
	FetchMeta          any

	IsInvalidated bool
	Status        Status
	FetchStatus   FetchStatus
}

func (s State) clone() State { return s }

// FetchFunc performs one attempt at producing an entry's data.
type FetchFunc func(ctx context.Context) (any, error)
