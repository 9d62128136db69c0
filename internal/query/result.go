package query

// Status is the lifecycle of one logical query or mutation.
//
// Queries: idle → loading → success | error.
// Mutations: idle → pending → success | error, where error is recoverable by
// re-invoking. Checkout success is terminal for the session's order.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the tri-state outcome surfaced to views: loading/error/data.
type Result[T any] struct {
	Status Status
	Data   T
	Err    error
}

// Loading reports whether the operation is still in flight.
func (r Result[T]) Loading() bool { return r.Status == StatusLoading || r.Status == StatusPending }

// Ok reports whether data is present.
func (r Result[T]) Ok() bool { return r.Status == StatusSuccess }
