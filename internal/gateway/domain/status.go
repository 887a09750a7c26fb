package domain

// Status is the normalized payment lifecycle state shared by every adapter.
// Provider-specific vocabularies are mapped into this set and never leak past
// the adapter boundary.
type Status string

const (
	StatusPending      Status = "pending"
	StatusRequiresMore Status = "requires_more"
	StatusAuthorized   Status = "authorized"
	StatusCaptured     Status = "captured"
	StatusRefunded     Status = "refunded"
	StatusCanceled     Status = "canceled"
	StatusError        Status = "error"
)

// Valid reports whether s is one of the canonical states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRequiresMore, StatusAuthorized, StatusCaptured,
		StatusRefunded, StatusCanceled, StatusError:
		return true
	}
	return false
}

// CanTransition reports whether moving from one canonical state to another is
// allowed. A total order is not enforced, providers can jump states, but three
// constraints always hold: captured is reachable only after authorized,
// refunded only after captured, and canceled only before capture.
func CanTransition(from, to Status) bool {
	if !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	switch to {
	case StatusCaptured:
		return from == StatusAuthorized
	case StatusRefunded:
		return from == StatusCaptured
	case StatusCanceled:
		return from != StatusCaptured && from != StatusRefunded
	}
	return true
}
