package engine

import (
	"github.com/go-faster/errors"

	"github.com/xenking/scentcart/internal/remote"
)

// ErrCartBusy is returned when a mutation arrives while another mutation is
// still in flight. The pipeline rejects rather than queues; the caller may
// retry once the current operation settles.
var ErrCartBusy = errors.New("cart busy: mutation in flight")

// ErrorKind classifies a user-visible cart failure.
type ErrorKind string

const (
	// KindNetworkFailure is a transport-level failure: the remote call
	// never completed.
	KindNetworkFailure ErrorKind = "network_failure"
	// KindNotFound reports an absent remote resource where absence is an
	// error (it is not one for cart hydration, which treats it as empty).
	KindNotFound ErrorKind = "not_found"
	// KindValidationFailure is a malformed item draft, caught before any
	// network call.
	KindValidationFailure ErrorKind = "validation_failure"
	// KindServerRejection is a handled error payload from a remote
	// service, e.g. an invalid coupon or business-rule violation.
	KindServerRejection ErrorKind = "server_rejection"
	// KindInvariantViolation is a failed internal precondition, e.g.
	// removing an item that is not in the cart.
	KindInvariantViolation ErrorKind = "invariant_violation"
)

// StateError is the externally observable error record held in cart state.
// Components never raise failures past the mutation pipeline; every failure
// is converted into one of these.
type StateError struct {
	Kind    ErrorKind
	Message string
}

func (e *StateError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// stateErrorFrom maps a remote client failure onto a StateError.
func stateErrorFrom(err error) *StateError {
	var rej *remote.RejectionError
	switch {
	case errors.Is(err, remote.ErrNotFound):
		return &StateError{Kind: KindNotFound, Message: "not found"}
	case errors.As(err, &rej):
		return &StateError{Kind: KindServerRejection, Message: rej.Message}
	default:
		return &StateError{Kind: KindNetworkFailure, Message: err.Error()}
	}
}
