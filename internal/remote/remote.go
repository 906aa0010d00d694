// Package remote holds the error types shared by the remote service clients.
//
// Clients translate every failed round trip into one of three conditions:
// ErrNotFound for a 404, a RejectionError when the service returned a
// handled error payload, and a TransportError for everything the request
// never got an answer to. Callers branch on these to decide whether a
// failure is user-visible state or an empty-cart signal.
package remote

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrNotFound reports a 404 from a remote service. For cart hydration this
// means "cart does not exist yet" and is not surfaced as a user error.
var ErrNotFound = errors.New("remote: not found")

// RejectionError is a handled error payload returned by a remote service,
// e.g. an invalid coupon or a business-rule violation. Message is the
// server-provided human-readable reason.
type RejectionError struct {
	Status  int
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("remote: rejected (status %d): %s", e.Status, e.Message)
}

// TransportError is a transport-level failure: the request never completed
// or the response could not be decoded.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "remote: transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
