// Package fault defines the failure taxonomy shared by the orchestrators.
//
// Validation and authorization faults are resolved locally (block the
// action, keep the dialog open); remote faults are surfaced with enough
// classification to pick a user-facing message. Malformed records degrade
// by being dropped from the working set, never by crashing the view.
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for propagation policy and message selection.
type Kind int

const (
	Unknown Kind = iota
	// Unauthenticated: no session identity is available.
	Unauthenticated
	// AuthorizationDenied: the session identity may not perform the action.
	AuthorizationDenied
	// Validation: client-side pre-flight check failed; no request was sent.
	Validation
	// DataIntegrity: the local working set is malformed (e.g. a cart entry
	// without a usable identity) and the operation was refused fail-fast.
	DataIntegrity
	// ContractViolation: the server response broke a documented invariant,
	// such as a created resource without a numeric identity. Fatal for the
	// operation; retrying without server-side intervention will not help.
	ContractViolation
	// MalformedResponse: the server returned an undecodable or
	// wrong-shaped payload.
	MalformedResponse
	// RemoteClient: the server rejected the request (4xx class).
	RemoteClient
	// RemoteServer: the server failed to process the request (5xx class) or
	// was unreachable.
	RemoteServer
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case AuthorizationDenied:
		return "authorization_denied"
	case Validation:
		return "validation_error"
	case DataIntegrity:
		return "data_integrity"
	case ContractViolation:
		return "contract_violation"
	case MalformedResponse:
		return "malformed_response"
	case RemoteClient:
		return "remote_client_error"
	case RemoteServer:
		return "remote_server_error"
	}
	return "unknown"
}

// Error is a classified failure raised by an orchestration operation.
type Error struct {
	Kind   Kind
	Op     string // operation that failed, e.g. "cart.checkout"
	Msg    string
	Status int   // HTTP status from the backend, when one exists
	Err    error // wrapped cause
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on bare kinds via KindOf comparisons in callers;
// two *Errors match when their kinds match.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New builds a classified error.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap builds a classified error around a cause.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Remote classifies a backend response status: 5xx (and transport-level
// failures reported as status 0) are server-side, 4xx client-side. 401 and
// 403 map onto the session kinds so callers handle them uniformly.
func Remote(op string, status int, err error) *Error {
	kind := RemoteServer
	switch {
	case status == http.StatusUnauthorized:
		kind = Unauthenticated
	case status == http.StatusForbidden:
		kind = AuthorizationDenied
	case status >= 400 && status < 500:
		kind = RemoteClient
	}
	return &Error{Kind: kind, Op: op, Status: status, Err: err}
}

// KindOf extracts the classification of err, or Unknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
