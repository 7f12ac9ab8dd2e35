package recruit

import (
	"errors"
	"fmt"
)

// Kind classifies a failed platform call.
type Kind int

const (
	// KindNetwork covers transport-level failures: DNS, refused
	// connections, timeouts before a response arrived.
	KindNetwork Kind = iota
	// KindAuthorization is the 401-equivalent. Returning it also fires the
	// client's unauthorized hook so every consumer reacts the same way.
	KindAuthorization
	// KindValidation marks a required field missing on our side. No remote
	// call is made for these.
	KindValidation
	// KindResultNotFound means a compute was reported successful but the
	// result could not be located afterwards.
	KindResultNotFound
	// KindServer carries a structured error message returned by the server.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindResultNotFound:
		return "result_not_found"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is the discriminated failure returned by every client operation.
// Message holds the server-provided human-readable text when available.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Op, msg, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// ValidationError reports a missing required field before any remote call.
func ValidationError(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// ResultNotFoundError reports a compute that succeeded without a locatable result.
func ResultNotFoundError(op, message string) *Error {
	return &Error{Kind: KindResultNotFound, Op: op, Message: message}
}

// KindOf returns the failure kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsAuthorization(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindAuthorization
}

func IsValidation(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindValidation
}

func IsResultNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindResultNotFound
}

// Reason extracts the server-provided message from err, falling back to the
// operation-specific fixed string when the server gave us nothing usable.
func Reason(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
