package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by where it happened.
type Kind string

const (
	// Invalid is a validation failure caught before any network call.
	Invalid Kind = "invalid"
	// Store is a row store insert/select/update failure.
	Store Kind = "store"
	// Function is an email function invocation failure.
	Function Kind = "function"
	// Network is a transport failure talking to a lookup service.
	Network Kind = "network"
	// Malformed is a store or function payload that did not parse.
	Malformed Kind = "malformed"
	// Conflict is an action refused because a previous one is still running.
	Conflict Kind = "conflict"
	// NotFound is a lookup of a record that does not exist.
	NotFound Kind = "not_found"
)

// Error carries a Kind alongside the wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
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
	return e.Op + ": " + string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an error with a user-facing message.
func E(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap attaches a kind to an underlying error. Wrapping nil returns nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf wraps a formatted cause with a kind.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in the chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Public returns a message safe to show to a guest.
func Public(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	switch KindOf(err) {
	case Invalid:
		return "Please check the form and try again."
	case Store:
		return "We could not save that right now. Please try again."
	case Function:
		return "Failed to send confirmation email"
	case Conflict:
		return "Still working on your previous request."
	case NotFound:
		return "That entry no longer exists."
	}
	return "Something went wrong. Please try again."
}

// HTTPStatus maps a kind to the response code the API returns.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Invalid:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case Store, Function, Network, Malformed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Reason returns the message of the outermost *Error without its op prefix.
func Reason(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind)
}
