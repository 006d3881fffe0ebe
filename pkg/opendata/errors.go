package opendata

import (
	"errors"
	"fmt"
)

// Failure kinds for open-data operations. Operations surface exactly one of
// these and callers match them with errors.Is; there is no internal recovery
// or retry.
var (
	// ErrNetwork indicates the request could not be sent or timed out.
	ErrNetwork = errors.New("network error")

	// ErrParse indicates the response body was not the JSON shape expected.
	ErrParse = errors.New("parse error")

	// ErrProvider indicates the provider answered with an explicit error
	// object or a non-2xx status.
	ErrProvider = errors.New("provider error")

	// ErrLookup indicates an expected key (such as a requested page id) was
	// absent from an otherwise valid response.
	ErrLookup = errors.New("lookup error")
)

// Error is the error type returned by all provider clients. It carries the
// failure kind, the provider service name and the underlying cause.
type Error struct {
	Kind       error  // one of ErrNetwork, ErrParse, ErrProvider, ErrLookup
	Service    string // provider service name, e.g. "overpass"
	StatusCode int    // HTTP status when relevant, 0 otherwise
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %v (status %d): %s", e.Service, e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %v: %s", e.Service, e.Kind, msg)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error's kind, so that
// errors.Is(err, opendata.ErrParse) works on wrapped provider errors.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// NetworkError wraps a transport-level failure.
func NetworkError(service string, err error) *Error {
	return &Error{Kind: ErrNetwork, Service: service, Err: err}
}

// ParseError wraps a JSON decoding or schema failure.
func ParseError(service string, err error) *Error {
	return &Error{Kind: ErrParse, Service: service, Err: err}
}

// ProviderError reports an explicit provider-side failure.
func ProviderError(service string, statusCode int, message string) *Error {
	return &Error{Kind: ErrProvider, Service: service, StatusCode: statusCode, Message: message}
}

// LookupError reports a key expected in the response but not found.
func LookupError(service, key string) *Error {
	return &Error{Kind: ErrLookup, Service: service, Message: fmt.Sprintf("no entry for %q in response", key)}
}
