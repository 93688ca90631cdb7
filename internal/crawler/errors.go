package crawler

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks connection, DNS, timeout and body read failures.
	ErrTransport = errors.New("transport error")
	// ErrHTTPStatus marks responses whose status is not 200.
	ErrHTTPStatus = errors.New("unexpected http status")
	// ErrSeedUnavailable marks a session whose seed page could not be fetched.
	ErrSeedUnavailable = errors.New("seed unavailable")
)

// ErrorKind classifies a FetchError.
type ErrorKind string

const (
	KindTransport  ErrorKind = "transport"
	KindHTTPStatus ErrorKind = "http_status"
)

// FetchError is the only error Fetch returns.
type FetchError struct {
	URL    string
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *FetchError) Unwrap() []error {
	sentinel := ErrTransport
	if e.Kind == KindHTTPStatus {
		sentinel = ErrHTTPStatus
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// Reason is the short form stored on failed records.
func (e *FetchError) Reason() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("status %d", e.Status)
	}
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func transportError(url string, err error) *FetchError {
	return &FetchError{URL: url, Kind: KindTransport, Err: err}
}

func statusError(url string, status int) *FetchError {
	return &FetchError{URL: url, Kind: KindHTTPStatus, Status: status}
}
