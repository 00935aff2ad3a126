package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrRejected          = errors.New("request rejected")
	ErrServer            = errors.New("server error")
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError describes a failed backend call. Err is one of the sentinels
// above, optionally joined with the underlying cause.
type APIError struct {
	Op      string
	Status  int
	Code    string
	Message string
	Details []byte
	Err     error
}

func (e *APIError) Error() string {
	if e == nil {
		return "api error"
	}
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// HasResponse reports whether the backend answered at all.
func (e *APIError) HasResponse() bool { return e != nil && e.Status != 0 }

func statusError(status int) error {
	switch {
	case status == 401:
		return ErrUnauthorized
	case status == 404:
		return ErrNotFound
	case status >= 500:
		return ErrServer
	default:
		return ErrRejected
	}
}
