package airtable

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Error is returned for failed calls against the Airtable API. Either
// StatusCode is set (the server answered with an error status) or Err is
// set (the request never completed).
type Error struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("airtable: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("airtable: %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }

// Temporary reports whether the failure is transient: transport errors,
// timeouts, rate limiting, and server-side 5xx responses. Transient
// failures abort a reconciliation run before its cursor commits, so the
// next delivery retries the same page.
func (e *Error) Temporary() bool {
	if e.Err != nil {
		var ne net.Error
		if errors.As(e.Err, &ne) {
			return true
		}
		return errors.Is(e.Err, context.DeadlineExceeded)
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsTemporary reports whether err is a transient Airtable failure.
func IsTemporary(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Temporary()
}
