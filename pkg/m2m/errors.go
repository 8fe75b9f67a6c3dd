package m2m

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidBaseURL is returned when the base URL does not start with
	// http or https.
	ErrInvalidBaseURL = errors.New("m2m: base URL must start with http or https")
)

// APIError represents a non-2xx answer from the gateway. It is distinct
// from an empty result: the lookup itself failed, and the caller decides
// whether that aborts or skips.
type APIError struct {
	Status int
	Reason string
	URL    string
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Reason == "" {
		return fmt.Sprintf("m2m: request failed status=%d (%s)", e.Status, e.URL)
	}
	return fmt.Sprintf("m2m: %d %s (%s)", e.Status, e.Reason, e.URL)
}

// NotFound reports whether the gateway answered 404, which the inventory
// endpoints use for unknown instruments.
func (e *APIError) NotFound() bool {
	if e == nil {
		return false
	}
	return e.Status == http.StatusNotFound
}

// Temporary reports whether the error may clear on a later attempt.
func (e *APIError) Temporary() bool {
	if e == nil {
		return false
	}
	return e.Status >= 500 && e.Status < 600
}
