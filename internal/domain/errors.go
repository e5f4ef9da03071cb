package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrEmptyID = errors.New("cma: empty id")

// StatusError is an upstream reply with a non-success status, or a success
// status whose body could not be read as a CMA payload.
type StatusError struct {
	Code       int
	Status     string
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("remote %d: %s", e.Code, e.Body)
	}
	return fmt.Sprintf("remote %d", e.Code)
}

// Text is the human-readable reason for the status.
func (e *StatusError) Text() string {
	if e.Status != "" {
		return e.Status
	}
	if t := http.StatusText(e.Code); t != "" {
		return t
	}
	return "Failed to load data"
}

// Transient reports whether retrying the same request may succeed.
func (e *StatusError) Transient() bool {
	switch e.Code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return e.Code >= 500
}

// NetworkError wraps failures that happened before any response arrived.
type NetworkError struct{ Err error }

func (e *NetworkError) Error() string { return "network: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// FetchErrorMessage renders err for the error banner.
func FetchErrorMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("HTTP %d: %s", se.Code, se.Text())
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return "Network error: " + ne.Err.Error()
	}
	if err == nil {
		return "Network error: Failed to connect to server"
	}
	return "Network error: " + err.Error()
}
