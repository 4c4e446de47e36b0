package normalize

import (
	"errors"
	"fmt"
	"net/http"
)

// UpstreamError is a hard failure whose status is surfaced to the caller.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (status %d): %v", e.Message, e.Status, e.Err)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var upErr *UpstreamError
	if errors.As(err, &upErr) && upErr.Status > 0 {
		return upErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the caller-facing message carried by err.
func MessageOf(err error) string {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Message
	}
	return "internal server error"
}
