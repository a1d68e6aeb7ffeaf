package salesapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain-specific client errors. Use errors.Is/As for classification.
var (
	// ErrRequestFailed wraps transport-level failures (timeouts, DNS,
	// connection resets). UI layers may re-label it into a connectivity
	// message; the client itself does not.
	ErrRequestFailed = errors.New("request to sales backend failed")
	// ErrInvalidResponse is returned when the response body is not a valid
	// meta/data envelope.
	ErrInvalidResponse = errors.New("invalid response from sales backend")
	// ErrEmptyBaseURL guards client construction.
	ErrEmptyBaseURL = errors.New("empty sales backend base URL")
)

// Error is a backend rejection: the envelope carried a non-200 meta code.
// Message is passed through verbatim for display, with a generic fallback
// when the backend sent none.
type Error struct {
	Code    int
	Status  string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request rejected with code %d", e.Code)
}

// IsUnauthorized reports whether the rejection means the credential is no
// longer valid.
func (e *Error) IsUnauthorized() bool {
	return e.Code == http.StatusUnauthorized
}
