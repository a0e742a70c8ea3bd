package account

import (
	"errors"
	"fmt"
)

// ErrUnavailable indicates the account API is not configured or could not be reached
var ErrUnavailable = errors.New("account service unavailable")

// ErrNotLoggedIn indicates no session token is stored
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx answer from the account API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("account API error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("account API error: HTTP %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
