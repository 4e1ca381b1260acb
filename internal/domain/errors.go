package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrAlreadySubscribed   = errors.New("already subscribed")
	ErrPopupClosed         = errors.New("payment window closed")
	ErrLocationUnavailable = errors.New("location unavailable")
)

// APIError reports a non-success response from one of the backend APIs. The
// status code is kept so callers can surface it in toasts or logs.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: %d", e.Status)
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
