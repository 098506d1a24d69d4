package backend

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when an admin call answers 401
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotFound is returned when a game is missing or the body is empty
var ErrNotFound = errors.New("game not found")

// StatusError is a non-success HTTP status from the backend
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: received status code %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: received status code %d - %s", e.Op, e.StatusCode, e.Body)
}

// RemoteError is a failure the backend reported with success:false
type RemoteError struct {
	Op      string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}
