package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned for HTTP 401. By the time the caller sees
	// it the session has already been invalidated.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("server unavailable")
)

// TransportError reports that no HTTP response was obtained: DNS failure,
// refused connection, timeout or a cancelled context.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// StatusError is an application error: a non-2xx, non-401 response.
// Message is the server-provided message or a caller-chosen fallback.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

const (
	MsgSessionExpired   = "Session expired. Please log in again."
	MsgConnectionFailed = "Connection failed."
)

// UserMessage converts any error returned by this package (or a validation
// error) into the text shown to the user.
func UserMessage(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return MsgSessionExpired
	case errors.Is(err, ErrTransport):
		return MsgConnectionFailed
	case errors.As(err, &se):
		return se.Message
	default:
		return err.Error()
	}
}
