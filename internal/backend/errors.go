package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response. Message carries the envelope's message or detail.
type StatusError struct {
	Op      string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %s: status=%d", e.Op, e.Status)
	}
	return fmt.Sprintf("backend %s: status=%d message=%s", e.Op, e.Status, e.Message)
}

// RejectedError is a 2xx response whose envelope says success=false.
type RejectedError struct {
	Op      string
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("backend %s rejected: %s", e.Op, e.Message)
}

// UserMessage extracts the text that should be shown to the end user.
func UserMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return http.StatusText(se.Status)
	}
	var re *RejectedError
	if errors.As(err, &re) {
		if re.Message != "" {
			return re.Message
		}
		return "request rejected"
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "backend unavailable"
	}
	return "request failed"
}
