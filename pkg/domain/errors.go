package domain

import (
	"errors"
	"fmt"
)

// HTTPError is returned when the model server answers with a non-2xx status.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("model server returned status %d", e.Status)
	}
	return fmt.Sprintf("model server returned status %d: %s", e.Status, e.Body)
}

// TransportError wraps connection, read and timeout failures talking to the model server.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model server transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsModelFailure reports whether err is an HTTPError or a TransportError.
func IsModelFailure(err error) bool {
	var httpErr *HTTPError
	var transportErr *TransportError
	return errors.As(err, &httpErr) || errors.As(err, &transportErr)
}
