package canvas

import (
	"fmt"
	"strings"
)

// APIError is the single error kind the catalog client returns.
// Network is true when the request never produced a response (dial, DNS, timeout, reset);
// otherwise the remote answered with an "errors" marker, a non-2xx status or an unreadable payload.
type APIError struct {
	Endpoint string
	Status   int
	Messages []string
	Network  bool
	Err      error
}

func (e *APIError) Error() string {
	switch {
	case e.Network:
		return fmt.Sprintf("canvas: %s: transport: %v", e.Endpoint, e.Err)
	case len(e.Messages) > 0:
		return fmt.Sprintf("canvas: %s: %s", e.Endpoint, strings.Join(e.Messages, "; "))
	case e.Err != nil:
		return fmt.Sprintf("canvas: %s: %v", e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("canvas: %s: status=%d", e.Endpoint, e.Status)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Message returns the first remote message, for one-line user output.
func (e *APIError) Message() string {
	if len(e.Messages) > 0 {
		return e.Messages[0]
	}
	return e.Error()
}
