package engine

import "fmt"

// APIError reports a non-success response from the engine API. The HTTP
// status is kept so callers can classify the failure without string matching.
type APIError struct {
	Status  int
	Op      string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("engine %s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("engine %s: status %d", e.Op, e.Status)
}
