package ledger

import (
	"fmt"
	"net/http"
)

// StatusError is returned when the API answers with a 4xx or 5xx status.
type StatusError struct {
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// StatusCode exposes the HTTP status to error classifiers.
func (e *StatusError) StatusCode() int {
	return e.Code
}

// NotFound reports whether the API said the record does not exist.
func (e *StatusError) NotFound() bool {
	return e.Code == http.StatusNotFound
}
