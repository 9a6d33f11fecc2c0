package llm

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// ModelExhaustedError indicates every configured model was exhausted by
// transient failures. It carries the last underlying error and the total
// attempt count across all models.
type ModelExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ModelExhaustedError) Error() string {
	return fmt.Sprintf("all models exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ModelExhaustedError) Unwrap() error {
	return e.Err
}

// MalformedResponseError indicates a reachable model returned text that is
// not valid JSON, or a payload missing required keys. Not retried: malformed
// output from a live model is not a transient condition.
type MalformedResponseError struct {
	Message string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed model response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed model response: %s", e.Message)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// IsTransient reports whether err looks like a rate-limit or quota condition
// worth retrying on the same model.
func IsTransient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code == 503
	}
	return false
}
