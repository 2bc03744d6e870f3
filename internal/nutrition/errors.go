package nutrition

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse means an AI payload could not be read as the
	// expected structure. Callers treat it like a failed upstream call.
	ErrMalformedResponse = errors.New("malformed ai response")

	// ErrUnrecognized means the AI understood the request but found nothing
	// to estimate (not food, empty photo).
	ErrUnrecognized = errors.New("unrecognized")
)

// ValidationError reports a profile or input field that cannot feed the
// target arithmetic.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
