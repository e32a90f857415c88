package observability

import "github.com/google/uuid"

// NewRunID generates a fresh correlation ID for one CLI invocation.
func NewRunID() string {
	return uuid.NewString()
}
