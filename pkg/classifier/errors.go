package classifier

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkspaceExhausted indicates the model's tensors don't fit the
	// workspace.
	ErrWorkspaceExhausted = errors.New("allocate tensors failed: workspace exhausted")
	// ErrInputLength indicates the encoded input has an unexpected length.
	ErrInputLength = errors.New("input length mismatch")
)

// MissingOpError indicates the model needs an operation the backend can't
// provide.
type MissingOpError struct {
	Op string
}

// Error implements error.
func (e *MissingOpError) Error() string {
	return fmt.Sprintf("failed to add %s op", e.Op)
}
