package serial

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPollable indicates the port can't be polled without blocking.
	ErrNotPollable = errors.New("port not pollable")
)

// ErrUnknownScheme indicates the port URL scheme is not supported.
type ErrUnknownScheme struct {
	Scheme string
}

// Error implements error.
func (e *ErrUnknownScheme) Error() string {
	return fmt.Sprintf("unknown port URL scheme: %q", e.Scheme)
}
