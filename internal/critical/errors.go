package critical

import (
	"errors"
	"fmt"
)

// ErrInvariant indicates that a caller-side invariant on the critical points
// of a cycle does not hold.
var ErrInvariant = errors.New("critical: invariant violated")

// InvariantError wraps ErrInvariant with the offending window.
type InvariantError struct {
	Window int
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("window %d: %s: %s", e.Window, ErrInvariant, e.Reason)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}
