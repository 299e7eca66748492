package eps

import "errors"

var (
	// ErrEmpty indicates a lookup against an empty set of points.
	ErrEmpty = errors.New("eps: empty point set")
)
