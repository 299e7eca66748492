package algebra

import "errors"

var (
	// ErrIncompatible indicates arithmetic between models with different growth
	// constants or cyclic parameters.
	ErrIncompatible = errors.New("algebra: incompatible models")

	// ErrInvalidPeriod indicates a cyclic model with a non-positive period.
	ErrInvalidPeriod = errors.New("algebra: period must be positive")
)
