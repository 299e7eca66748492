package onb

import "errors"

var (
	// ErrTooFewSamples indicates a window with fewer than two samples or zero
	// duration.
	ErrTooFewSamples = errors.New("onb: window needs at least two samples spanning a positive duration")

	// ErrLengthMismatch indicates time and value slices of different lengths.
	ErrLengthMismatch = errors.New("onb: time and value lengths differ")
)
