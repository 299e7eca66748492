package series

import "errors"

var (
	ErrNoHeader      = errors.New("series: missing header row")
	ErrUnknownColumn = errors.New("series: unknown column")
	ErrNoData        = errors.New("series: no valid samples")
	ErrTooFewSamples = errors.New("series: too few samples")
	ErrNoPeriodicity = errors.New("series: no dominant frequency")
)
