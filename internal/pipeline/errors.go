package pipeline

import "errors"

var ErrWindowRange = errors.New("pipeline: window out of range")
