package points

import "errors"

var (
	ErrCircular  = errors.New("points: circular ordering")
	ErrDuplicate = errors.New("points: duplicate name")
)
