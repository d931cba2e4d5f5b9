package relationships

import "errors"

var (
	ErrSelfMatch     = errors.New("cannot match a user with themselves")
	ErrMatchNotFound = errors.New("match not found")
)
