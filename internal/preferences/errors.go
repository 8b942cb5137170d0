package preferences

import "errors"

var (
	ErrRead  = errors.New("failed to read preferences")
	ErrWrite = errors.New("failed to write preferences")
)
