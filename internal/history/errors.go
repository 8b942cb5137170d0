package history

import "errors"

var ErrNotFound = errors.New("history entry not found")
