package earnings

import "errors"

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("gcash earning not found")
	// ErrDuplicateDay is returned when the store already has a record on the target day.
	ErrDuplicateDay = errors.New("gcash earning already exists for this day")
)
