package jobs

import "errors"

var (
	ErrNotFound     = errors.New("job not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidWeight is returned for a weight outside 0..100 or an unknown field.
	ErrInvalidWeight = errors.New("weight must be between 0 and 100")
	// ErrWeightBudget is returned when an increase would push the total above 100.
	ErrWeightBudget = errors.New("total weight cannot exceed 100")
)
