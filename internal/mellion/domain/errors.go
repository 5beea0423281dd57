package mellion

import "errors"

var (
	// ErrInvalidAmount is returned when the investment is not positive.
	ErrInvalidAmount = errors.New("mellion: amount must be strictly positive")
	// ErrNotUnitMultiple is returned when the investment is not an exact
	// MEC multiple.
	ErrNotUnitMultiple = errors.New("mellion: amount must be a multiple of 500")
	// ErrAllocation is returned on an internal reconciliation failure
	// between the tier-count estimator and the distributor. If the amount
	// passed validation this is a defect, not a user error.
	ErrAllocation = errors.New("mellion: allocation error")
	// ErrInvalidTarget is returned for a non-positive search target.
	ErrInvalidTarget = errors.New("mellion: target must be strictly positive")
	// ErrInvalidCycleCount is returned for a non-positive cycle count.
	ErrInvalidCycleCount = errors.New("mellion: cycle count must be strictly positive")
)
