package packing

import "errors"

var (
	// ErrInvalidDestination is returned when the trip has no destination.
	ErrInvalidDestination = errors.New("destination is required")
	// ErrInvalidTripLength is returned when the trip length is not positive.
	ErrInvalidTripLength = errors.New("trip_length_days must be positive")
	// ErrInvalidConstraints is returned for negative ceilings or an out of range precipitation probability.
	ErrInvalidConstraints = errors.New("constraints must be non-negative and precipitation within [0,1]")
	// ErrInvalidItem is returned for a caller-supplied item without a name, with an
	// unknown category, priority or safety status, or with negative quantities.
	ErrInvalidItem = errors.New("extra items need a name, known category, priority and safety status, and non-negative quantity, weight and volume")
	// ErrInvalidTuning is returned when fitter tuning values are missing or out of range.
	ErrInvalidTuning = errors.New("tuning must score every priority above zero with a non-negative weight factor")
)
