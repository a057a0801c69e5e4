package domain

import "errors"

var (
	// Neither origin nor destination station was supplied.
	ErrMissingStation = errors.New("at least one of from_station or to_station is required")

	// Time bounds are inverted or outside 0..24.
	ErrInvalidTimeWindow = errors.New("start_time must be before end_time within 0..24")

	// A render for the same session is still in flight.
	ErrRenderPending = errors.New("a render is already in progress for this session")
)
