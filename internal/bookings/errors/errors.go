package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrFacilityNotFound = errors.New("facility not found")

	ErrSubfacilityNotFound = errors.New("subfacility not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrSlotUnavailable = errors.New("time slot is not available")

	ErrCapacityExceeded = errors.New("attendees exceed capacity")

	ErrStatusConflict = errors.New("booking status has already been decided")
)
