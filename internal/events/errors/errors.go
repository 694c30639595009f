package errors

import "errors"

var (
	ErrNotFound            = errors.New("event not found")
	ErrInvalidID           = errors.New("invalid id format")
	ErrFacilityNotFound    = errors.New("facility not found")
	ErrSubfacilityNotFound = errors.New("subfacility not found")
)
