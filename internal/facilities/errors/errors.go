package errors

import "errors"

var (
	ErrNotFound            = errors.New("facility not found")
	ErrSubfacilityNotFound = errors.New("subfacility not found")
	ErrInvalidID           = errors.New("invalid id format")
)
