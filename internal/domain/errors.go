package domain

import "errors"

// Restaurant validation errors
var (
	ErrInvalidDayOfWeek   = errors.New("day of week must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidTimeRange   = errors.New("opening and closing time must differ")
	ErrInvalidTimeFormat  = errors.New("time must be formatted as HH:MM or HH:MM:SS")
	ErrEmptyPhoto         = errors.New("photo reference is required")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrPhotoNotFound      = errors.New("photo not found")
)
