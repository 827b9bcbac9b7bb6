package pool

import "errors"

var (
	// ErrInvalidArgument is returned when a frame delta is negative or not a number.
	ErrInvalidArgument = errors.New("pool: invalid argument")
	// ErrInvalidSettings is returned by New and Settings.Validate.
	ErrInvalidSettings = errors.New("pool: invalid settings")
)
