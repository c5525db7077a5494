package actuator

import "errors"

var (
	// ErrUnknownDevice is returned when parsing an unrecognised device name.
	ErrUnknownDevice = errors.New("actuator: unknown device")

	// ErrInvalidValue is returned when parsing an unrecognised state value.
	ErrInvalidValue = errors.New("actuator: invalid value")
)
