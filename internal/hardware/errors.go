package hardware

import "errors"

var (
	// ErrInitFailed is returned by Attach when every attempt failed.
	ErrInitFailed = errors.New("hardware: init failed")

	// ErrUnsupported is returned when a driver is not available on this platform.
	ErrUnsupported = errors.New("hardware: not supported on this platform")

	// ErrUnknownDriver is returned for a driver name with no implementation.
	ErrUnknownDriver = errors.New("hardware: unknown driver")

	// ErrPinNotFound is returned when a named pin does not exist.
	ErrPinNotFound = errors.New("hardware: pin not found")

	// ErrClosed is returned when writing to a closed channel.
	ErrClosed = errors.New("hardware: channel closed")
)
