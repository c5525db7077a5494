package automation

import "errors"

// Domain errors for the automation package.
var (
	// ErrInvalidCommand is returned for a malformed command envelope.
	ErrInvalidCommand = errors.New("automation: invalid command")

	// ErrUnknownType is returned for a command type outside the closed set.
	ErrUnknownType = errors.New("automation: unknown command type")

	// ErrUnknownTarget is returned for a target the command type does not know.
	ErrUnknownTarget = errors.New("automation: unknown target")

	// ErrInvalidValue is returned when a command value cannot be parsed.
	ErrInvalidValue = errors.New("automation: invalid value")

	// ErrUnavailable is returned when a command needs a subsystem that is
	// not configured.
	ErrUnavailable = errors.New("automation: subsystem unavailable")
)
