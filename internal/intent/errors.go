package intent

import "errors"

var (
	// ErrNotRecognized is returned when an utterance matches no intent.
	ErrNotRecognized = errors.New("intent: not recognized")

	// ErrUnknownGesture is returned for a gesture name outside the closed set.
	ErrUnknownGesture = errors.New("intent: unknown gesture")

	// ErrMissingParameter is returned when an intent needs a value the
	// utterance did not carry ("set temperature" without "to N").
	ErrMissingParameter = errors.New("intent: missing parameter")

	// ErrNotCommand is returned by Command for intents that do not map to a
	// command: queries and the emergency gesture.
	ErrNotCommand = errors.New("intent: not a command")
)
