package controller

import "errors"

var (
	// ErrStopped is returned when the loop has exited before answering.
	ErrStopped = errors.New("controller: stopped")

	// ErrAlreadyRunning is returned by a second concurrent call to Run.
	ErrAlreadyRunning = errors.New("controller: already running")
)
