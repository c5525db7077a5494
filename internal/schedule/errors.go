package schedule

import "errors"

// Domain errors for the schedule package.
var (
	// ErrScheduleNotFound is returned when a schedule ID does not exist.
	ErrScheduleNotFound = errors.New("schedule: not found")

	// ErrScheduleExists is returned when creating a schedule with an ID that already exists.
	ErrScheduleExists = errors.New("schedule: already exists")

	// ErrInvalidSchedule is returned when schedule validation fails.
	ErrInvalidSchedule = errors.New("schedule: invalid")

	// ErrInvalidHour is returned when a window hour is outside 0..23 or the window is empty.
	ErrInvalidHour = errors.New("schedule: invalid hour")

	// ErrUnsupportedDevice is returned for devices schedules cannot govern.
	ErrUnsupportedDevice = errors.New("schedule: unsupported device")

	// ErrInvalidValue is returned when the payload does not suit the device.
	ErrInvalidValue = errors.New("schedule: invalid value")
)
