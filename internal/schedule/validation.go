package schedule

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nerrad567/hearth/internal/actuator"
)

const (
	maxNameLength = 100
	hoursPerDay   = 24
)

// ValidateSchedule checks a schedule before it is stored.
func ValidateSchedule(s *Schedule) error {
	if s == nil {
		return ErrInvalidSchedule
	}

	name := strings.TrimSpace(s.Name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidSchedule)
	}
	if len(s.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidSchedule, maxNameLength)
	}

	switch s.Device {
	case actuator.DeviceFan, actuator.DeviceWindow, actuator.DeviceDoor:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDevice, s.Device)
	}

	if s.StartHour < 0 || s.StartHour >= hoursPerDay {
		return fmt.Errorf("%w: start_hour %d must be 0-23", ErrInvalidHour, s.StartHour)
	}
	if s.EndHour < 0 || s.EndHour >= hoursPerDay {
		return fmt.Errorf("%w: end_hour %d must be 0-23", ErrInvalidHour, s.EndHour)
	}
	if s.StartHour == s.EndHour {
		return fmt.Errorf("%w: start_hour and end_hour are both %d", ErrInvalidHour, s.StartHour)
	}

	if _, err := s.Payload(); err != nil {
		return err
	}
	return nil
}

// GenerateID creates a new schedule ID.
func GenerateID() string {
	return uuid.New().String()
}
