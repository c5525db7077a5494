package scene

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/nerrad567/hearth/internal/actuator"
)

// MaxScenes bounds the number of stored scenes.
const MaxScenes = 10

// Validation constants.
const (
	maxNameLength     = 100
	maxSlugLength     = 50
	maxDescriptionLen = 500
	minTemperature    = 16
	maxTemperature    = 30
	slugPattern       = `^[a-z0-9]+(?:-[a-z0-9]+)*$`
)

var slugRegex = regexp.MustCompile(slugPattern)

// ValidateScene returns the first validation failure found.
func ValidateScene(s *Scene) error {
	if s == nil {
		return ErrInvalidScene
	}
	if err := ValidateName(s.Name); err != nil {
		return err
	}
	if s.Slug != "" {
		if err := ValidateSlug(s.Slug); err != nil {
			return err
		}
	}
	if s.Description != nil && len(*s.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidScene, maxDescriptionLen)
	}
	if s.Temperature < minTemperature || s.Temperature > maxTemperature {
		return fmt.Errorf("%w: temperature must be %d-%d", ErrInvalidScene, minTemperature, maxTemperature)
	}
	if s.LightLevel < 0 || s.LightLevel > 255 {
		return fmt.Errorf("%w: light_level must be 0-255", ErrInvalidScene)
	}
	if _, err := actuator.ParseLightMode(s.LightMode.String()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	if !s.FanSpeed.Valid() {
		return fmt.Errorf("%w: fan_speed must be OFF, LOW, MEDIUM or HIGH", ErrInvalidScene)
	}
	if s.WindowOpening < 0 || s.WindowOpening > 100 {
		return fmt.Errorf("%w: window_opening must be 0-100", ErrInvalidScene)
	}
	return nil
}

// ValidateName checks a scene name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateSlug checks a slug format.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%w: slug cannot be empty", ErrInvalidSlug)
	}
	if len(slug) > maxSlugLength {
		return fmt.Errorf("%w: slug exceeds %d characters", ErrInvalidSlug, maxSlugLength)
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("%w: must be lowercase alphanumeric with hyphens", ErrInvalidSlug)
	}
	return nil
}

// ValidateTime checks a scheduled activation time.
func ValidateTime(hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)
	}
	return nil
}

// GenerateSlug creates a URL-safe slug from a name: "Movie Night" becomes
// "movie-night".
func GenerateSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == ' ' || r == '_' || r == '-':
			b.WriteRune('-')
		}
	}
	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")

	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}

// GenerateID creates a new scene ID.
func GenerateID() string {
	return uuid.New().String()
}
