package scene

import "errors"

// Domain errors for the scene package.
var (
	// ErrSceneNotFound is returned when no scene matches an ID, slug or name.
	ErrSceneNotFound = errors.New("scene: not found")

	// ErrSceneExists is returned when creating a scene whose ID or slug is taken.
	ErrSceneExists = errors.New("scene: already exists")

	// ErrSceneDisabled is returned when activating a disabled scene.
	ErrSceneDisabled = errors.New("scene: disabled")

	// ErrInvalidScene is returned when scene validation fails.
	ErrInvalidScene = errors.New("scene: invalid")

	// ErrInvalidName is returned when a scene name is empty or too long.
	ErrInvalidName = errors.New("scene: invalid name")

	// ErrInvalidSlug is returned when a slug format is invalid.
	ErrInvalidSlug = errors.New("scene: invalid slug")

	// ErrTooManyScenes is returned when creating a scene beyond MaxScenes.
	ErrTooManyScenes = errors.New("scene: limit reached")

	// ErrInvalidTime is returned for a scheduled activation outside 00:00-23:59.
	ErrInvalidTime = errors.New("scene: invalid time of day")
)
