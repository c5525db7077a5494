package scene

import (
	"time"

	"github.com/nerrad567/hearth/internal/actuator"
)

// Scene is a named actuator preset.
type Scene struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Enabled     bool    `json:"enabled"`

	// Temperature replaces the comfort set-point (16..30 °C).
	Temperature float64 `json:"temperature"`

	// LightLevel is the target brightness (0..255). Ignored for the party
	// and alert light modes, which run their own light shows.
	LightLevel int                `json:"light_level"`
	LightMode  actuator.LightMode `json:"light_mode"`

	FanSpeed      actuator.FanSpeed `json:"fan_speed"`
	WindowOpening int               `json:"window_opening"`

	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeepCopy returns an independent copy of the scene.
func (s *Scene) DeepCopy() *Scene {
	if s == nil {
		return nil
	}
	cpy := *s
	if s.Description != nil {
		d := *s.Description
		cpy.Description = &d
	}
	return &cpy
}

// Activation records one scene activation and which parts the actuators
// accepted. Rejected parts were soft-rejected by a mode guard or an
// inactive device.
type Activation struct {
	SceneID     string          `json:"scene_id"`
	Name        string          `json:"name"`
	Trigger     string          `json:"trigger"`
	ActivatedAt time.Time       `json:"activated_at"`
	Applied     map[string]bool `json:"applied"`
}

// Activation triggers.
const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
)

// Fully reports whether every part of the scene was applied.
func (a Activation) Fully() bool {
	for _, ok := range a.Applied {
		if !ok {
			return false
		}
	}
	return true
}

// Timer activates a scene once per day at Hour:Minute site time.
type Timer struct {
	Scene  string `json:"scene"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`

	// lastFired is the site-local date the timer last fired on (YYYY-MM-DD).
	lastFired string
}
