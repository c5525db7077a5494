// Package scene stores named actuator presets and activates them.
//
// A Scene fixes the comfort set-point, light level and mode, fan speed and
// window opening. Scenes persist in SQLite through SQLiteRepository and are
// cached by Registry. Manager activates them through the actuator guards,
// fading the light over the configured transition, and fires scenes
// scheduled for a time of day once per day.
//
// At most MaxScenes scenes exist at a time.
package scene
