package intent

import (
	"fmt"
	"strings"
)

// Gesture is a recognised hand gesture.
type Gesture string

// Gestures reported by the gesture sensor.
const (
	SwipeLeft  Gesture = "swipe_left"
	SwipeRight Gesture = "swipe_right"
	SwipeUp    Gesture = "swipe_up"
	SwipeDown  Gesture = "swipe_down"
	Circle     Gesture = "circle"
	Wave       Gesture = "wave"
	Hold       Gesture = "hold"
)

var gestureKinds = map[Gesture]Kind{
	SwipeLeft:  LightsOff,
	SwipeRight: LightsOn,
	SwipeUp:    FanUp,
	SwipeDown:  FanDown,
	Circle:     ToggleAutoFan,
	Wave:       ToggleDoor,
	Hold:       Emergency,
}

// ParseGesture converts a gesture name.
func ParseGesture(s string) (Gesture, error) {
	g := Gesture(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := gestureKinds[g]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGesture, s)
	}
	return g, nil
}

// FromGesture returns the intent a gesture stands for.
func FromGesture(g Gesture) (Intent, error) {
	kind, ok := gestureKinds[g]
	if !ok {
		return Intent{}, fmt.Errorf("%w: %q", ErrUnknownGesture, string(g))
	}
	return Intent{Kind: kind}, nil
}
