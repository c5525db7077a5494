package sensor

import (
	"github.com/asecurityteam/rolling"
)

// DefaultSmoothingWindow is the number of readings averaged per field.
const DefaultSmoothingWindow = 5

// Smoother averages each numeric field over the last N readings.
// Boolean fields and the timestamp pass through from the latest reading.
type Smoother struct {
	size    int
	count   int
	windows map[Field]*rolling.PointPolicy
}

// NewSmoother creates a smoother over size readings.
func NewSmoother(size int) *Smoother {
	if size <= 0 {
		size = DefaultSmoothingWindow
	}
	s := &Smoother{size: size, windows: make(map[Field]*rolling.PointPolicy, len(Fields))}
	for _, f := range Fields {
		s.windows[f] = rolling.NewPointPolicy(rolling.NewWindow(size))
	}
	return s
}

// Add feeds r and returns the smoothed reading.
func (s *Smoother) Add(r Reading) Reading {
	for _, f := range Fields {
		s.windows[f].Append(r.Get(f))
	}
	if s.count < s.size {
		s.count++
	}

	out := r
	for _, f := range Fields {
		out.Set(f, s.average(f))
	}
	return out
}

// average divides by the points seen so far; unfilled buckets hold zero.
func (s *Smoother) average(f Field) float64 {
	if s.count == 0 {
		return 0
	}
	return s.windows[f].Reduce(rolling.Sum) / float64(s.count)
}
