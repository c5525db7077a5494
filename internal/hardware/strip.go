package hardware

import (
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Strip is an addressable LED strip. SetPixel stages a colour; Show
// latches every staged pixel onto the strip.
type Strip interface {
	Len() int
	SetPixel(i int, c colorful.Color)
	Show() error
	Close() error
}

// FakeStrip keeps pixels in memory.
type FakeStrip struct {
	mu     sync.Mutex
	staged []colorful.Color
	shown  []colorful.Color
	shows  int
}

// NewFakeStrip creates a strip of n black pixels.
func NewFakeStrip(n int) *FakeStrip {
	return &FakeStrip{
		staged: make([]colorful.Color, n),
		shown:  make([]colorful.Color, n),
	}
}

// Len returns the pixel count.
func (s *FakeStrip) Len() int { return len(s.staged) }

// SetPixel stages pixel i. Out-of-range indexes are ignored.
func (s *FakeStrip) SetPixel(i int, c colorful.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.staged) {
		return
	}
	s.staged[i] = c.Clamped()
}

// Show latches the staged pixels.
func (s *FakeStrip) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.shown, s.staged)
	s.shows++
	return nil
}

// Close is a no-op.
func (s *FakeStrip) Close() error { return nil }

// Pixel returns the latched colour of pixel i.
func (s *FakeStrip) Pixel(i int) colorful.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown[i]
}

// Shows returns how many times Show was called.
func (s *FakeStrip) Shows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shows
}
