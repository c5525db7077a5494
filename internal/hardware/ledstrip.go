package hardware

import (
	"fmt"
	"io"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
)

// frameWriter accepts one frame of packed RGB bytes. *nrzled.Dev is one.
type frameWriter interface {
	Write(p []byte) (int, error)
	Halt() error
}

// LEDStrip drives a WS281x strip through the periph.io NRZ encoder.
type LEDStrip struct {
	mu     sync.Mutex
	dev    frameWriter
	port   io.Closer
	staged []byte
}

// OpenLEDStrip opens the SPI port (empty picks the first registered one)
// and blanks a strip of n pixels.
func OpenLEDStrip(port string, n int) (*LEDStrip, error) {
	if err := initHost(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", port, err)
	}

	opts := nrzled.DefaultOpts
	opts.NumPixels = n
	opts.Channels = 3
	dev, err := nrzled.NewSPI(p, &opts)
	if err != nil {
		p.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("nrzled on %q: %w", port, err)
	}

	s := newLEDStrip(dev, p, n)
	if err := s.Show(); err != nil {
		s.Close() //nolint:errcheck // already failing
		return nil, err
	}
	return s, nil
}

func newLEDStrip(dev frameWriter, port io.Closer, n int) *LEDStrip {
	return &LEDStrip{dev: dev, port: port, staged: make([]byte, 3*n)}
}

// Len returns the pixel count.
func (s *LEDStrip) Len() int { return len(s.staged) / 3 }

// SetPixel stages pixel i. Out-of-range indexes are ignored.
func (s *LEDStrip) SetPixel(i int, c colorful.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || 3*i >= len(s.staged) {
		return
	}
	r, g, b := c.Clamped().RGB255()
	s.staged[3*i], s.staged[3*i+1], s.staged[3*i+2] = r, g, b
}

// Show writes the staged frame to the strip.
func (s *LEDStrip) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return ErrClosed
	}
	if _, err := s.dev.Write(s.staged); err != nil {
		return fmt.Errorf("strip write: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the SPI port.
func (s *LEDStrip) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return nil
	}
	err := s.dev.Halt()
	if s.port != nil {
		if cerr := s.port.Close(); err == nil {
			err = cerr
		}
	}
	s.dev = nil
	if err != nil {
		return fmt.Errorf("close strip: %w", err)
	}
	return nil
}
