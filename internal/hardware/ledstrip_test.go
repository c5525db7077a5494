package hardware

import (
	"bytes"
	"errors"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

type recordingDev struct {
	frames   [][]byte
	halted   bool
	writeErr error
}

func (d *recordingDev) Write(p []byte) (int, error) {
	if d.writeErr != nil {
		return 0, d.writeErr
	}
	d.frames = append(d.frames, append([]byte(nil), p...))
	return len(p), nil
}

func (d *recordingDev) Halt() error {
	d.halted = true
	return nil
}

type recordingPort struct{ closed bool }

func (p *recordingPort) Close() error {
	p.closed = true
	return nil
}

func TestLEDStrip_ShowWritesPackedRGB(t *testing.T) {
	dev := &recordingDev{}
	s := newLEDStrip(dev, nil, 3)

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	s.SetPixel(0, colorful.Color{R: 1})
	s.SetPixel(2, colorful.Color{G: 1, B: 2}) // clamped
	s.SetPixel(3, colorful.Color{R: 1})       // ignored
	s.SetPixel(-1, colorful.Color{R: 1})      // ignored
	if len(dev.frames) != 0 {
		t.Fatal("SetPixel should only stage")
	}

	if err := s.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	want := []byte{255, 0, 0, 0, 0, 0, 0, 255, 255}
	if len(dev.frames) != 1 || !bytes.Equal(dev.frames[0], want) {
		t.Errorf("frames = %v, want [%v]", dev.frames, want)
	}
}

func TestLEDStrip_ShowError(t *testing.T) {
	fault := errors.New("spi fault")
	s := newLEDStrip(&recordingDev{writeErr: fault}, nil, 1)
	if err := s.Show(); !errors.Is(err, fault) {
		t.Errorf("Show() error = %v, want %v", err, fault)
	}
}

func TestLEDStrip_Close(t *testing.T) {
	dev := &recordingDev{}
	port := &recordingPort{}
	s := newLEDStrip(dev, port, 2)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !dev.halted || !port.closed {
		t.Errorf("halted = %v closed = %v, want both", dev.halted, port.closed)
	}
	if err := s.Show(); !errors.Is(err, ErrClosed) {
		t.Errorf("Show() after Close error = %v, want ErrClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestOpenStrip(t *testing.T) {
	s, err := OpenStrip(DriverFake, "", 5)
	if err != nil {
		t.Fatalf("OpenStrip(fake) error = %v", err)
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}
	if _, err := OpenStrip("dmx", "", 5); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("OpenStrip(dmx) error = %v, want ErrUnknownDriver", err)
	}
}
