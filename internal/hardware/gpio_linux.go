//go:build linux

package hardware

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// DigitalChannel drives one output line through the GPIO character device.
type DigitalChannel struct {
	mu    sync.Mutex
	name  string
	chip  *gpiocdev.Chip
	line  *gpiocdev.Line
	value int
}

// OpenDigital requests line offset on chip as an output driven low.
func OpenDigital(name, chip string, offset int) (*DigitalChannel, error) {
	c, err := gpiocdev.NewChip(chip, gpiocdev.WithConsumer("hearth-"+name))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chip, err)
	}

	line, err := c.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("request line %d: %w", offset, err)
	}

	return &DigitalChannel{name: name, chip: c, line: line}, nil
}

// Name returns the channel name.
func (d *DigitalChannel) Name() string { return d.name }

// Range is 0..1.
func (d *DigitalChannel) Range() Range { return DigitalRange }

// Value returns the last applied level.
func (d *DigitalChannel) Value() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Write drives the line. Any positive value is high.
func (d *DigitalChannel) Write(v int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.line == nil {
		return d.value, ErrClosed
	}
	v = DigitalRange.Clamp(v)
	if err := d.line.SetValue(v); err != nil {
		return d.value, fmt.Errorf("set line %s: %w", d.name, err)
	}
	d.value = v
	return v, nil
}

// Close drives the line low and releases it.
func (d *DigitalChannel) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	if d.line != nil {
		if err := d.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drive %s low: %w", d.name, err))
		}
		if err := d.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %s: %w", d.name, err))
		}
		d.line = nil
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		d.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
