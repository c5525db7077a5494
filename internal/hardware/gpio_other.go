//go:build !linux

package hardware

// DigitalChannel is not available on non-Linux platforms.
type DigitalChannel struct{}

// OpenDigital returns ErrUnsupported on non-Linux platforms.
func OpenDigital(string, string, int) (*DigitalChannel, error) {
	return nil, ErrUnsupported
}

// Name is not implemented on non-Linux platforms.
func (d *DigitalChannel) Name() string { return "" }

// Range is 0..1.
func (d *DigitalChannel) Range() Range { return DigitalRange }

// Value is not implemented on non-Linux platforms.
func (d *DigitalChannel) Value() int { return 0 }

// Write is not implemented on non-Linux platforms.
func (d *DigitalChannel) Write(int) (int, error) { return 0, ErrUnsupported }

// Close is not implemented on non-Linux platforms.
func (d *DigitalChannel) Close() error { return nil }
