package hardware

import (
	"fmt"
	"time"
)

// Driver names.
const (
	DriverFake  = "fake"
	DriverGPIO  = "gpio"
	DriverPWM   = "pwm"
	DriverServo = "servo"

	// DriverNRZLED is a WS281x strip on SPI. Strips only.
	DriverNRZLED = "nrzled"
)

// Spec describes how to open one output.
type Spec struct {
	Name        string
	Driver      string
	Chip        string
	Line        int
	Pin         string
	FrequencyHz int
	MinPulse    time.Duration
	MaxPulse    time.Duration

	// Range is used by the fake driver. Real drivers report their own.
	Range Range
}

// OpenerFor returns the Opener for spec's driver.
func OpenerFor(spec Spec) (Opener, error) {
	switch spec.Driver {
	case DriverFake, "":
		return func() (Channel, error) {
			return NewFakeChannel(spec.Name, spec.Range), nil
		}, nil
	case DriverGPIO:
		return func() (Channel, error) {
			ch, err := OpenDigital(spec.Name, spec.Chip, spec.Line)
			if err != nil {
				return nil, err
			}
			return ch, nil
		}, nil
	case DriverPWM:
		return func() (Channel, error) {
			return openPWM(spec.Name, spec.Pin, PWMOptions{Mode: PWMDuty, FrequencyHz: spec.FrequencyHz})
		}, nil
	case DriverServo:
		return func() (Channel, error) {
			return openPWM(spec.Name, spec.Pin, PWMOptions{
				Mode:        PWMServo,
				FrequencyHz: spec.FrequencyHz,
				MinPulse:    spec.MinPulse,
				MaxPulse:    spec.MaxPulse,
			})
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, spec.Driver)
	}
}

func openPWM(name, pin string, opts PWMOptions) (Channel, error) {
	ch, err := OpenPWM(name, pin, opts)
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// OpenStrip opens an addressable strip of n pixels. port is the SPI port
// for the nrzled driver and ignored by the fake.
func OpenStrip(driver, port string, n int) (Strip, error) {
	switch driver {
	case DriverFake, "":
		return NewFakeStrip(n), nil
	case DriverNRZLED:
		s, err := OpenLEDStrip(port, n)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: strip %q", ErrUnknownDriver, driver)
	}
}
