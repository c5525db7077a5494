package hardware

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// PWMMode selects how a PWMChannel maps values onto the pin.
type PWMMode int

const (
	// PWMDuty maps 0..255 linearly onto the duty cycle.
	PWMDuty PWMMode = iota
	// PWMServo maps 0..180 degrees onto a pulse width at the servo frequency.
	PWMServo
)

// DefaultServoFrequency is the standard hobby servo frame rate.
const DefaultServoFrequency = 50 * physic.Hertz

var (
	hostOnce sync.Once
	hostErr  error
)

func initHost() error {
	hostOnce.Do(func() {
		_, hostErr = host.Init()
	})
	return hostErr
}

// PWMOptions configures a PWMChannel.
type PWMOptions struct {
	Mode        PWMMode
	FrequencyHz int
	MinPulse    time.Duration
	MaxPulse    time.Duration
}

// PWMChannel drives a PWM-capable pin as a servo or a duty-cycle output.
type PWMChannel struct {
	mu    sync.Mutex
	name  string
	pin   gpio.PinIO
	opts  PWMOptions
	freq  physic.Frequency
	rng   Range
	value int
}

// OpenPWM looks up pinName through periph.io and parks it at the bottom of
// its range.
func OpenPWM(name, pinName string, opts PWMOptions) (*PWMChannel, error) {
	if err := initHost(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, pinName)
	}

	p := &PWMChannel{name: name, pin: pin, opts: opts}
	switch opts.Mode {
	case PWMServo:
		p.rng = AngleRange
		p.freq = DefaultServoFrequency
	default:
		p.rng = DutyRange
		p.freq = 1 * physic.KiloHertz
	}
	if opts.FrequencyHz > 0 {
		p.freq = physic.Frequency(opts.FrequencyHz) * physic.Hertz
	}

	if _, err := p.Write(p.rng.Min); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the channel name.
func (p *PWMChannel) Name() string { return p.name }

// Range is 0..180 for servos and 0..255 for duty outputs.
func (p *PWMChannel) Range() Range { return p.rng }

// Value returns the last applied value.
func (p *PWMChannel) Value() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Write clamps v and applies it as a duty cycle.
func (p *PWMChannel) Write(v int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pin == nil {
		return p.value, ErrClosed
	}
	v = p.rng.Clamp(v)
	if err := p.pin.PWM(p.duty(v), p.freq); err != nil {
		return p.value, fmt.Errorf("pwm %s: %w", p.name, err)
	}
	p.value = v
	return v, nil
}

// Tone drives a 50% square wave at freqHz. Zero drives the pin low.
func (p *PWMChannel) Tone(freqHz int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pin == nil {
		return ErrClosed
	}
	if freqHz <= 0 {
		return p.pin.Out(gpio.Low)
	}
	return p.pin.PWM(gpio.DutyHalf, physic.Frequency(freqHz)*physic.Hertz)
}

// Close stops the waveform and releases the pin.
func (p *PWMChannel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pin == nil {
		return nil
	}
	err := p.pin.Halt()
	p.pin = nil
	if err != nil {
		return fmt.Errorf("halt %s: %w", p.name, err)
	}
	return nil
}

func (p *PWMChannel) duty(v int) gpio.Duty {
	if p.opts.Mode != PWMServo {
		return gpio.Duty(int64(gpio.DutyMax) * int64(v) / int64(DutyRange.Max))
	}
	return servoDuty(v, p.opts.MinPulse, p.opts.MaxPulse, p.freq)
}

// servoDuty converts an angle to the duty cycle that produces the matching
// pulse width at frequency f.
func servoDuty(angle int, minPulse, maxPulse time.Duration, f physic.Frequency) gpio.Duty {
	pulse := minPulse + (maxPulse-minPulse)*time.Duration(angle)/time.Duration(AngleRange.Max)
	period := f.Period()
	if period <= 0 {
		return 0
	}
	return gpio.Duty(int64(gpio.DutyMax) * int64(pulse) / int64(period))
}
