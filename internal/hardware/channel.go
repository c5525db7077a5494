package hardware

// Range is the inclusive bound of a channel's values.
type Range struct {
	Min int
	Max int
}

// Common output ranges.
var (
	// AngleRange is a hobby servo's travel in degrees.
	AngleRange = Range{Min: 0, Max: 180}

	// DutyRange is an 8-bit PWM duty.
	DutyRange = Range{Min: 0, Max: 255}

	// DigitalRange is a single on/off line.
	DigitalRange = Range{Min: 0, Max: 1}
)

// Clamp returns v limited to the range.
func (r Range) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether v is inside the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Channel is one physical output.
//
// Write clamps the value into Range, performs the output and returns the
// value applied. Value returns the last applied value.
type Channel interface {
	Name() string
	Range() Range
	Value() int
	Write(v int) (int, error)
	Close() error
}

// Toner is implemented by channels that can drive a tone, such as a
// buzzer on a PWM-capable pin. A frequency of zero silences the output.
type Toner interface {
	Tone(freqHz int) error
}

// Logger is the logging interface used by the hardware package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
