package hardware

import (
	"context"
	"time"
)

// Ramp is a monotonic transition of an output from Start to Target over
// Duration. It holds no timer; the owner advances it with elapsed time.
//
// The value at any point is Start + (Target-Start)*Elapsed/Duration using
// integer division, which never overshoots and never reverses.
type Ramp struct {
	Start    int
	Target   int
	Elapsed  time.Duration
	Duration time.Duration
}

// NewRamp creates a ramp. A non-positive duration completes on the first Advance.
func NewRamp(start, target int, d time.Duration) Ramp {
	if d < 0 {
		d = 0
	}
	return Ramp{Start: start, Target: target, Duration: d}
}

// Steps is the number of unit steps between Start and Target.
func (r Ramp) Steps() int {
	return abs(r.Target - r.Start)
}

// StepInterval is Duration / Steps. Zero when there is nothing to move.
func (r Ramp) StepInterval() time.Duration {
	steps := r.Steps()
	if steps == 0 {
		return 0
	}
	return r.Duration / time.Duration(steps)
}

// Done reports whether the ramp has reached its target.
func (r Ramp) Done() bool {
	return r.Start == r.Target || r.Elapsed >= r.Duration
}

// Value returns the output value for the current elapsed time.
func (r Ramp) Value() int {
	if r.Done() {
		return r.Target
	}
	delta := int64(r.Target - r.Start)
	return r.Start + int(delta*int64(r.Elapsed)/int64(r.Duration))
}

// Advance moves the ramp forward by dt and returns the new value and
// whether the ramp is complete.
func (r *Ramp) Advance(dt time.Duration) (int, bool) {
	if dt > 0 {
		r.Elapsed += dt
	}
	return r.Value(), r.Done()
}

// RampTo moves ch to target one unit step at a time, sleeping
// duration/|target-current| between steps. It blocks until the target is
// written or ctx is cancelled. target == current writes nothing.
func RampTo(ctx context.Context, ch Channel, target int, duration time.Duration) error {
	target = ch.Range().Clamp(target)
	current := ch.Value()
	if current == target {
		return nil
	}

	r := NewRamp(current, target, duration)
	interval := r.StepInterval()
	if interval <= 0 {
		_, err := ch.Write(target)
		return err
	}

	step := 1
	if target < current {
		step = -1
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for v := current + step; ; v += step {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if _, err := ch.Write(v); err != nil {
			return err
		}
		if v == target {
			return nil
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
