package hardware

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRamp_Monotonic(t *testing.T) {
	tests := []struct {
		name          string
		start, target int
	}{
		{name: "upward", start: 0, target: 90},
		{name: "downward", start: 180, target: 45},
		{name: "single step", start: 10, target: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRamp(tt.start, tt.target, time.Second)
			prev := tt.start
			for i := 0; i < 200; i++ {
				v, done := r.Advance(7 * time.Millisecond)
				if tt.target > tt.start && v < prev {
					t.Fatalf("value decreased from %d to %d", prev, v)
				}
				if tt.target < tt.start && v > prev {
					t.Fatalf("value increased from %d to %d", prev, v)
				}
				prev = v
				if done {
					break
				}
			}
			if prev != tt.target {
				t.Errorf("final value = %d, want %d", prev, tt.target)
			}
			if !r.Done() {
				t.Error("ramp should be done")
			}
		})
	}
}

func TestRamp_NoOvershoot(t *testing.T) {
	r := NewRamp(0, 90, 100*time.Millisecond)
	v, done := r.Advance(time.Hour)
	if v != 90 || !done {
		t.Errorf("Advance(1h) = (%d, %v), want (90, true)", v, done)
	}
}

func TestRamp_Degenerate(t *testing.T) {
	r := NewRamp(45, 45, time.Second)
	if !r.Done() {
		t.Error("ramp to the same value should be done immediately")
	}
	if got := r.StepInterval(); got != 0 {
		t.Errorf("StepInterval() = %v, want 0", got)
	}
	if got := r.Steps(); got != 0 {
		t.Errorf("Steps() = %d, want 0", got)
	}
}

func TestRamp_ZeroDuration(t *testing.T) {
	r := NewRamp(0, 180, 0)
	v, done := r.Advance(0)
	if v != 180 || !done {
		t.Errorf("Advance(0) = (%d, %v), want (180, true)", v, done)
	}
}

func TestRamp_StepInterval(t *testing.T) {
	r := NewRamp(0, 90, 900*time.Millisecond)
	if got := r.StepInterval(); got != 10*time.Millisecond {
		t.Errorf("StepInterval() = %v, want 10ms", got)
	}
}

func TestRamp_Midpoint(t *testing.T) {
	r := NewRamp(0, 100, time.Second)
	v, done := r.Advance(500 * time.Millisecond)
	if v != 50 || done {
		t.Errorf("Advance(500ms) = (%d, %v), want (50, false)", v, done)
	}
}

func TestRampTo_StepsThroughEveryValue(t *testing.T) {
	ch := NewFakeChannel("door", AngleRange)

	if err := RampTo(context.Background(), ch, 5, 5*time.Millisecond); err != nil {
		t.Fatalf("RampTo() error = %v", err)
	}

	want := []int{1, 2, 3, 4, 5}
	got := ch.Writes()
	if len(got) != len(want) {
		t.Fatalf("writes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("writes = %v, want %v", got, want)
		}
	}
}

func TestRampTo_SameValueWritesNothing(t *testing.T) {
	ch := NewFakeChannel("door", AngleRange)

	if err := RampTo(context.Background(), ch, 0, time.Second); err != nil {
		t.Fatalf("RampTo() error = %v", err)
	}
	if n := len(ch.Writes()); n != 0 {
		t.Errorf("expected no writes, got %d", n)
	}
}

func TestRampTo_ClampsTarget(t *testing.T) {
	ch := NewFakeChannel("fan", DutyRange)

	if err := RampTo(context.Background(), ch, 999, 0); err != nil {
		t.Fatalf("RampTo() error = %v", err)
	}
	if ch.Value() != 255 {
		t.Errorf("Value() = %d, want 255", ch.Value())
	}
}

func TestRampTo_Cancelled(t *testing.T) {
	ch := NewFakeChannel("window", AngleRange)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RampTo(ctx, ch, 10, 10*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RampTo() error = %v, want context.Canceled", err)
	}
	if ch.Value() == 10 {
		t.Error("cancelled ramp should not reach the target")
	}
}
