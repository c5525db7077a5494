package emergency

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeActuators struct {
	shutdowns int
	restores  int
}

func (f *fakeActuators) EmergencyShutdown() { f.shutdowns++ }
func (f *fakeActuators) RestoreSystem()     { f.restores++ }

func fixedClock() time.Time {
	return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
}

func TestController_TriggerIsUnconditional(t *testing.T) {
	act := &fakeActuators{}
	c := New(act, Options{Clock: fixedClock})
	ctx := context.Background()

	c.Trigger(ctx, ReasonSecurity, "motion during vacation")
	c.Trigger(ctx, ReasonManual, "")

	if act.shutdowns != 2 {
		t.Errorf("shutdowns = %d, want 2", act.shutdowns)
	}
	if !c.Tripped() {
		t.Error("Tripped() = false after trigger")
	}
}

func TestController_RestoreIsExplicit(t *testing.T) {
	act := &fakeActuators{}
	c := New(act, Options{Clock: fixedClock})
	ctx := context.Background()

	c.Trigger(ctx, ReasonHardwareFault, "door servo")
	if act.restores != 0 {
		t.Fatal("trigger should not restore")
	}

	e := c.Restore(ctx)
	if act.restores != 1 {
		t.Errorf("restores = %d, want 1", act.restores)
	}
	if c.Tripped() {
		t.Error("Tripped() = true after restore")
	}
	if e.Kind != KindRestore || e.Message() != "System restored" {
		t.Errorf("restore event = %+v", e)
	}
}

func TestController_NotifiersSeeEvents(t *testing.T) {
	var seen []Event
	failing := NotifierFunc(func(context.Context, Event) error { return errors.New("offline") })
	recording := NotifierFunc(func(_ context.Context, e Event) error {
		seen = append(seen, e)
		return nil
	})

	act := &fakeActuators{}
	c := New(act, Options{Notifiers: []Notifier{failing, recording}, Clock: fixedClock})

	e := c.Trigger(context.Background(), ReasonEnvironmental, "co2 5200ppm")

	if act.shutdowns != 1 {
		t.Error("failing notifier prevented shutdown")
	}
	if len(seen) != 1 || seen[0].ID != e.ID {
		t.Fatalf("recording notifier saw %v", seen)
	}
	if e.Message() != "EMERGENCY: ENVIRONMENTAL HAZARD - co2 5200ppm" {
		t.Errorf("Message() = %q", e.Message())
	}
	if !e.At.Equal(fixedClock()) {
		t.Errorf("At = %v", e.At)
	}
}

func TestController_HistoryIsBounded(t *testing.T) {
	c := New(&fakeActuators{}, Options{HistorySize: 3, Clock: fixedClock})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c.Trigger(ctx, ReasonManual, string(rune('a'+i)))
	}

	events := c.Events()
	if len(events) != 3 {
		t.Fatalf("len(Events()) = %d, want 3", len(events))
	}
	if events[0].Detail != "c" || events[2].Detail != "e" {
		t.Errorf("kept events %q..%q, want c..e", events[0].Detail, events[2].Detail)
	}
}

func TestParseReason(t *testing.T) {
	tests := []struct {
		in      string
		want    Reason
		wantErr bool
	}{
		{"", ReasonManual, false},
		{"security", ReasonSecurity, false},
		{"Environmental", ReasonEnvironmental, false},
		{"hardware", ReasonHardwareFault, false},
		{"alien", "", true},
	}

	for _, tt := range tests {
		got, err := ParseReason(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseReason(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseReason(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
