package sensor

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/hearth/internal/infrastructure/mqtt"
)

func TestFilter_ReplacesInvalidFields(t *testing.T) {
	f := NewFilter()

	good := Nominal()
	good.Temperature = 24
	good.Humidity = 55
	if _, replaced := f.Apply(good); len(replaced) != 0 {
		t.Fatalf("valid reading replaced fields %v", replaced)
	}

	bad := good
	bad.Temperature = math.NaN()
	bad.Humidity = 140
	bad.CO2 = 900

	out, replaced := f.Apply(bad)
	if out.Temperature != 24 {
		t.Errorf("Temperature = %v, want last valid 24", out.Temperature)
	}
	if out.Humidity != 55 {
		t.Errorf("Humidity = %v, want last valid 55", out.Humidity)
	}
	if out.CO2 != 900 {
		t.Errorf("CO2 = %v, want 900", out.CO2)
	}
	if len(replaced) != 2 {
		t.Errorf("replaced = %v, want temperature and humidity", replaced)
	}
	if got := len(f.ErrorLog().Entries()); got != 2 {
		t.Errorf("error log has %d entries, want 2", got)
	}
}

func TestFilter_FirstReadingFallsBackToNominal(t *testing.T) {
	f := NewFilter()

	r := Nominal()
	r.Pressure = math.Inf(1)
	out, _ := f.Apply(r)
	if out.Pressure != DefaultLimits[FieldPressure].Nominal {
		t.Errorf("Pressure = %v, want nominal", out.Pressure)
	}
}

func TestErrorLog_Capped(t *testing.T) {
	var l ErrorLog
	for i := 0; i < 100; i++ {
		l.Add(strings.Repeat("x", 40))
	}
	l.Add("newest")

	s := l.String()
	if len(s) > MaxErrorLogLength {
		t.Errorf("log length = %d, want <= %d", len(s), MaxErrorLogLength)
	}
	if !strings.HasSuffix(s, "newest") {
		t.Error("newest entry evicted")
	}

	var big ErrorLog
	big.Add(strings.Repeat("y", 2*MaxErrorLogLength))
	if len(big.String()) != MaxErrorLogLength {
		t.Errorf("oversized entry length = %d", len(big.String()))
	}
}

func TestSmoother(t *testing.T) {
	s := NewSmoother(3)

	r := Nominal()
	r.Temperature = 20
	if got := s.Add(r).Temperature; got != 20 {
		t.Errorf("first average = %v, want 20", got)
	}

	r.Temperature = 26
	if got := s.Add(r).Temperature; got != 23 {
		t.Errorf("second average = %v, want 23", got)
	}

	r.Temperature = 23
	s.Add(r)
	r.Temperature = 29
	r.Motion = true
	out := s.Add(r)
	if out.Temperature != (26+23+29)/3.0 {
		t.Errorf("rolled average = %v, want %v", out.Temperature, (26+23+29)/3.0)
	}
	if !out.Motion {
		t.Error("Motion should pass through from the latest reading")
	}
}

func TestSimulatedSource_StaysInBounds(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src := NewSimulatedSource(42, func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		r, err := src.Read(ctx)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if r.Temperature < 15 || r.Temperature > 35 {
			t.Fatalf("temperature %v out of bounds", r.Temperature)
		}
		if r.Humidity < 30 || r.Humidity > 70 {
			t.Fatalf("humidity %v out of bounds", r.Humidity)
		}
		if r.LightLevel < 0 || r.LightLevel > 1000 {
			t.Fatalf("light %v out of bounds", r.LightLevel)
		}
		if r.AirQuality < 0 || r.AirQuality > 100 {
			t.Fatalf("air quality %v out of bounds", r.AirQuality)
		}
	}
}

type fakeSubscriber struct {
	topic   string
	handler mqtt.MessageHandler
	err     error
}

func (f *fakeSubscriber) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	f.topic = topic
	f.handler = handler
	return f.err
}

func TestMQTTSource(t *testing.T) {
	sub := &fakeSubscriber{}
	src, err := NewMQTTSource(sub, "hearth/sensors/state", 0)
	if err != nil {
		t.Fatalf("NewMQTTSource() error = %v", err)
	}
	if sub.topic != "hearth/sensors/state" {
		t.Errorf("subscribed to %q", sub.topic)
	}

	if _, err := src.Read(context.Background()); !errors.Is(err, ErrNoReading) {
		t.Errorf("Read() before message error = %v, want %v", err, ErrNoReading)
	}

	if err := sub.handler("hearth/sensors/state", []byte(`{"temperature":27.5,"motion":true}`)); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	r, err := src.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if r.Temperature != 27.5 || !r.Motion {
		t.Errorf("reading = %+v", r)
	}
	if !math.IsNaN(r.Humidity) {
		t.Errorf("missing humidity = %v, want NaN", r.Humidity)
	}

	if err := sub.handler("hearth/sensors/state", []byte(`not json`)); err == nil {
		t.Error("handler accepted malformed JSON")
	}
}

func TestMQTTSource_SubscribeError(t *testing.T) {
	if _, err := NewMQTTSource(&fakeSubscriber{err: errors.New("offline")}, "t", 0); err == nil {
		t.Error("NewMQTTSource() should fail when subscribe fails")
	}
}
