package scene

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/nerrad567/hearth/internal/actuator"
)

type call struct {
	op    string
	value any
}

type fakeActuators struct {
	calls  []call
	reject map[string]bool
}

func (f *fakeActuators) record(op string, v any) bool {
	f.calls = append(f.calls, call{op, v})
	return !f.reject[op]
}

func (f *fakeActuators) SetComfortTemperature(t float64) bool { return f.record("temperature", t) }
func (f *fakeActuators) SetLightMode(m actuator.LightMode) bool {
	return f.record("light_mode", m)
}
func (f *fakeActuators) SetLight(b int, fade time.Duration) bool {
	return f.record("light", [2]any{b, fade})
}
func (f *fakeActuators) SetFan(s actuator.FanSpeed) bool { return f.record("fan", s) }
func (f *fakeActuators) SetWindowOpening(p int) bool     { return f.record("window", p) }

type staticResolver map[string]*Scene

func (r staticResolver) Resolve(_ context.Context, ref string) (*Scene, error) {
	if s, ok := r[ref]; ok {
		return s.DeepCopy(), nil
	}
	return nil, ErrSceneNotFound
}

func newTestManager() (*Manager, *fakeActuators) {
	act := &fakeActuators{reject: map[string]bool{}}
	movie := testScene("movie", "Movie Night")
	off := testScene("off", "Disabled")
	off.Enabled = false
	party := testScene("party", "Party")
	party.LightMode = actuator.LightParty

	m := NewManager(staticResolver{"movie": movie, "off": off, "party": party}, act, 2*time.Second, nil)
	m.clock = func() time.Time { return time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC) }
	return m, act
}

func TestManager_Activate(t *testing.T) {
	m, act := newTestManager()

	a, err := m.Activate(context.Background(), "movie")
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if !a.Fully() || a.Trigger != TriggerManual {
		t.Errorf("activation = %+v", a)
	}

	want := []string{"temperature", "light_mode", "light", "fan", "window"}
	if len(act.calls) != len(want) {
		t.Fatalf("calls = %v", act.calls)
	}
	for i, op := range want {
		if act.calls[i].op != op {
			t.Errorf("call %d = %s, want %s", i, act.calls[i].op, op)
		}
	}
	if got := act.calls[2].value.([2]any); got[0] != 120 || got[1] != 2*time.Second {
		t.Errorf("light call = %v, want 120 over 2s", got)
	}

	if last, ok := m.LastActivation(); !ok || last.SceneID != "movie" {
		t.Errorf("LastActivation() = %+v, %v", last, ok)
	}
}

func TestManager_ActivateReportsSoftRejections(t *testing.T) {
	m, act := newTestManager()
	act.reject["fan"] = true

	a, err := m.Activate(context.Background(), "movie")
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if a.Fully() || a.Applied["fan"] || !a.Applied["window"] {
		t.Errorf("Applied = %v", a.Applied)
	}
}

func TestManager_ActivateErrors(t *testing.T) {
	m, act := newTestManager()

	if _, err := m.Activate(context.Background(), "off"); !errors.Is(err, ErrSceneDisabled) {
		t.Errorf("disabled scene error = %v", err)
	}
	if _, err := m.Activate(context.Background(), "nope"); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("unknown scene error = %v", err)
	}
	if len(act.calls) != 0 {
		t.Errorf("actuators called: %v", act.calls)
	}
}

func TestManager_PartySceneKeepsShow(t *testing.T) {
	m, act := newTestManager()

	a, err := m.Activate(context.Background(), "party")
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	for _, c := range act.calls {
		if c.op == "light" {
			t.Error("SetLight called for a party scene")
		}
	}
	if _, ok := a.Applied["light"]; ok {
		t.Error("light reported for a party scene")
	}
}

func TestManager_TimerFiresOncePerDay(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	if _, err := m.ScheduleScene(ctx, "movie", 21, 30); err != nil {
		t.Fatalf("ScheduleScene() error = %v", err)
	}

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var fired int
	for minute := 21*60 + 25; minute <= 21*60+40; minute++ {
		fired += len(m.Tick(ctx, day.Add(time.Duration(minute)*time.Minute)))
	}
	if fired != 1 {
		t.Errorf("fired %d times, want 1", fired)
	}

	// Re-ticking the same instant does not fire again.
	if got := m.Tick(ctx, day.Add(21*time.Hour+30*time.Minute)); len(got) != 0 {
		t.Errorf("re-tick fired %d", len(got))
	}

	next := day.AddDate(0, 0, 1)
	m.Tick(ctx, next.Add(21*time.Hour+29*time.Minute))
	if got := m.Tick(ctx, next.Add(21*time.Hour+30*time.Minute)); len(got) != 1 || got[0].Trigger != TriggerSchedule {
		t.Errorf("next day fired %v", got)
	}
}

func TestManager_TimerCoarseTick(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()
	if _, err := m.ScheduleScene(ctx, "movie", 7, 0); err != nil {
		t.Fatalf("ScheduleScene() error = %v", err)
	}

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m.Tick(ctx, day.Add(6*time.Hour+59*time.Minute+30*time.Second))
	if got := m.Tick(ctx, day.Add(7*time.Hour+30*time.Second)); len(got) != 1 {
		t.Errorf("fired %d, want 1 when a tick straddles the time", len(got))
	}
}

func TestManager_ScheduleManagement(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	if _, err := m.ScheduleScene(ctx, "movie", 24, 0); !errors.Is(err, ErrInvalidTime) {
		t.Errorf("bad hour error = %v", err)
	}
	if _, err := m.ScheduleScene(ctx, "missing", 8, 0); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("missing scene error = %v", err)
	}

	m.ScheduleScene(ctx, "movie", 8, 0)
	m.ScheduleScene(ctx, "movie", 9, 15)
	timers := m.Timers()
	if len(timers) != 1 || timers[0].Hour != 9 || timers[0].Minute != 15 {
		t.Errorf("Timers() = %+v, want a single 09:15", timers)
	}

	if err := m.CancelSchedule(ctx, "movie"); err != nil {
		t.Fatalf("CancelSchedule() error = %v", err)
	}
	if len(m.Timers()) != 0 {
		t.Error("timer not removed")
	}
	if err := m.CancelSchedule(ctx, "movie"); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("second cancel error = %v", err)
	}
}

func TestEfficiency(t *testing.T) {
	tests := []struct {
		name  string
		scene Scene
		want  float64
	}{
		{"all off at 22", Scene{Temperature: 22, FanSpeed: actuator.FanOff}, 100},
		{"full light", Scene{Temperature: 22, LightLevel: 255, FanSpeed: actuator.FanOff}, 66.67},
		{"clamped at zero", Scene{Temperature: 2, LightLevel: 255, FanSpeed: actuator.FanHigh}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Efficiency(tt.scene); math.Abs(got-tt.want) > 0.01 {
				t.Errorf("Efficiency() = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestOptimize(t *testing.T) {
	s := *testScene("s", "Scene")

	night := Optimize(s, 23, 1000, 23)
	if night.Temperature != 20 || night.LightLevel != 50 || night.FanSpeed != actuator.FanHigh {
		t.Errorf("night = temp %v light %d fan %v", night.Temperature, night.LightLevel, night.FanSpeed)
	}

	day := Optimize(s, 12, 0, 24)
	if day.Temperature != 23 || day.LightLevel != 255 || day.FanSpeed != actuator.FanMedium {
		t.Errorf("day = temp %v light %d fan %v", day.Temperature, day.LightLevel, day.FanSpeed)
	}

	cool := Optimize(s, 12, 500, 21)
	if cool.LightLevel != 153 || cool.FanSpeed != actuator.FanLow {
		t.Errorf("cool = light %d fan %v", cool.LightLevel, cool.FanSpeed)
	}

	unknown := Optimize(s, 12, math.NaN(), math.NaN())
	if unknown.LightLevel != s.LightLevel || unknown.FanSpeed != s.FanSpeed {
		t.Error("NaN readings changed the scene")
	}
}
