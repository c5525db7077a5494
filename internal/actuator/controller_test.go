package actuator

import (
	"testing"
	"time"

	"github.com/nerrad567/hearth/internal/hardware"
	"github.com/nerrad567/hearth/internal/mode"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) time.Time {
	f.t = f.t.Add(d)
	return f.t
}

type testOutputs struct {
	door, window, fan, light, buzzer *hardware.FakeChannel
	strip                            *hardware.FakeStrip
}

func (o testOutputs) outputs() Outputs {
	return Outputs{Door: o.door, Window: o.window, Fan: o.fan, Light: o.light, Buzzer: o.buzzer, Strip: o.strip}
}

func newTestOutputs() testOutputs {
	return testOutputs{
		door:   hardware.NewFakeChannel("door", hardware.AngleRange),
		window: hardware.NewFakeChannel("window", hardware.AngleRange),
		fan:    hardware.NewFakeChannel("fan", hardware.DutyRange),
		light:  hardware.NewFakeChannel("light", hardware.DutyRange),
		buzzer: hardware.NewFakeChannel("buzzer", hardware.DigitalRange),
		strip:  hardware.NewFakeStrip(4),
	}
}

// newTestController builds a controller whose outputs move instantly
// unless opts sets travel times.
func newTestController(t *testing.T, opts Options) (*Controller, testOutputs, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	out := newTestOutputs()
	opts.Clock = clock.Now
	return New(out.outputs(), mode.NewPolicy(mode.DefaultTemperature), opts), out, clock
}

func setMode(t *testing.T, c *Controller, f mode.Flag) {
	t.Helper()
	if ok, err := c.SetMode(f, true); !ok || err != nil {
		t.Fatalf("SetMode(%s) = %v, %v", f, ok, err)
	}
}

// runFor ticks the controller in 10ms steps for d.
func runFor(c *Controller, clock *fakeClock, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += 10 * time.Millisecond {
		c.Tick(clock.Advance(10 * time.Millisecond))
	}
}

func TestController_DoorAngleMapping(t *testing.T) {
	tests := []struct {
		state DoorState
		angle int
	}{
		{DoorUnlocked, 90},
		{DoorPartiallyOpen, 45},
		{DoorLocked, 0},
	}

	c, out, clock := newTestController(t, Options{DoorTravel: time.Second})
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if !c.SetDoorState(tt.state) {
				t.Fatalf("SetDoorState(%s) rejected", tt.state)
			}
			runFor(c, clock, 2*time.Second)

			if c.DoorState() != tt.state {
				t.Errorf("DoorState() = %s, want %s", c.DoorState(), tt.state)
			}
			if out.door.Value() != tt.angle {
				t.Errorf("servo angle = %d, want %d", out.door.Value(), tt.angle)
			}
		})
	}
}

func TestController_DoorCommitsOnlyAtTarget(t *testing.T) {
	c, out, clock := newTestController(t, Options{DoorTravel: 2 * time.Second})

	c.SetDoorState(DoorUnlocked)
	runFor(c, clock, 500*time.Millisecond)

	if c.DoorState() != DoorLocked {
		t.Errorf("DoorState() mid-travel = %s, want LOCKED", c.DoorState())
	}
	if c.DoorTarget() != DoorUnlocked {
		t.Errorf("DoorTarget() = %s, want UNLOCKED", c.DoorTarget())
	}
	if v := out.door.Value(); v <= 0 || v >= 90 {
		t.Errorf("servo angle mid-travel = %d, want between 0 and 90", v)
	}

	runFor(c, clock, time.Second)
	if c.DoorState() != DoorUnlocked {
		t.Errorf("DoorState() = %s, want UNLOCKED", c.DoorState())
	}
	if c.LastDoorOperation().IsZero() {
		t.Error("LastDoorOperation not recorded")
	}
}

func TestController_SetDoorStateIdempotent(t *testing.T) {
	c, out, _ := newTestController(t, Options{})

	c.SetDoorState(DoorUnlocked)
	writes := len(out.door.Writes())
	first := c.LastDoorOperation()

	if !c.SetDoorState(DoorUnlocked) {
		t.Fatal("repeated SetDoorState rejected")
	}
	if got := len(out.door.Writes()); got != writes {
		t.Errorf("second call wrote %d more values", got-writes)
	}
	if c.LastDoorOperation() != first {
		t.Error("second call touched LastDoorOperation")
	}
}

func TestController_DoorRequestQueuedWithoutReversal(t *testing.T) {
	c, out, clock := newTestController(t, Options{DoorTravel: 2 * time.Second})

	c.SetDoorState(DoorUnlocked)
	runFor(c, clock, 300*time.Millisecond)
	c.SetDoorState(DoorLocked)
	runFor(c, clock, 3*time.Second)

	writes := out.door.Writes()
	peak := 0
	for i, v := range writes {
		if v > peak {
			peak = v
		}
		if v < peak && peak < 90 {
			t.Fatalf("door reversed at write %d (%v) before reaching 90", i, writes)
		}
	}
	if peak != 90 {
		t.Errorf("door peaked at %d, want 90", peak)
	}
	if c.DoorState() != DoorLocked || out.door.Value() != 0 {
		t.Errorf("final door = %s at %d°, want LOCKED at 0°", c.DoorState(), out.door.Value())
	}
}

func TestController_VacationDoorLockout(t *testing.T) {
	c, _, _ := newTestController(t, Options{})

	if ok, err := c.SetMode(mode.Vacation, true); !ok || err != nil {
		t.Fatalf("SetMode(vacation) = %v, %v", ok, err)
	}

	for _, s := range []DoorState{DoorUnlocked, DoorPartiallyOpen, DoorLocked} {
		c.SetDoorState(s)
		if c.DoorState() != DoorLocked {
			t.Errorf("after SetDoorState(%s) in vacation, door = %s", s, c.DoorState())
		}
	}
	if c.SetDoorState(DoorUnlocked) {
		t.Error("unlock in vacation should be rejected")
	}
	if !c.SetDoorState(DoorLocked) {
		t.Error("lock in vacation should be accepted")
	}
}

func TestController_VacationActivationForcesSafeState(t *testing.T) {
	c, out, clock := newTestController(t, Options{DoorTravel: time.Second})

	c.SetDoorState(DoorUnlocked)
	runFor(c, clock, 2*time.Second)
	c.SetWindowOpening(80)
	c.SetFan(FanHigh)

	c.SetDoorState(DoorPartiallyOpen)
	setMode(t, c, mode.Vacation)

	if c.DoorState() != DoorLocked || out.door.Value() != 0 {
		t.Errorf("door = %s at %d°, want LOCKED at 0°", c.DoorState(), out.door.Value())
	}
	if c.Moving(DeviceDoor) {
		t.Error("door travel should be abandoned")
	}
	if c.WindowOpening() != 0 {
		t.Errorf("WindowOpening() = %d, want 0", c.WindowOpening())
	}
	if c.Fan() != FanOff {
		t.Errorf("Fan() = %s, want OFF", c.Fan())
	}
}

func TestController_NightModeSilencesFan(t *testing.T) {
	c, out, _ := newTestController(t, Options{})

	c.SetFan(FanMedium)
	c.SetWindowOpening(60)
	setMode(t, c, mode.Night)

	if c.Fan() != FanOff || out.fan.Value() != 0 {
		t.Errorf("fan after night = %s duty %d, want OFF duty 0", c.Fan(), out.fan.Value())
	}
	if c.WindowOpening() != mode.NightWindowCap {
		t.Errorf("WindowOpening() = %d, want %d", c.WindowOpening(), mode.NightWindowCap)
	}
	if c.Light().Mode != LightNight {
		t.Errorf("light mode = %s, want NIGHT", c.Light().Mode)
	}

	for _, s := range []FanSpeed{FanLow, FanMedium, FanHigh} {
		if c.SetFan(s) {
			t.Errorf("SetFan(%s) accepted in night mode", s)
		}
		if c.Fan() != FanOff {
			t.Errorf("after SetFan(%s) in night mode, fan = %s", s, c.Fan())
		}
	}
}

func TestController_NightCapLeavesNarrowWindow(t *testing.T) {
	c, _, _ := newTestController(t, Options{})

	c.SetWindowOpening(10)
	setMode(t, c, mode.Night)

	if c.WindowOpening() != 10 {
		t.Errorf("WindowOpening() = %d, want 10", c.WindowOpening())
	}
}

func TestController_EmergencyShutdown(t *testing.T) {
	c, out, clock := newTestController(t, Options{})

	c.SetDoorState(DoorUnlocked)
	c.SetWindowOpening(70)
	c.SetFan(FanHigh)
	c.SetLight(200, 0)
	c.TriggerBuzzer(time.Minute, 2000)
	c.AutoCloseDoor(time.Minute)
	c.Tick(clock.Advance(10 * time.Millisecond))

	c.EmergencyShutdown()

	if c.SystemActive() {
		t.Error("SystemActive() = true after shutdown")
	}
	if c.Light().Brightness != 0 || out.light.Value() != 0 {
		t.Errorf("light = %d (output %d), want 0", c.Light().Brightness, out.light.Value())
	}
	if c.Fan() != FanOff || out.fan.Value() != 0 {
		t.Errorf("fan = %s (output %d), want OFF", c.Fan(), out.fan.Value())
	}
	if c.DoorState() != DoorLocked || out.door.Value() != 0 {
		t.Errorf("door = %s (output %d), want LOCKED", c.DoorState(), out.door.Value())
	}
	if c.WindowOpening() != 0 || out.window.Value() != 0 {
		t.Errorf("window = %d (output %d), want 0", c.WindowOpening(), out.window.Value())
	}
	if c.Buzzer() || out.buzzer.Value() != 0 {
		t.Error("buzzer still sounding after shutdown")
	}
	if !c.AutoCloseAt().IsZero() {
		t.Error("auto-close deadline survived shutdown")
	}
}

func TestController_EmergencyPreemptsRamp(t *testing.T) {
	c, out, clock := newTestController(t, Options{DoorTravel: 4 * time.Second, WindowTravel: 4 * time.Second})

	c.SetDoorState(DoorUnlocked)
	c.SetWindowOpening(100)
	runFor(c, clock, 500*time.Millisecond)
	if !c.Moving(DeviceDoor) || !c.Moving(DeviceWindow) {
		t.Fatal("expected door and window in motion")
	}

	c.EmergencyShutdown()
	if c.Moving(DeviceDoor) || c.Moving(DeviceWindow) {
		t.Error("motion survived emergency shutdown")
	}
	if out.door.Value() != 0 || out.window.Value() != 0 {
		t.Errorf("outputs = door %d window %d, want 0", out.door.Value(), out.window.Value())
	}

	runFor(c, clock, 5*time.Second)
	if out.door.Value() != 0 || out.window.Value() != 0 {
		t.Error("outputs moved after emergency shutdown")
	}
}

func TestController_InactiveGateIsSoft(t *testing.T) {
	c, out, _ := newTestController(t, Options{})
	c.EmergencyShutdown()
	out.door.ResetWrites()

	checks := []struct {
		name string
		ok   bool
	}{
		{"door", c.SetDoorState(DoorUnlocked)},
		{"window", c.SetWindowOpening(50)},
		{"fan", c.SetFan(FanLow)},
		{"light", c.SetLight(100, 0)},
		{"light mode", c.SetLightMode(LightParty)},
		{"buzzer", c.TriggerBuzzer(time.Second, 0)},
		{"auto close", c.AutoCloseDoor(time.Second)},
		{"show", c.StartLightShow(PatternPulse, time.Second)},
	}
	for _, ch := range checks {
		if ch.ok {
			t.Errorf("%s accepted while inactive", ch.name)
		}
	}
	if ok, err := c.SetMode(mode.Party, true); ok || err != nil {
		t.Errorf("SetMode while inactive = %v, %v; want false, nil", ok, err)
	}

	if c.DoorState() != DoorLocked || c.WindowOpening() != 0 || c.Fan() != FanOff || c.Light().Brightness != 0 {
		t.Error("state changed while inactive")
	}
	if n := len(out.door.Writes()); n != 0 {
		t.Errorf("door wrote %d values while inactive", n)
	}
}

func TestController_RestoreKeepsSafeState(t *testing.T) {
	c, _, _ := newTestController(t, Options{})
	c.SetWindowOpening(50)
	setMode(t, c, mode.Eco)

	c.EmergencyShutdown()
	c.RestoreSystem()

	if !c.SystemActive() {
		t.Fatal("SystemActive() = false after restore")
	}
	if c.Modes() != mode.NewSet(mode.Active) {
		t.Errorf("Modes() = %s, want active only", c.Modes())
	}
	if c.WindowOpening() != 0 || c.Fan() != FanOff || c.DoorState() != DoorLocked || c.Light().Brightness != 0 {
		t.Error("restore changed device state")
	}

	if !c.SetWindowOpening(30) {
		t.Error("commands should be accepted after restore")
	}
}

func TestController_WindowRoundTrip(t *testing.T) {
	tests := []struct {
		in, want, angle int
	}{
		{-10, 0, 0},
		{0, 0, 0},
		{33, 33, 59},
		{50, 50, 90},
		{100, 100, 180},
		{150, 100, 180},
	}

	for _, tt := range tests {
		c, out, _ := newTestController(t, Options{})
		c.SetWindowOpening(tt.in)
		if got := c.WindowOpening(); got != tt.want {
			t.Errorf("SetWindowOpening(%d): WindowOpening() = %d, want %d", tt.in, got, tt.want)
		}
		if got := out.window.Value(); got != tt.angle {
			t.Errorf("SetWindowOpening(%d): angle = %d, want %d", tt.in, got, tt.angle)
		}
	}
}

func TestController_WindowRampsToAngle(t *testing.T) {
	c, out, clock := newTestController(t, Options{WindowTravel: 1800 * time.Millisecond})

	c.SetWindowOpening(50)
	if c.WindowOpening() != 50 {
		t.Errorf("WindowOpening() = %d, want 50 immediately", c.WindowOpening())
	}
	if out.window.Value() != 0 {
		t.Errorf("window moved before Tick: %d", out.window.Value())
	}

	runFor(c, clock, time.Second)
	if out.window.Value() != 90 {
		t.Errorf("window angle = %d, want 90", out.window.Value())
	}
}

func TestController_AutoCloseDoor(t *testing.T) {
	c, _, clock := newTestController(t, Options{})

	if c.AutoCloseDoor(time.Second) {
		t.Error("auto-close armed while door is locked")
	}

	c.SetDoorState(DoorUnlocked)
	if !c.AutoCloseDoor(30 * time.Second) {
		t.Fatal("auto-close not armed")
	}

	c.Tick(clock.Advance(29 * time.Second))
	if c.DoorState() != DoorUnlocked {
		t.Fatal("door closed before the deadline")
	}

	c.Tick(clock.Advance(time.Second))
	if c.DoorState() != DoorLocked {
		t.Errorf("DoorState() = %s after deadline, want LOCKED", c.DoorState())
	}
	if !c.AutoCloseAt().IsZero() {
		t.Error("deadline should be cleared after firing")
	}
}

func TestController_PerDeviceFailure(t *testing.T) {
	out := newTestOutputs()
	outputs := out.outputs()
	outputs.Window = nil

	c := New(outputs, mode.NewPolicy(mode.DefaultTemperature), Options{})

	if !c.SystemActive() {
		t.Fatal("one missing output should not disable the system")
	}
	if c.DeviceActive(DeviceWindow) {
		t.Error("window should be inactive")
	}
	if c.SetWindowOpening(40) {
		t.Error("window command accepted without an output")
	}
	if !c.SetFan(FanLow) {
		t.Error("fan command rejected")
	}

	// Emergency shutdown still works with a missing output.
	c.EmergencyShutdown()
	if c.Fan() != FanOff {
		t.Error("shutdown did not stop the fan")
	}
}

func TestController_SystemWideFailure(t *testing.T) {
	out := newTestOutputs()
	outputs := out.outputs()
	outputs.Door = nil

	c := New(outputs, mode.NewPolicy(mode.DefaultTemperature), Options{SystemWideFailure: true})

	if c.SystemActive() {
		t.Error("system-wide failure policy should clear system active")
	}
	if c.SetFan(FanLow) {
		t.Error("fan accepted with system disabled")
	}
}

func TestController_Buzzer(t *testing.T) {
	c, out, clock := newTestController(t, Options{})

	if !c.TriggerBuzzer(time.Second, 2000) {
		t.Fatal("TriggerBuzzer rejected")
	}
	if !c.Buzzer() || out.buzzer.Value() != 1 {
		t.Error("buzzer not sounding")
	}
	if tones := out.buzzer.Tones(); len(tones) != 1 || tones[0] != 2000 {
		t.Errorf("tones = %v, want [2000]", tones)
	}

	c.Tick(clock.Advance(time.Second))
	if c.Buzzer() || out.buzzer.Value() != 0 {
		t.Error("buzzer still sounding after its duration")
	}
}

func TestController_LightShowExpires(t *testing.T) {
	c, _, clock := newTestController(t, Options{})
	c.SetLight(180, 0)

	if !c.StartLightShow(PatternPulse, 10*time.Second) {
		t.Fatal("StartLightShow rejected")
	}
	c.Tick(clock.Advance(5 * time.Second))
	if !c.LightShow().Active {
		t.Fatal("show ended early")
	}

	c.Tick(clock.Advance(6 * time.Second))
	if c.LightShow().Active {
		t.Error("show still active after its duration")
	}
	if c.Light().Brightness != 180 {
		t.Errorf("brightness = %d, want 180", c.Light().Brightness)
	}
}

func TestController_PartyModeStartsShow(t *testing.T) {
	c, out, clock := newTestController(t, Options{})

	setMode(t, c, mode.Party)
	if c.Light().Mode != LightParty {
		t.Errorf("light mode = %s, want PARTY", c.Light().Mode)
	}
	show := c.LightShow()
	if !show.Active || show.Pattern != PatternRainbow {
		t.Errorf("show = %+v, want active rainbow", show)
	}

	shows := out.strip.Shows()
	c.Tick(clock.Advance(100 * time.Millisecond))
	if out.strip.Shows() <= shows {
		t.Error("strip not rendered during show")
	}
	if out.strip.Pixel(0) == out.strip.Pixel(2) {
		t.Error("rainbow pixels should differ")
	}
}

func TestController_LightFade(t *testing.T) {
	c, out, clock := newTestController(t, Options{})

	c.SetLight(200, time.Second)
	if c.Light().Brightness != 200 {
		t.Errorf("commanded brightness = %d, want 200", c.Light().Brightness)
	}
	runFor(c, clock, 500*time.Millisecond)
	if v := out.light.Value(); v <= 0 || v >= 200 {
		t.Errorf("mid-fade level = %d, want between 0 and 200", v)
	}
	runFor(c, clock, time.Second)
	if out.light.Value() != 200 {
		t.Errorf("final level = %d, want 200", out.light.Value())
	}
}

func TestController_DigitalLightScaling(t *testing.T) {
	out := newTestOutputs()
	outputs := out.outputs()
	relay := hardware.NewFakeChannel("light", hardware.DigitalRange)
	outputs.Light = relay

	c := New(outputs, mode.NewPolicy(mode.DefaultTemperature), Options{})

	c.SetLight(10, 0)
	if relay.Value() != 1 {
		t.Errorf("relay = %d for dim light, want 1", relay.Value())
	}
	c.SetLight(0, 0)
	if relay.Value() != 0 {
		t.Errorf("relay = %d for off, want 0", relay.Value())
	}
}

func TestController_VersionTracksChanges(t *testing.T) {
	c, _, _ := newTestController(t, Options{})
	v := c.Version()

	c.SetFan(FanLow)
	if c.Version() == v {
		t.Error("Version() unchanged after fan command")
	}

	v = c.Version()
	c.SetFan(FanLow)
	if c.Version() != v {
		t.Error("Version() changed on a no-op command")
	}
}

func TestController_Snapshot(t *testing.T) {
	c, _, _ := newTestController(t, Options{})
	c.SetDoorState(DoorPartiallyOpen)
	c.SetFan(FanMedium)

	s := c.Snapshot()
	if s.Door != DoorPartiallyOpen || s.DoorAngle != 45 {
		t.Errorf("snapshot door = %s at %d°", s.Door, s.DoorAngle)
	}
	if s.Fan != FanMedium || s.FanDuty != 170 {
		t.Errorf("snapshot fan = %s duty %d", s.Fan, s.FanDuty)
	}
	if !s.SystemActive || !s.Devices[DeviceWindow] {
		t.Error("snapshot flags wrong")
	}
	if s.TargetTemperature != mode.DefaultTemperature {
		t.Errorf("TargetTemperature = %v", s.TargetTemperature)
	}
}
