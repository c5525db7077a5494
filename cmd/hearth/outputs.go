package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/hardware"
	"github.com/nerrad567/hearth/internal/infrastructure/config"
	"github.com/nerrad567/hearth/internal/infrastructure/logging"
)

// outputSpec converts one output's config into a driver spec.
func outputSpec(name, chip string, oc config.OutputConfig, rng hardware.Range) hardware.Spec {
	return hardware.Spec{
		Name:        name,
		Driver:      oc.Driver,
		Chip:        chip,
		Line:        oc.Line,
		Pin:         oc.Pin,
		FrequencyHz: oc.FrequencyHz,
		MinPulse:    time.Duration(oc.MinPulseUS) * time.Microsecond,
		MaxPulse:    time.Duration(oc.MaxPulseUS) * time.Microsecond,
		Range:       rng,
	}
}

// attachOutputs opens every configured output with retry. An output that
// cannot be attached is left nil, which the actuator treats as inactive;
// its name is returned in failed.
func attachOutputs(ctx context.Context, hw config.HardwareConfig, log *logging.Logger) (actuator.Outputs, []string) {
	opts := hardware.AttachOptions{
		Attempts: hw.AttachAttempts,
		Backoff:  hw.AttachBackoff,
		Logger:   log,
	}
	if opts.Backoff <= 0 {
		opts.Backoff = hardware.DefaultAttachBackoff
	}

	var failed []string
	attach := func(d actuator.Device, oc config.OutputConfig, rng hardware.Range) hardware.Channel {
		name := string(d)
		ch, err := openOutput(ctx, outputSpec(name, hw.Chip, oc, rng), opts)
		if err != nil {
			log.Error("output unavailable", "output", name, "driver", oc.Driver, "error", err)
			failed = append(failed, name)
			return nil
		}
		log.Info("output attached", "output", name, "driver", oc.Driver)
		return ch
	}

	out := actuator.Outputs{
		Door:   attach(actuator.DeviceDoor, hw.Door, hardware.AngleRange),
		Window: attach(actuator.DeviceWindow, hw.Window, hardware.AngleRange),
		Fan:    attach(actuator.DeviceFan, hw.Fan, hardware.DutyRange),
		Light:  attach(actuator.DeviceLight, hw.Light, hardware.DutyRange),
		Buzzer: attach(actuator.DeviceBuzzer, hw.Buzzer, hardware.DigitalRange),
	}
	if hw.Strip.Enabled {
		strip, err := hardware.OpenStrip(hw.Strip.Driver, hw.Strip.Port, hw.Strip.Pixels)
		if err != nil {
			log.Error("output unavailable", "output", "strip", "driver", hw.Strip.Driver, "error", err)
			failed = append(failed, "strip")
		} else {
			log.Info("output attached", "output", "strip", "driver", hw.Strip.Driver, "pixels", strip.Len())
			out.Strip = strip
		}
	}
	return out, failed
}

func openOutput(ctx context.Context, spec hardware.Spec, opts hardware.AttachOptions) (hardware.Channel, error) {
	open, err := hardware.OpenerFor(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", hardware.ErrInitFailed, spec.Name, err)
	}
	return hardware.Attach(ctx, spec.Name, open, opts)
}

func channels(out actuator.Outputs) []hardware.Channel {
	var chs []hardware.Channel
	for _, ch := range []hardware.Channel{out.Door, out.Window, out.Fan, out.Light, out.Buzzer} {
		if ch != nil {
			chs = append(chs, ch)
		}
	}
	return chs
}

// selfTest sweeps each attached output to the top of its range and back.
// Outputs end at their minimum, the state the actuator assumes at start.
func selfTest(ctx context.Context, out actuator.Outputs, log *logging.Logger) error {
	for _, ch := range channels(out) {
		rng := ch.Range()
		if err := hardware.RampTo(ctx, ch, rng.Max, selfTestTravel); err != nil {
			return fmt.Errorf("%s: %w", ch.Name(), err)
		}
		if err := hardware.RampTo(ctx, ch, rng.Min, selfTestTravel); err != nil {
			return fmt.Errorf("%s: %w", ch.Name(), err)
		}
		log.Info("self-test passed", "output", ch.Name(), "min", rng.Min, "max", rng.Max)
	}
	return nil
}

func closeOutputs(out actuator.Outputs, log *logging.Logger) {
	for _, ch := range channels(out) {
		if err := ch.Close(); err != nil {
			log.Error("error closing output", "output", ch.Name(), "error", err)
		}
	}
	if out.Strip != nil {
		if err := out.Strip.Close(); err != nil {
			log.Error("error closing output", "output", "strip", "error", err)
		}
	}
}
