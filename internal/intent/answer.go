package intent

import (
	"fmt"
	"math"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/automation"
	"github.com/nerrad567/hearth/internal/display"
	"github.com/nerrad567/hearth/internal/sensor"
)

// State is what query intents are answered from.
type State struct {
	Snapshot actuator.Snapshot
	Reading  sensor.Reading
	Energy   automation.EnergyStats
}

// Answer returns the spoken or displayed reply for a query intent.
func Answer(i Intent, st State) (string, error) {
	switch i.Kind {
	case SecurityStatus:
		return "Security status: " + display.FormatSecurity(st.Snapshot, st.Reading.Motion), nil
	case EnergyReport:
		return fmt.Sprintf("Using %.0f W, %.2f kWh today, %.0f%% below baseline",
			st.Energy.CurrentW, st.Energy.DailyKWh, st.Energy.SavingsPercent), nil
	case WeatherReport:
		r := st.Reading
		rain := "dry"
		if r.Raining {
			rain = "raining"
		}
		return fmt.Sprintf("%s, %s humidity, %s hPa, %s",
			reading(r.Temperature, "C"), reading(r.Humidity, "%"), reading(r.Pressure, ""), rain), nil
	}
	return "", fmt.Errorf("%w: %s is not a query", ErrNotCommand, i.Kind)
}

// Confirmation is the acknowledgement for an action intent.
func Confirmation(i Intent, applied bool) string {
	if !applied {
		return "Sorry, that is not allowed right now"
	}
	switch i.Kind {
	case LightsOn:
		return "Lights turned on"
	case LightsOff:
		return "Lights turned off"
	case SetTemperature:
		return "Temperature set to " + i.Param
	case OpenWindows:
		return "Opening windows"
	case CloseWindows:
		return "Closing windows"
	case LockDoor:
		return "Locking the door"
	case UnlockDoor:
		return "Unlocking the door"
	case Emergency:
		return "Emergency shutdown"
	}
	return "Done"
}

func reading(v float64, unit string) string {
	if math.IsNaN(v) {
		return "--"
	}
	return fmt.Sprintf("%.0f%s", v, unit)
}
