package actuator

import (
	"math"

	"github.com/nerrad567/hearth/internal/mode"
)

// HeatIndex returns the apparent temperature in °C for air at tempC and
// relativeHumidity percent, using the US National Weather Service
// Rothfusz regression with its low-range and humidity adjustments.
func HeatIndex(tempC, relativeHumidity float64) float64 {
	f := tempC*9/5 + 32
	rh := relativeHumidity

	simple := 0.5 * (f + 61.0 + (f-68.0)*1.2 + rh*0.094)
	if (simple+f)/2 < 80 {
		return (simple - 32) * 5 / 9
	}

	hi := -42.379 + 2.04901523*f + 10.14333127*rh -
		0.22475541*f*rh - 0.00683783*f*f - 0.05481717*rh*rh +
		0.00122874*f*f*rh + 0.00085282*f*rh*rh - 0.00000199*f*f*rh*rh

	switch {
	case rh < 13 && f >= 80 && f <= 112:
		hi -= ((13 - rh) / 4) * math.Sqrt((17-math.Abs(f-95))/17)
	case rh > 85 && f >= 80 && f <= 87:
		hi += ((rh - 85) / 10) * ((87 - f) / 5)
	}

	return (hi - 32) * 5 / 9
}

// FanForHeatIndex maps a heat index onto a fan band relative to threshold.
// There is no hysteresis: readings hovering on a band edge will move the
// fan between adjacent bands.
func FanForHeatIndex(heatIndex, threshold float64) FanSpeed {
	switch {
	case heatIndex > threshold+5:
		return FanHigh
	case heatIndex > threshold+2:
		return FanMedium
	case heatIndex > threshold:
		return FanLow
	default:
		return FanOff
	}
}

// UpdateFanControl drives the fan from temperature and humidity when auto
// fan mode is on. It returns the band chosen and whether it was applied;
// night mode still refuses the fan.
func (c *Controller) UpdateFanControl(tempC, humidity, threshold float64) (FanSpeed, bool) {
	if !mode.AutoFanEnabled(c.Modes()) {
		return c.fan, false
	}
	speed := FanForHeatIndex(HeatIndex(tempC, humidity), threshold)
	return speed, c.SetFan(speed)
}
