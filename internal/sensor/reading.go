package sensor

import (
	"context"
	"errors"
	"time"
)

// ErrNoReading is returned by a source that has nothing to report yet.
var ErrNoReading = errors.New("sensor: no reading available")

// Reading is one sample of every sensor.
type Reading struct {
	Temperature  float64   `json:"temperature"` // °C
	Humidity     float64   `json:"humidity"`    // %RH
	Pressure     float64   `json:"pressure"`    // hPa
	LightLevel   float64   `json:"light_level"` // raw 0..1023
	Motion       bool      `json:"motion"`
	Raining      bool      `json:"raining"`
	AirQuality   float64   `json:"air_quality"`   // index 0..100, higher is cleaner
	CO2          float64   `json:"co2"`           // ppm
	SoilMoisture float64   `json:"soil_moisture"` // %
	UVIndex      float64   `json:"uv_index"`
	Time         time.Time `json:"time"`
}

// Source produces readings.
type Source interface {
	Read(ctx context.Context) (Reading, error)
}

// Field identifies a numeric reading field.
type Field string

// Fields.
const (
	FieldTemperature  Field = "temperature"
	FieldHumidity     Field = "humidity"
	FieldPressure     Field = "pressure"
	FieldLightLevel   Field = "light_level"
	FieldAirQuality   Field = "air_quality"
	FieldCO2          Field = "co2"
	FieldSoilMoisture Field = "soil_moisture"
	FieldUVIndex      Field = "uv_index"
)

// Fields lists the numeric fields in a fixed order.
var Fields = []Field{
	FieldTemperature, FieldHumidity, FieldPressure, FieldLightLevel,
	FieldAirQuality, FieldCO2, FieldSoilMoisture, FieldUVIndex,
}

// Limits is a field's plausible range and its value before any valid
// reading has arrived.
type Limits struct {
	Min, Max float64
	Nominal  float64
}

// DefaultLimits are the ranges a reading must fall inside to be accepted.
var DefaultLimits = map[Field]Limits{
	FieldTemperature:  {Min: -40, Max: 85, Nominal: 22},
	FieldHumidity:     {Min: 0, Max: 100, Nominal: 50},
	FieldPressure:     {Min: 300, Max: 1100, Nominal: 1013},
	FieldLightLevel:   {Min: 0, Max: 1023, Nominal: 500},
	FieldAirQuality:   {Min: 0, Max: 100, Nominal: 80},
	FieldCO2:          {Min: 0, Max: 10000, Nominal: 400},
	FieldSoilMoisture: {Min: 0, Max: 100, Nominal: 50},
	FieldUVIndex:      {Min: 0, Max: 15, Nominal: 0},
}

// ptr returns the address of field f in r.
func (r *Reading) ptr(f Field) *float64 {
	switch f {
	case FieldTemperature:
		return &r.Temperature
	case FieldHumidity:
		return &r.Humidity
	case FieldPressure:
		return &r.Pressure
	case FieldLightLevel:
		return &r.LightLevel
	case FieldAirQuality:
		return &r.AirQuality
	case FieldCO2:
		return &r.CO2
	case FieldSoilMoisture:
		return &r.SoilMoisture
	case FieldUVIndex:
		return &r.UVIndex
	}
	return nil
}

// Get returns the value of field f.
func (r Reading) Get(f Field) float64 {
	if p := r.ptr(f); p != nil {
		return *p
	}
	return 0
}

// Set assigns field f.
func (r *Reading) Set(f Field, v float64) {
	if p := r.ptr(f); p != nil {
		*p = v
	}
}

// Nominal returns a reading with every field at its nominal value.
func Nominal() Reading {
	var r Reading
	for _, f := range Fields {
		r.Set(f, DefaultLimits[f].Nominal)
	}
	return r
}
