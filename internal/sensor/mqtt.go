package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/hearth/internal/infrastructure/mqtt"
)

// Subscriber is the MQTT client surface MQTTSource needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// MQTTSource caches the latest reading published by a sensor node.
type MQTTSource struct {
	mu     sync.RWMutex
	last   Reading
	have   bool
	maxAge time.Duration
	clock  func() time.Time
}

// NewMQTTSource subscribes to topic. Readings older than maxAge are
// reported as ErrNoReading; zero disables the age check.
func NewMQTTSource(sub Subscriber, topic string, maxAge time.Duration) (*MQTTSource, error) {
	s := &MQTTSource{maxAge: maxAge, clock: time.Now}
	if err := sub.Subscribe(topic, 1, s.handle); err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	return s, nil
}

// handle decodes a JSON reading. Missing numeric fields arrive as NaN so
// the filter substitutes the last valid value rather than zero.
func (s *MQTTSource) handle(_ string, payload []byte) error {
	var msg struct {
		Temperature  *float64   `json:"temperature"`
		Humidity     *float64   `json:"humidity"`
		Pressure     *float64   `json:"pressure"`
		LightLevel   *float64   `json:"light_level"`
		Motion       bool       `json:"motion"`
		Raining      bool       `json:"raining"`
		AirQuality   *float64   `json:"air_quality"`
		CO2          *float64   `json:"co2"`
		SoilMoisture *float64   `json:"soil_moisture"`
		UVIndex      *float64   `json:"uv_index"`
		Time         *time.Time `json:"time"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decoding sensor reading: %w", err)
	}

	r := Reading{
		Temperature:  orNaN(msg.Temperature),
		Humidity:     orNaN(msg.Humidity),
		Pressure:     orNaN(msg.Pressure),
		LightLevel:   orNaN(msg.LightLevel),
		Motion:       msg.Motion,
		Raining:      msg.Raining,
		AirQuality:   orNaN(msg.AirQuality),
		CO2:          orNaN(msg.CO2),
		SoilMoisture: orNaN(msg.SoilMoisture),
		UVIndex:      orNaN(msg.UVIndex),
		Time:         s.clock(),
	}
	if msg.Time != nil {
		r.Time = *msg.Time
	}

	s.mu.Lock()
	s.last = r
	s.have = true
	s.mu.Unlock()
	return nil
}

// Read returns the cached reading.
func (s *MQTTSource) Read(ctx context.Context) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.have {
		return Reading{}, ErrNoReading
	}
	if s.maxAge > 0 && s.clock().Sub(s.last.Time) > s.maxAge {
		return Reading{}, fmt.Errorf("%w: last reading at %s", ErrNoReading, s.last.Time.Format(time.RFC3339))
	}
	return s.last, nil
}
