package display

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/infrastructure/mqtt"
	"github.com/nerrad567/hearth/internal/sensor"
)

// Sink shows status lines and alerts.
type Sink interface {
	ShowStatus(msg string)
	ShowAlert(msg string)
}

// Logger is the logging surface used by LogSink and MQTTSink.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// LogSink writes display output to a logger.
type LogSink struct {
	logger Logger
}

// NewLogSink returns a sink that logs status at info and alerts at warn.
func NewLogSink(logger Logger) *LogSink {
	if logger == nil {
		logger = noopLogger{}
	}
	return &LogSink{logger: logger}
}

// ShowStatus logs msg at info level.
func (s *LogSink) ShowStatus(msg string) { s.logger.Info("display status", "message", msg) }

// ShowAlert logs msg at warn level.
func (s *LogSink) ShowAlert(msg string) { s.logger.Warn("display alert", "message", msg) }

// Publisher is the MQTT surface MQTTSink needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Message is the JSON body published by MQTTSink.
type Message struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// MQTTSink publishes display output for a remote panel. Status lines are
// retained so a panel that reconnects shows the latest state.
type MQTTSink struct {
	pub    Publisher
	logger Logger
	clock  func() time.Time
}

// NewMQTTSink returns a sink publishing through pub.
func NewMQTTSink(pub Publisher, logger Logger) *MQTTSink {
	if logger == nil {
		logger = noopLogger{}
	}
	return &MQTTSink{pub: pub, logger: logger, clock: time.Now}
}

// ShowStatus publishes msg to the retained status topic.
func (s *MQTTSink) ShowStatus(msg string) {
	s.publish(mqtt.Topics{}.DisplayStatus(), msg, true)
}

// ShowAlert publishes msg to the alert topic.
func (s *MQTTSink) ShowAlert(msg string) {
	s.publish(mqtt.Topics{}.DisplayAlert(), msg, false)
}

func (s *MQTTSink) publish(topic, msg string, retained bool) {
	payload, err := json.Marshal(Message{Text: msg, Timestamp: s.clock().UTC().Format(time.RFC3339)})
	if err != nil {
		s.logger.Warn("display message encode failed", "error", err)
		return
	}
	if err := s.pub.Publish(topic, payload, 1, retained); err != nil {
		s.logger.Warn("display publish failed", "topic", topic, "error", err)
	}
}

// Multi forwards to every sink in order.
type Multi []Sink

// ShowStatus forwards msg to every sink.
func (m Multi) ShowStatus(msg string) {
	for _, s := range m {
		s.ShowStatus(msg)
	}
}

// ShowAlert forwards msg to every sink.
func (m Multi) ShowAlert(msg string) {
	for _, s := range m {
		s.ShowAlert(msg)
	}
}

// FormatStatus builds the one-line status shown after every sensor poll:
//
//	T:22.5C H:48% Air:81 | Door:LOCKED Win:0% Fan:OFF Light:0 | Modes:active
//
// Missing sensor values render as "--".
func FormatStatus(snap actuator.Snapshot, r sensor.Reading) string {
	var b strings.Builder

	fmt.Fprintf(&b, "T:%sC H:%s%% Air:%s", value(r.Temperature, 1), value(r.Humidity, 0), value(r.AirQuality, 0))
	if r.Motion {
		b.WriteString(" Motion")
	}
	if r.Raining {
		b.WriteString(" Rain")
	}

	fmt.Fprintf(&b, " | Door:%s Win:%d%% Fan:%s Light:%d",
		snap.Door, snap.WindowOpening, snap.Fan, snap.Light.Brightness)

	if !snap.SystemActive {
		b.WriteString(" | SHUTDOWN")
		return b.String()
	}
	fmt.Fprintf(&b, " | Modes:%s", snap.Modes)
	return b.String()
}

// FormatSecurity renders the security page.
func FormatSecurity(snap actuator.Snapshot, motion bool) string {
	windows := "CLOSED"
	if snap.WindowOpening > 0 {
		windows = "OPEN"
	}
	detected := "NONE"
	if motion {
		detected = "DETECTED"
	}
	return fmt.Sprintf("Door: %s Windows: %s Motion: %s", snap.Door, windows, detected)
}

func value(v float64, decimals int) string {
	if math.IsNaN(v) {
		return "--"
	}
	return fmt.Sprintf("%.*f", decimals, v)
}
