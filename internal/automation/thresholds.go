package automation

import (
	"fmt"
	"time"

	"github.com/nerrad567/hearth/internal/infrastructure/config"
)

// Thresholds tune the sensor rules.
type Thresholds struct {
	Temperature       float64       `json:"temperature"`
	Humidity          float64       `json:"humidity"`
	Light             float64       `json:"light"`
	Moisture          float64       `json:"moisture"`
	AirQuality        float64       `json:"air_quality"`
	CO2Hazard         float64       `json:"co2_hazard"`
	TargetTemperature float64       `json:"target_temperature"`
	TargetHumidity    float64       `json:"target_humidity"`
	MotionAlertCount  int           `json:"motion_alert_count"`
	MotionWindow      time.Duration `json:"motion_window"`
}

// DefaultThresholds returns the built-in thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Temperature:       25,
		Humidity:          60,
		Light:             300,
		Moisture:          40,
		AirQuality:        30,
		CO2Hazard:         5000,
		TargetTemperature: 23,
		TargetHumidity:    50,
		MotionAlertCount:  5,
		MotionWindow:      time.Minute,
	}
}

// ThresholdsFromConfig maps the automation config section.
func ThresholdsFromConfig(cfg config.ThresholdConfig) Thresholds {
	return Thresholds{
		Temperature:       cfg.Temperature,
		Humidity:          cfg.Humidity,
		Light:             cfg.Light,
		Moisture:          cfg.Moisture,
		AirQuality:        cfg.AirQuality,
		CO2Hazard:         cfg.CO2Hazard,
		TargetTemperature: cfg.TargetTemperature,
		TargetHumidity:    cfg.TargetHumidity,
		MotionAlertCount:  cfg.MotionAlertCount,
		MotionWindow:      cfg.MotionWindow,
	}
}

// thresholdFields maps SET_THRESHOLD targets onto fields.
var thresholdFields = map[string]func(*Thresholds) *float64{
	"temperature":        func(t *Thresholds) *float64 { return &t.Temperature },
	"humidity":           func(t *Thresholds) *float64 { return &t.Humidity },
	"light":              func(t *Thresholds) *float64 { return &t.Light },
	"moisture":           func(t *Thresholds) *float64 { return &t.Moisture },
	"air_quality":        func(t *Thresholds) *float64 { return &t.AirQuality },
	"co2_hazard":         func(t *Thresholds) *float64 { return &t.CO2Hazard },
	"target_temperature": func(t *Thresholds) *float64 { return &t.TargetTemperature },
	"target_humidity":    func(t *Thresholds) *float64 { return &t.TargetHumidity },
}

// Set assigns the threshold named by target.
func (t *Thresholds) Set(target string, v float64) error {
	field, ok := thresholdFields[target]
	if !ok {
		return fmt.Errorf("%w: threshold %q", ErrUnknownTarget, target)
	}
	if v < 0 {
		return fmt.Errorf("%w: threshold %s must not be negative", ErrInvalidValue, target)
	}
	*field(t) = v
	return nil
}

// Rule names a sensor rule.
type Rule string

// Rules.
const (
	RuleClimate    Rule = "climate"
	RuleSecurity   Rule = "security"
	RuleAirQuality Rule = "air_quality"
	RuleEnergy     Rule = "energy"
	RuleLighting   Rule = "lighting"
)

var ruleNames = map[Rule]struct{}{
	RuleClimate:    {},
	RuleSecurity:   {},
	RuleAirQuality: {},
	RuleEnergy:     {},
	RuleLighting:   {},
}

// Rules records which rules run.
type Rules map[Rule]bool

// RulesFromConfig maps the automation config section.
func RulesFromConfig(cfg config.RulesConfig) Rules {
	return Rules{
		RuleClimate:    cfg.Climate,
		RuleSecurity:   cfg.Security,
		RuleAirQuality: cfg.AirQuality,
		RuleEnergy:     cfg.Energy,
		RuleLighting:   cfg.Lighting,
	}
}

// AllRules enables every rule.
func AllRules() Rules {
	r := make(Rules, len(ruleNames))
	for name := range ruleNames {
		r[name] = true
	}
	return r
}

func (r Rules) clone() Rules {
	out := make(Rules, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
