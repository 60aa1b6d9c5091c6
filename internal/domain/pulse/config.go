package pulse

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MinIntensity silences the vibration source.
	MinIntensity = 0
	// MaxIntensity is the top of the device-native intensity scale.
	MaxIntensity = 255
)

var (
	// ErrNegativeDuration is returned when a duration field is below zero.
	ErrNegativeDuration = errors.New("duration must not be negative")
	// ErrNegativePulseCount is returned when the pulse count is below zero.
	ErrNegativePulseCount = errors.New("pulse count must not be negative")
	// ErrIntensityOutOfRange is returned when the vibration intensity is outside the device scale.
	ErrIntensityOutOfRange = errors.New("vibration intensity out of range")
)

// CycleConfig is the full parameterization of one experiment run.
// Values are copied into the controller and never change during a run.
type CycleConfig struct {
	// VibrationIntensity is the device-native level used for every vibrate-on phase.
	VibrationIntensity int `yaml:"vibration_intensity"`
	// VibrationOn is how long the vibration source runs per pulse.
	VibrationOn time.Duration `yaml:"vibration_on"`
	// VibrationOff is the quiet part of a pulse, split into closed hold and reopen wait.
	VibrationOff time.Duration `yaml:"vibration_off"`
	// GateOpenAngle is the gate position that lets particles through.
	GateOpenAngle int `yaml:"gate_open_angle"`
	// GateCloseAngle is the gate position that blocks the flow.
	GateCloseAngle int `yaml:"gate_close_angle"`
	// ReopenLeadTime is how long before the next vibrate-on the gate reopens.
	ReopenLeadTime time.Duration `yaml:"reopen_lead_time"`
	// PulseCount is the number of pulses to run. Zero is a valid no-op run.
	PulseCount int `yaml:"pulse_count"`
}

// NewCycleConfig validates cfg and returns it unchanged when it is usable.
func NewCycleConfig(cfg CycleConfig) (CycleConfig, error) {
	if err := cfg.Validate(); err != nil {
		return CycleConfig{}, err
	}

	return cfg, nil
}

// Validate reports the first misconfigured field.
// ReopenLeadTime longer than VibrationOff is allowed and handled by the hold arithmetic.
func (c CycleConfig) Validate() error {
	if c.VibrationIntensity < MinIntensity || c.VibrationIntensity > MaxIntensity {
		return fmt.Errorf("vibration_intensity %d not in [%d, %d]: %w",
			c.VibrationIntensity, MinIntensity, MaxIntensity, ErrIntensityOutOfRange)
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"vibration_on", c.VibrationOn},
		{"vibration_off", c.VibrationOff},
		{"reopen_lead_time", c.ReopenLeadTime},
	}

	for _, d := range durations {
		if d.value < 0 {
			return fmt.Errorf("%s is %s: %w", d.name, d.value, ErrNegativeDuration)
		}
	}

	if c.PulseCount < 0 {
		return fmt.Errorf("pulse_count is %d: %w", c.PulseCount, ErrNegativePulseCount)
	}

	return nil
}

// ClosedHold is the part of the off-period during which the gate stays closed.
func (c CycleConfig) ClosedHold() time.Duration {
	if c.VibrationOff > c.ReopenLeadTime {
		return c.VibrationOff - c.ReopenLeadTime
	}

	return 0
}

// ReopenWait is the part of the off-period between reopening the gate and the next pulse.
// ClosedHold() + ReopenWait() always equals VibrationOff.
func (c CycleConfig) ReopenWait() time.Duration {
	if c.VibrationOff > c.ReopenLeadTime {
		return c.ReopenLeadTime
	}

	return c.VibrationOff
}

// CycleDuration is the length of a single pulse.
func (c CycleConfig) CycleDuration() time.Duration {
	return c.VibrationOn + c.VibrationOff
}

// TotalDuration is the planned length of the whole run, startup delay excluded.
func (c CycleConfig) TotalDuration() time.Duration {
	return time.Duration(c.PulseCount) * c.CycleDuration()
}
