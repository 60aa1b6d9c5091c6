package rpio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakePin records PWM calls.
type fakePin struct {
	// pwm is true once Pwm was called.
	pwm bool
	// freq is the last clock frequency set.
	freq int
	// duties stores every DutyCycle call as duty/cycle pairs.
	duties [][2]uint32
}

// Pwm switches the fake pin to PWM mode.
func (f *fakePin) Pwm() { f.pwm = true }

// Freq records the clock frequency.
func (f *fakePin) Freq(freq int) { f.freq = freq }

// DutyCycle records the duty cycle.
func (f *fakePin) DutyCycle(dutyLen, cycleLen uint32) {
	f.duties = append(f.duties, [2]uint32{dutyLen, cycleLen})
}

// TestConfigValidate checks pin capability, channel separation and defaults.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := Config{VibrationPin: 4, GatePin: 13}
	require.ErrorIs(t, cfg.validate(), ErrNotPWMPin)

	cfg = Config{VibrationPin: 12, GatePin: 5}
	require.ErrorIs(t, cfg.validate(), ErrNotPWMPin)

	cfg = Config{VibrationPin: 12, GatePin: 18}
	require.ErrorIs(t, cfg.validate(), ErrSharedChannel)

	cfg = Config{VibrationPin: 18, GatePin: 13, MinPulse: time.Millisecond, MaxPulse: time.Millisecond}
	require.ErrorIs(t, cfg.validate(), ErrInvalidPulseRange)

	cfg = Config{VibrationPin: 18, GatePin: 13}
	require.NoError(t, cfg.validate())
	require.Equal(t, uint32(DefaultVibrationCycle), cfg.VibrationCycle)
	require.Equal(t, DefaultMinPulse, cfg.MinPulse)
	require.Equal(t, DefaultMaxPulse, cfg.MaxPulse)
}

// TestDriver_DutyCycles checks intensity and angle scaling.
func TestDriver_DutyCycles(t *testing.T) {
	t.Parallel()

	cfg := Config{VibrationPin: 18, GatePin: 13}
	require.NoError(t, cfg.validate())

	vibration, gate := new(fakePin), new(fakePin)
	closed := 0
	d := newDriver(vibration, gate, func() error { closed++; return nil }, cfg)

	require.True(t, vibration.pwm)
	require.True(t, gate.pwm)
	require.Equal(t, clockHz, vibration.freq)
	require.Equal(t, clockHz, gate.freq)

	require.NoError(t, d.SetVibrationIntensity(255))
	require.NoError(t, d.SetVibrationIntensity(51))
	require.NoError(t, d.SetGatePosition(0))
	require.NoError(t, d.SetGatePosition(90))
	require.NoError(t, d.SetGatePosition(180))

	require.Equal(t, [][2]uint32{{1000, 1000}, {200, 1000}}, vibration.duties)
	require.Equal(t, [][2]uint32{{500, servoCycle}, {1500, servoCycle}, {2500, servoCycle}}, gate.duties)

	require.ErrorIs(t, d.SetVibrationIntensity(300), ErrValueOutOfRange)
	require.ErrorIs(t, d.SetGatePosition(181), ErrValueOutOfRange)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	require.Equal(t, 1, closed)
	require.Equal(t, [2]uint32{0, 1000}, vibration.duties[len(vibration.duties)-1])
}
