package pulse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// validConfig returns the three-pulse configuration used across tests.
func validConfig() CycleConfig {
	return CycleConfig{
		VibrationIntensity: 200,
		VibrationOn:        500 * time.Millisecond,
		VibrationOff:       1500 * time.Millisecond,
		GateOpenAngle:      90,
		GateCloseAngle:     0,
		ReopenLeadTime:     250 * time.Millisecond,
		PulseCount:         3,
	}
}

// TestValidate covers every rejected field and the allowed edge cases.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validConfig().Validate())

	cases := []struct {
		name   string
		mutate func(*CycleConfig)
		target error
		field  string
	}{
		{"negative on", func(c *CycleConfig) { c.VibrationOn = -time.Millisecond }, ErrNegativeDuration, "vibration_on"},
		{"negative off", func(c *CycleConfig) { c.VibrationOff = -time.Second }, ErrNegativeDuration, "vibration_off"},
		{"negative lead", func(c *CycleConfig) { c.ReopenLeadTime = -1 }, ErrNegativeDuration, "reopen_lead_time"},
		{"negative pulses", func(c *CycleConfig) { c.PulseCount = -1 }, ErrNegativePulseCount, "pulse_count"},
		{"intensity too high", func(c *CycleConfig) { c.VibrationIntensity = 256 }, ErrIntensityOutOfRange, "vibration_intensity"},
		{"intensity negative", func(c *CycleConfig) { c.VibrationIntensity = -1 }, ErrIntensityOutOfRange, "vibration_intensity"},
	}

	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(&cfg)

		err := cfg.Validate()
		require.ErrorIs(t, err, tc.target, tc.name)
		require.Contains(t, err.Error(), tc.field, tc.name)
	}

	// Zero pulses and lead time beyond the off-period are legitimate.
	cfg := validConfig()
	cfg.PulseCount = 0
	cfg.ReopenLeadTime = 10 * time.Second

	got, err := NewCycleConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, cfg, got)

	_, err = NewCycleConfig(CycleConfig{PulseCount: -2})
	require.ErrorIs(t, err, ErrNegativePulseCount)
}

// TestHolds_SplitOffPeriod checks the hold arithmetic over a grid of off-periods and lead times.
func TestHolds_SplitOffPeriod(t *testing.T) {
	t.Parallel()

	steps := []time.Duration{0, 1, 250 * time.Millisecond, 1499 * time.Millisecond, 1500 * time.Millisecond, 2 * time.Second}

	for _, off := range steps {
		for _, lead := range steps {
			cfg := CycleConfig{VibrationOff: off, ReopenLeadTime: lead}

			require.Equal(t, off, cfg.ClosedHold()+cfg.ReopenWait(), "off=%s lead=%s", off, lead)

			if lead >= off {
				require.Zero(t, cfg.ClosedHold(), "off=%s lead=%s", off, lead)
				require.Equal(t, off, cfg.ReopenWait(), "off=%s lead=%s", off, lead)
			} else {
				require.Equal(t, off-lead, cfg.ClosedHold(), "off=%s lead=%s", off, lead)
				require.Equal(t, lead, cfg.ReopenWait(), "off=%s lead=%s", off, lead)
			}
		}
	}
}

// TestHolds_Scenarios pins the two worked examples.
func TestHolds_Scenarios(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.Equal(t, 1250*time.Millisecond, cfg.ClosedHold())
	require.Equal(t, 250*time.Millisecond, cfg.ReopenWait())
	require.Equal(t, 2*time.Second, cfg.CycleDuration())
	require.Equal(t, 6*time.Second, cfg.TotalDuration())

	cfg.ReopenLeadTime = 2 * time.Second
	require.Zero(t, cfg.ClosedHold())
	require.Equal(t, 1500*time.Millisecond, cfg.ReopenWait())
}
