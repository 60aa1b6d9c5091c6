package injector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/particle-injector/internal/actuator"
	"github.com/oshokin/particle-injector/internal/clock"
	"github.com/oshokin/particle-injector/internal/domain/pulse"
)

var errTestActuator = errors.New("servo brown-out")

// epoch is the virtual start time used by every test.
//
//nolint:gochecknoglobals // Test fixture.
var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// scenarioConfig is the three-pulse example: 500 ms on, 1500 ms off, 250 ms lead.
func scenarioConfig() pulse.CycleConfig {
	return pulse.CycleConfig{
		VibrationIntensity: 200,
		VibrationOn:        500 * time.Millisecond,
		VibrationOff:       1500 * time.Millisecond,
		GateOpenAngle:      90,
		GateCloseAngle:     10,
		ReopenLeadTime:     250 * time.Millisecond,
		PulseCount:         3,
	}
}

// newRecorded builds a controller wired to a recorder and a virtual clock.
func newRecorded(t *testing.T, cfg pulse.CycleConfig, opts ...Option) (*Controller, *actuator.Recorder, *clock.Virtual) {
	t.Helper()

	vc := clock.NewVirtual(epoch)
	rec := actuator.NewRecorder(actuator.WithClock(vc))

	ctrl, err := New(cfg, rec, append([]Option{WithClock(vc)}, opts...)...)
	require.NoError(t, err)

	return ctrl, rec, vc
}

// at is shorthand for a recorded command at an offset from epoch.
func at(kind actuator.CommandKind, value int, offset time.Duration) actuator.Command {
	return actuator.Command{Kind: kind, Value: value, At: epoch.Add(offset)}
}

// TestRun_ThreePulseScenario checks the full command timeline and total elapsed time.
func TestRun_ThreePulseScenario(t *testing.T) {
	t.Parallel()

	ctrl, rec, vc := newRecorded(t, scenarioConfig())

	result, err := ctrl.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, &pulse.Result{
		Outcome:         pulse.OutcomeCompleted,
		PulsesCompleted: 3,
		PulseCount:      3,
		Elapsed:         6 * time.Second,
	}, result)

	var want []actuator.Command

	for i := range 3 {
		base := time.Duration(i) * 2 * time.Second
		want = append(want,
			at(actuator.KindVibration, 200, base),
			at(actuator.KindVibration, 0, base+500*time.Millisecond),
			at(actuator.KindGate, 10, base+500*time.Millisecond),
			at(actuator.KindGate, 90, base+1750*time.Millisecond),
		)
	}

	want = append(want, at(actuator.KindVibration, 0, 6*time.Second))

	require.Equal(t, want, rec.Commands())

	waits := []time.Duration{500 * time.Millisecond, 1250 * time.Millisecond, 250 * time.Millisecond}
	require.Equal(t, append(append(append([]time.Duration{}, waits...), waits...), waits...), vc.Sleeps())
}

// TestRun_LeadLongerThanOffPeriod checks the gate reopens immediately and the cycle time is preserved.
func TestRun_LeadLongerThanOffPeriod(t *testing.T) {
	t.Parallel()

	cfg := scenarioConfig()
	cfg.ReopenLeadTime = 2 * time.Second
	cfg.PulseCount = 2

	ctrl, rec, vc := newRecorded(t, cfg)

	result, err := ctrl.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4*time.Second, result.Elapsed)

	commands := rec.Commands()
	require.Len(t, commands, 9)

	// Close and reopen share the same instant: there is no closed hold.
	require.Equal(t, at(actuator.KindGate, 10, 500*time.Millisecond), commands[2])
	require.Equal(t, at(actuator.KindGate, 90, 500*time.Millisecond), commands[3])

	require.Equal(t, []time.Duration{
		500 * time.Millisecond, 1500 * time.Millisecond,
		500 * time.Millisecond, 1500 * time.Millisecond,
	}, vc.Sleeps())
}

// TestRun_ZeroPulses checks that only the terminal shutdown is issued.
func TestRun_ZeroPulses(t *testing.T) {
	t.Parallel()

	cfg := scenarioConfig()
	cfg.PulseCount = 0

	hookCalls := 0
	ctrl, rec, vc := newRecorded(t, cfg, WithPulseStartHook(func(context.Context, int, int) { hookCalls++ }))

	result, err := ctrl.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, pulse.OutcomeCompleted, result.Outcome)
	require.Zero(t, result.PulsesCompleted)
	require.Zero(t, result.Elapsed)

	require.Equal(t, []actuator.Command{at(actuator.KindVibration, 0, 0)}, rec.Commands())
	require.Empty(t, vc.Sleeps())
	require.Zero(t, hookCalls)
}

// TestRun_CommandOrder asserts the exact per-pulse call order with a gomock mock.
func TestRun_CommandOrder(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mock := actuator.NewMockActuator(ctrl)

	var calls []any

	for range 2 {
		calls = append(calls,
			mock.EXPECT().SetVibrationIntensity(200).Return(nil),
			mock.EXPECT().SetVibrationIntensity(0).Return(nil),
			mock.EXPECT().SetGatePosition(10).Return(nil),
			mock.EXPECT().SetGatePosition(90).Return(nil),
		)
	}

	calls = append(calls, mock.EXPECT().SetVibrationIntensity(0).Return(nil))
	gomock.InOrder(calls...)

	cfg := scenarioConfig()
	cfg.PulseCount = 2

	c, err := New(cfg, mock, WithClock(clock.NewVirtual(epoch)))
	require.NoError(t, err)

	result, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.PulsesCompleted)
}

// TestRun_StopRequestedBetweenPhases stops after the first vibrate-on and still shuts down.
func TestRun_StopRequestedBetweenPhases(t *testing.T) {
	t.Parallel()

	var ctrl *Controller

	ctrl, rec, _ := newRecorded(t, scenarioConfig(), WithPulseStartHook(func(context.Context, int, int) {
		ctrl.RequestStop()
	}))

	result, err := ctrl.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, pulse.OutcomeCanceled, result.Outcome)
	require.Zero(t, result.PulsesCompleted)

	// The running vibrate-on hold is not interrupted.
	require.Equal(t, []actuator.Command{
		at(actuator.KindVibration, 200, 0),
		at(actuator.KindVibration, 0, 500*time.Millisecond),
	}, rec.Commands())

	status := ctrl.Status()
	require.Equal(t, pulse.PhaseFinished, status.Phase)
	require.Equal(t, pulse.OutcomeCanceled, status.Outcome)
}

// cancelingClock cancels a context after a number of sleeps.
type cancelingClock struct {
	*clock.Virtual

	// after is the number of sleeps before cancel fires.
	after int
	// cancel stops the run context.
	cancel context.CancelFunc
}

// Sleep advances the virtual clock and cancels once the budget is used.
func (c *cancelingClock) Sleep(d time.Duration) {
	c.Virtual.Sleep(d)

	c.after--
	if c.after == 0 {
		c.cancel()
	}
}

// TestRun_ContextCanceled ends the run at the boundary after the cancel and completes shutdown.
func TestRun_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vc := &cancelingClock{Virtual: clock.NewVirtual(epoch), after: 4, cancel: cancel}
	rec := actuator.NewRecorder(actuator.WithClock(vc))

	ctrl, err := New(scenarioConfig(), rec, WithClock(vc))
	require.NoError(t, err)

	result, err := ctrl.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, pulse.OutcomeCanceled, result.Outcome)
	require.Equal(t, 1, result.PulsesCompleted)
	require.Equal(t, 2500*time.Millisecond, result.Elapsed)

	commands := rec.Commands()
	require.Len(t, commands, 6)
	require.Equal(t, at(actuator.KindVibration, 200, 2*time.Second), commands[4])
	require.Equal(t, at(actuator.KindVibration, 0, 2500*time.Millisecond), commands[5])
}

// TestRun_ActuatorFailure stops on the failing command, still shuts down and reports the error.
func TestRun_ActuatorFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mock := actuator.NewMockActuator(ctrl)

	gomock.InOrder(
		mock.EXPECT().SetVibrationIntensity(200).Return(nil),
		mock.EXPECT().SetVibrationIntensity(0).Return(nil),
		mock.EXPECT().SetGatePosition(10).Return(errTestActuator),
		mock.EXPECT().SetVibrationIntensity(0).Return(nil),
	)

	c, err := New(scenarioConfig(), mock, WithClock(clock.NewVirtual(epoch)))
	require.NoError(t, err)

	result, err := c.Run(context.Background())
	require.ErrorIs(t, err, errTestActuator)
	require.Equal(t, pulse.OutcomeFailed, result.Outcome)
	require.Zero(t, result.PulsesCompleted)
}

// TestRun_ShutdownFailure reports a failed outcome when the final vibration-off fails.
func TestRun_ShutdownFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mock := actuator.NewMockActuator(ctrl)
	mock.EXPECT().SetVibrationIntensity(0).Return(errTestActuator)

	cfg := scenarioConfig()
	cfg.PulseCount = 0

	c, err := New(cfg, mock, WithClock(clock.NewVirtual(epoch)))
	require.NoError(t, err)

	result, err := c.Run(context.Background())
	require.ErrorIs(t, err, errTestActuator)
	require.Equal(t, pulse.OutcomeFailed, result.Outcome)
}

// TestRun_OnlyOnce rejects a second run on the same controller.
func TestRun_OnlyOnce(t *testing.T) {
	t.Parallel()

	ctrl, rec, _ := newRecorded(t, scenarioConfig())

	_, err := ctrl.Run(context.Background())
	require.NoError(t, err)

	before := len(rec.Commands())

	result, err := ctrl.Run(context.Background())
	require.ErrorIs(t, err, ErrAlreadyStarted)
	require.Nil(t, result)
	require.Len(t, rec.Commands(), before)
}

// TestNew_RejectsMisconfiguration checks that invalid configs and nil actuators fail fast.
func TestNew_RejectsMisconfiguration(t *testing.T) {
	t.Parallel()

	cfg := scenarioConfig()
	cfg.VibrationOff = -time.Second

	_, err := New(cfg, actuator.NewRecorder())
	require.ErrorIs(t, err, pulse.ErrNegativeDuration)
	require.Contains(t, err.Error(), "vibration_off")

	cfg = scenarioConfig()
	cfg.PulseCount = -1

	_, err = New(cfg, actuator.NewRecorder())
	require.ErrorIs(t, err, pulse.ErrNegativePulseCount)

	_, err = New(scenarioConfig(), nil)
	require.ErrorIs(t, err, ErrActuatorRequired)
}

// TestRun_HooksAndProgress checks the pulse hook arguments and the observed phase sequence.
func TestRun_HooksAndProgress(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		starts  [][2]int
		phases  []pulse.Phase
		lastRun *pulse.Progress
	)

	cfg := scenarioConfig()
	cfg.PulseCount = 2

	ctrl, _, _ := newRecorded(t, cfg,
		WithRunID("run-1"),
		WithPulseStartHook(func(_ context.Context, index, total int) {
			starts = append(starts, [2]int{index, total})
		}),
		WithProgressObserver(func(_ context.Context, p *pulse.Progress) {
			mu.Lock()
			defer mu.Unlock()

			if len(phases) == 0 || phases[len(phases)-1] != p.Phase {
				phases = append(phases, p.Phase)
			}

			lastRun = p
		}),
	)

	initial := ctrl.Status()
	require.Equal(t, pulse.PhaseIdle, initial.Phase)
	require.Equal(t, 2, initial.PulseCount)
	require.Equal(t, "run-1", initial.RunID)

	_, err := ctrl.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, [][2]int{{0, 2}, {1, 2}}, starts)
	require.Equal(t, []pulse.Phase{
		pulse.PhaseIdle,
		pulse.PhaseVibrateOn, pulse.PhaseVibrateOffAndClose, pulse.PhaseReopen,
		pulse.PhaseVibrateOn, pulse.PhaseVibrateOffAndClose, pulse.PhaseReopen,
		pulse.PhaseFinished,
	}, phases)

	require.Equal(t, pulse.OutcomeCompleted, lastRun.Outcome)
	require.Equal(t, 2, lastRun.PulsesCompleted)
	require.Equal(t, epoch, lastRun.StartedAt)
	require.Equal(t, epoch.Add(4*time.Second), lastRun.UpdatedAt)
	require.Equal(t, lastRun, ctrl.Status())
	require.Equal(t, cfg, ctrl.Config())
}
