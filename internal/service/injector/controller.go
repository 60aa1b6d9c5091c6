package injector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oshokin/particle-injector/internal/actuator"
	"github.com/oshokin/particle-injector/internal/clock"
	"github.com/oshokin/particle-injector/internal/domain/pulse"
	"github.com/oshokin/particle-injector/internal/logger"
)

var (
	// ErrActuatorRequired is returned when the controller is built without an actuator.
	ErrActuatorRequired = errors.New("actuator must be provided")
	// ErrAlreadyStarted is returned when Run is called a second time.
	ErrAlreadyStarted = errors.New("controller has already run")
)

// PulseStartHook is told when a pulse begins. index is 0-based.
type PulseStartHook func(ctx context.Context, index, total int)

// ProgressObserver receives a snapshot after every phase entry.
type ProgressObserver func(ctx context.Context, progress *pulse.Progress)

// Controller owns the pulse-cycle state machine for a single run.
type Controller struct {
	// cfg is the validated, immutable run configuration.
	cfg pulse.CycleConfig
	// actuator receives every vibration and gate command.
	actuator actuator.Actuator
	// clock provides the waits between phases.
	clock clock.Clock

	// onPulseStart and observe are advisory and never affect timing.
	onPulseStart PulseStartHook
	observe      ProgressObserver

	// started flips once on the first Run.
	started atomic.Bool
	// stopRequested is set by RequestStop and checked between phases.
	stopRequested atomic.Bool

	// progress is the snapshot served to supervisors.
	progress pulse.Progress
	// mu protects progress.
	mu sync.RWMutex
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(ctrl *Controller) {
		if c != nil {
			ctrl.clock = c
		}
	}
}

// WithRunID tags the progress snapshots with id.
func WithRunID(id string) Option {
	return func(ctrl *Controller) {
		ctrl.progress.RunID = id
	}
}

// WithPulseStartHook registers a callback fired once per pulse.
func WithPulseStartHook(hook PulseStartHook) Option {
	return func(ctrl *Controller) {
		ctrl.onPulseStart = hook
	}
}

// WithProgressObserver registers a callback fired after every phase entry.
func WithProgressObserver(observer ProgressObserver) Option {
	return func(ctrl *Controller) {
		ctrl.observe = observer
	}
}

// New validates cfg and builds a controller for one run.
func New(cfg pulse.CycleConfig, act actuator.Actuator, opts ...Option) (*Controller, error) {
	cfg, err := pulse.NewCycleConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid cycle config: %w", err)
	}

	if act == nil {
		return nil, ErrActuatorRequired
	}

	c := &Controller{
		cfg:      cfg,
		actuator: act,
		clock:    clock.System{},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.progress.Phase = pulse.PhaseIdle
	c.progress.PulseCount = cfg.PulseCount

	return c, nil
}

// Config returns the run configuration.
func (c *Controller) Config() pulse.CycleConfig {
	return c.cfg
}

// Status returns a copy of the latest progress snapshot.
func (c *Controller) Status() *pulse.Progress {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.progress.Clone()
}

// RequestStop asks the run to end at the next phase boundary.
// The current wait is never interrupted.
func (c *Controller) RequestStop() {
	c.stopRequested.Store(true)
}

// Run executes every pulse and then the finished shutdown, blocking for the whole run.
//
// Cancellation of ctx or RequestStop end the run between phases with
// OutcomeCanceled and a nil error. An actuator failure ends it with
// OutcomeFailed and the error. In every case the vibration source is
// commanded to zero exactly once before Run returns.
func (c *Controller) Run(ctx context.Context) (*pulse.Result, error) {
	if !c.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyStarted
	}

	ctx = logger.WithFields(ctx, "run_id", c.progress.RunID)

	startedAt := c.clock.Now()
	c.update(ctx, func(p *pulse.Progress) {
		p.StartedAt = startedAt
	})

	logger.InfoKV(ctx, "Pulse sequence started",
		"pulse_count", c.cfg.PulseCount,
		"closed_hold", c.cfg.ClosedHold(),
		"reopen_wait", c.cfg.ReopenWait(),
		"planned", c.cfg.TotalDuration())

	completed, outcome, runErr := c.runPulses(ctx)

	if err := c.finish(ctx); err != nil {
		outcome = pulse.OutcomeFailed
		runErr = errors.Join(runErr, err)
	}

	result := &pulse.Result{
		Outcome:         outcome,
		PulsesCompleted: completed,
		PulseCount:      c.cfg.PulseCount,
		Elapsed:         c.clock.Now().Sub(startedAt),
	}

	c.update(ctx, func(p *pulse.Progress) {
		p.Outcome = outcome
	})

	return result, runErr
}

// runPulses walks the per-pulse phases and reports how far it got.
func (c *Controller) runPulses(ctx context.Context) (int, pulse.Outcome, error) {
	var (
		closedHold = c.cfg.ClosedHold()
		reopenWait = c.cfg.ReopenWait()
		total      = c.cfg.PulseCount
	)

	for index := range total {
		if c.shouldStop(ctx) {
			return index, pulse.OutcomeCanceled, nil
		}

		if c.onPulseStart != nil {
			c.onPulseStart(ctx, index, total)
		}

		err := c.enter(ctx, index, pulse.PhaseVibrateOn, func() error {
			return c.actuator.SetVibrationIntensity(c.cfg.VibrationIntensity)
		})
		if err != nil {
			return index, pulse.OutcomeFailed, err
		}

		c.hold(c.cfg.VibrationOn)

		if c.shouldStop(ctx) {
			return index, pulse.OutcomeCanceled, nil
		}

		// Vibration must be silent before the gate starts moving.
		err = c.enter(ctx, index, pulse.PhaseVibrateOffAndClose, func() error {
			if err := c.actuator.SetVibrationIntensity(pulse.MinIntensity); err != nil {
				return err
			}

			return c.actuator.SetGatePosition(c.cfg.GateCloseAngle)
		})
		if err != nil {
			return index, pulse.OutcomeFailed, err
		}

		c.hold(closedHold)

		if c.shouldStop(ctx) {
			return index, pulse.OutcomeCanceled, nil
		}

		err = c.enter(ctx, index, pulse.PhaseReopen, func() error {
			return c.actuator.SetGatePosition(c.cfg.GateOpenAngle)
		})
		if err != nil {
			return index, pulse.OutcomeFailed, err
		}

		c.hold(reopenWait)

		c.update(ctx, func(p *pulse.Progress) {
			p.PulsesCompleted = index + 1
		})
	}

	return total, pulse.OutcomeCompleted, nil
}

// enter issues the entry commands of phase and publishes the new snapshot.
func (c *Controller) enter(ctx context.Context, index int, phase pulse.Phase, commands func() error) error {
	if err := commands(); err != nil {
		logger.ErrorKV(ctx, "Actuator command failed", "phase", phase.String(), "pulse", index, "error", err)

		return fmt.Errorf("pulse %d: enter %s: %w", index, phase, err)
	}

	logger.DebugKV(ctx, "Phase entered", "phase", phase.String(), "pulse", index)

	c.update(ctx, func(p *pulse.Progress) {
		p.Phase = phase
		p.PulseIndex = index
	})

	return nil
}

// finish performs the terminal shutdown: a single vibration-off command.
func (c *Controller) finish(ctx context.Context) error {
	err := c.actuator.SetVibrationIntensity(pulse.MinIntensity)

	c.update(ctx, func(p *pulse.Progress) {
		p.Phase = pulse.PhaseFinished
	})

	if err != nil {
		logger.ErrorKV(ctx, "Vibration shutdown failed", "error", err)

		return fmt.Errorf("shutdown vibration: %w", err)
	}

	return nil
}

// hold waits d on the controller clock. Zero-length holds issue no wait.
func (c *Controller) hold(d time.Duration) {
	if d <= 0 {
		return
	}

	c.clock.Sleep(d)
}

func (c *Controller) shouldStop(ctx context.Context) bool {
	if ctx.Err() != nil || c.stopRequested.Load() {
		logger.Info(ctx, "Stop requested, finishing at phase boundary")

		return true
	}

	return false
}

// update mutates the snapshot under lock and notifies the observer with a copy.
func (c *Controller) update(ctx context.Context, mutate func(p *pulse.Progress)) {
	c.mu.Lock()
	mutate(&c.progress)
	c.progress.UpdatedAt = c.clock.Now()
	snapshot := c.progress.Clone()
	c.mu.Unlock()

	if c.observe != nil {
		c.observe(ctx, snapshot)
	}
}
