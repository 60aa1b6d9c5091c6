package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/oshokin/particle-injector/internal/actuator"
	"github.com/oshokin/particle-injector/internal/clock"
	"github.com/oshokin/particle-injector/internal/config"
	"github.com/oshokin/particle-injector/internal/domain/pulse"
	"github.com/oshokin/particle-injector/internal/logger"
	"github.com/oshokin/particle-injector/internal/repository/journal"
	"github.com/oshokin/particle-injector/internal/repository/status"
	"github.com/oshokin/particle-injector/internal/service/common"
	"github.com/oshokin/particle-injector/internal/service/injector"
)

// Options controls the pulse-injector process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// VirtualTime replaces every wait with a virtual clock. Simulated driver only.
	VirtualTime bool
	// Actuator overrides the configured driver when set.
	Actuator actuator.Actuator
	// SkipInstanceCheck disables the single-instance guard.
	SkipInstanceCheck bool
}

// ErrVirtualTimeOnHardware rejects virtual time for real actuators.
var ErrVirtualTimeOnHardware = errors.New("virtual time is only allowed with the simulated driver")

// Run executes one pulse sequence and blocks until it has finished.
// With halt_after_completion it then idles, still serving status, until ctx is canceled.
//
//nolint:cyclop,funlen // Linear startup sequence; splitting would scatter the cleanup order.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "pulse-injector")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err = logger.SetLevelFromString(cfg.LogLevel); err != nil {
		return err
	}

	if opts.VirtualTime && opts.Actuator == nil && cfg.Hardware.Driver != config.DriverSimulated {
		return ErrVirtualTimeOnHardware
	}

	if !opts.SkipInstanceCheck {
		if err = common.EnsureSingleInstance(); err != nil {
			return err
		}
	}

	var clk clock.Clock = clock.System{}
	if opts.VirtualTime {
		clk = clock.NewVirtual(time.Now())
	}

	act := opts.Actuator
	if act == nil {
		if act, err = openActuator(ctx, cfg.Hardware, clk); err != nil {
			return err
		}
	}

	safety := newSafetyStop(ctx, act)
	atexit.Register(safety.releaseOnExit)

	defer func() {
		if releaseErr := safety.release(); releaseErr != nil {
			logger.ErrorKV(ctx, "Safety stop failed", "error", releaseErr)
		}
	}()

	// Journal writes must survive the cancellation that ends a run.
	storageCtx := context.WithoutCancel(ctx)

	runs, err := journal.Open(storageCtx, cfg.Storage.JournalFile)
	if err != nil {
		return err
	}

	defer func() {
		_ = runs.Close()
	}()

	runID := xid.New().String()

	statusRepo := status.NewFileRepository(cfg.Storage.StatusFile)

	controller, err := injector.New(cfg.Cycle, act,
		injector.WithClock(clk),
		injector.WithRunID(runID),
		injector.WithPulseStartHook(func(ctx context.Context, index, total int) {
			logger.Infof(ctx, "Pulse %d / %d", index+1, total)
		}),
		injector.WithProgressObserver(func(ctx context.Context, progress *pulse.Progress) {
			if saveErr := statusRepo.Save(ctx, progress); saveErr != nil {
				logger.WarnKV(ctx, "Unable to save status", "error", saveErr)
			}
		}),
	)
	if err != nil {
		return err
	}

	stopEndpoints, err := startEndpoints(ctx, cfg.Supervisor, controller)
	if err != nil {
		return err
	}

	defer stopEndpoints()

	record := &pulse.RunRecord{
		ID:         runID,
		Operator:   detectOperator(ctx),
		Driver:     string(cfg.Hardware.Driver),
		PulseCount: cfg.Cycle.PulseCount,
		StartedAt:  clk.Now(),
	}

	if err = runs.Start(storageCtx, record); err != nil {
		logger.WarnKV(ctx, "Unable to journal run start", "error", err)
	}

	waitStartupDelay(ctx, clk, cfg.StartupDelay, opts.VirtualTime)

	result, runErr := controller.Run(ctx)
	if result != nil {
		// The controller has already commanded the vibration source to zero.
		safety.disarm()
	}

	finishRun(ctx, clk, runs, record, result, runErr)

	if runErr != nil {
		return fmt.Errorf("pulse sequence: %w", runErr)
	}

	if cfg.HaltAfterCompletion && ctx.Err() == nil {
		logger.Info(ctx, "Halted, waiting for signal")
		<-ctx.Done()
	}

	return nil
}

// waitStartupDelay waits before the first pulse; cancellation cuts it short.
func waitStartupDelay(ctx context.Context, clk clock.Clock, delay time.Duration, virtual bool) {
	if delay <= 0 {
		return
	}

	logger.Infof(ctx, "Starting in %s", delay)

	if virtual {
		clk.Sleep(delay)

		return
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// finishRun logs the terminal outcome and stores it in the journal.
func finishRun(
	ctx context.Context,
	clk clock.Clock,
	runs journal.Repository,
	record *pulse.RunRecord,
	result *pulse.Result,
	runErr error,
) {
	record.FinishedAt = clk.Now()

	if result != nil {
		record.Outcome = result.Outcome
		record.PulsesCompleted = result.PulsesCompleted

		logger.InfoKV(ctx, "Sequence complete",
			"run_id", record.ID,
			"outcome", result.Outcome,
			"pulses_completed", result.PulsesCompleted,
			"pulse_count", result.PulseCount,
			"elapsed", result.Elapsed.String())
	}

	if runErr != nil {
		record.Error = runErr.Error()
		logger.ErrorKV(ctx, "Pulse sequence failed", "error", runErr)
	}

	if err := runs.Finish(context.WithoutCancel(ctx), record); err != nil {
		logger.WarnKV(ctx, "Unable to journal run finish", "error", err)
	}
}

func detectOperator(ctx context.Context) *pulse.Operator {
	operator, err := common.DetectOperator()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect operator", "error", err)

		return nil
	}

	return operator
}
