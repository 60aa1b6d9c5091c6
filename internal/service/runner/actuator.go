package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/oshokin/particle-injector/internal/actuator"
	"github.com/oshokin/particle-injector/internal/actuator/firmata"
	"github.com/oshokin/particle-injector/internal/actuator/rpio"
	"github.com/oshokin/particle-injector/internal/clock"
	"github.com/oshokin/particle-injector/internal/config"
	"github.com/oshokin/particle-injector/internal/logger"
)

// openActuator builds the driver selected by hw.
//
//nolint:ireturn // The driver is chosen at runtime.
func openActuator(ctx context.Context, hw config.Hardware, clk clock.Clock) (actuator.Actuator, error) {
	switch hw.Driver {
	case config.DriverSimulated, "":
		return actuator.NewRecorder(
			actuator.WithClock(clk),
			actuator.WithLogger(logger.FromContext(ctx).Named("actuator")),
		), nil
	case config.DriverFirmata:
		driver, err := firmata.Open(firmata.Config{
			Port:         hw.SerialPort,
			BaudRate:     hw.BaudRate,
			VibrationPin: hw.VibrationPin,
			GatePin:      hw.GatePin,
		})
		if err != nil {
			return nil, fmt.Errorf("open firmata board on %s: %w", hw.SerialPort, err)
		}

		return driver, nil
	case config.DriverRPIO:
		driver, err := rpio.Open(rpio.Config{
			VibrationPin:   hw.VibrationPin,
			GatePin:        hw.GatePin,
			VibrationCycle: hw.VibrationPWMCycle,
			MinPulse:       hw.ServoMinPulse,
			MaxPulse:       hw.ServoMaxPulse,
		})
		if err != nil {
			return nil, fmt.Errorf("open rpio pins: %w", err)
		}

		return driver, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, hw.Driver)
	}
}

// safetyStop releases the actuator exactly once. While armed it first
// commands the vibration source to zero, which covers exits that bypass
// the controller's own shutdown.
type safetyStop struct {
	ctx      context.Context //nolint:containedctx // Used only for logging from exit handlers.
	actuator actuator.Actuator

	armed bool
	once  sync.Once
	mu    sync.Mutex
	err   error
}

func newSafetyStop(ctx context.Context, act actuator.Actuator) *safetyStop {
	return &safetyStop{
		ctx:      ctx,
		actuator: act,
		armed:    true,
	}
}

// disarm marks the vibration source as already stopped by the controller.
func (s *safetyStop) disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.armed = false
}

// release stops vibration if still armed and closes the driver.
func (s *safetyStop) release() error {
	s.once.Do(func() {
		s.mu.Lock()
		armed := s.armed
		s.armed = false
		s.mu.Unlock()

		var errs []error

		if armed {
			logger.Warn(s.ctx, "Stopping vibration before exit")

			if err := s.actuator.SetVibrationIntensity(0); err != nil {
				errs = append(errs, fmt.Errorf("stop vibration: %w", err))
			}
		}

		if closer, ok := s.actuator.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close actuator: %w", err))
			}
		}

		s.err = errors.Join(errs...)
	})

	return s.err
}

// releaseOnExit is the atexit form of release.
func (s *safetyStop) releaseOnExit() {
	if err := s.release(); err != nil {
		logger.ErrorKV(s.ctx, "Safety stop failed", "error", err)
	}
}
