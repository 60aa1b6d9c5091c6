// Package rpio drives the injector from Raspberry Pi hardware PWM.
//
// Both channels share one 1 MHz PWM clock, so one tick is one microsecond:
// the gate servo runs a 20000-tick (50 Hz) cycle and the vibration driver a
// configurable shorter one.
package rpio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	gorpio "github.com/stianeikeland/go-rpio/v4"
)

const (
	// clockHz is the shared PWM clock.
	clockHz = 1_000_000
	// servoCycle is the servo period in clock ticks (20 ms).
	servoCycle = 20000
	// MaxServoAngle is the angle mapped to MaxPulse.
	MaxServoAngle = 180
	// maxIntensity is the top of the intensity scale mapped to a full duty cycle.
	maxIntensity = 255

	// DefaultVibrationCycle gives a 1 kHz vibration PWM.
	DefaultVibrationCycle = 1000
	// DefaultMinPulse is the servo pulse width at 0 degrees.
	DefaultMinPulse = 500 * time.Microsecond
	// DefaultMaxPulse is the servo pulse width at 180 degrees.
	DefaultMaxPulse = 2500 * time.Microsecond
)

var (
	// ErrNotPWMPin is returned for GPIOs without a hardware PWM function.
	ErrNotPWMPin = errors.New("pin has no hardware PWM")
	// ErrSharedChannel is returned when both actuators sit on the same PWM channel.
	ErrSharedChannel = errors.New("vibration and gate pins share a PWM channel")
	// ErrValueOutOfRange is returned for intensities or angles outside the device range.
	ErrValueOutOfRange = errors.New("value out of range")
	// ErrInvalidPulseRange is returned when the servo pulse range is empty or too wide.
	ErrInvalidPulseRange = errors.New("invalid servo pulse range")
)

// pwmChannels maps PWM-capable BCM pins to their channel.
//
//nolint:gochecknoglobals // Lookup table.
var pwmChannels = map[uint8]int{
	12: 0, 18: 0, 40: 0,
	13: 1, 19: 1, 41: 1, 45: 1,
}

// Config describes the wiring and servo calibration.
type Config struct {
	// VibrationPin is the BCM number of the vibration PWM output.
	VibrationPin uint8
	// GatePin is the BCM number of the servo signal output.
	GatePin uint8
	// VibrationCycle is the vibration PWM period in microseconds.
	VibrationCycle uint32
	// MinPulse is the servo pulse width at 0 degrees.
	MinPulse time.Duration
	// MaxPulse is the servo pulse width at 180 degrees.
	MaxPulse time.Duration
}

// pwmPin is the subset of gorpio.Pin the driver uses.
type pwmPin interface {
	Pwm()
	Freq(freq int)
	DutyCycle(dutyLen, cycleLen uint32)
}

// Driver implements actuator.Actuator over Raspberry Pi PWM.
type Driver struct {
	vibration pwmPin
	gate      pwmPin
	closeFn   func() error

	vibrationCycle uint32
	minPulse       uint32
	maxPulse       uint32

	closeOnce sync.Once
	closeErr  error
}

// Open maps the GPIO registers and configures both pins.
func Open(cfg Config) (*Driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := gorpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}

	return newDriver(gorpio.Pin(cfg.VibrationPin), gorpio.Pin(cfg.GatePin), gorpio.Close, cfg), nil
}

func (c *Config) validate() error {
	vibrationChannel, ok := pwmChannels[c.VibrationPin]
	if !ok {
		return fmt.Errorf("vibration pin %d: %w", c.VibrationPin, ErrNotPWMPin)
	}

	gateChannel, ok := pwmChannels[c.GatePin]
	if !ok {
		return fmt.Errorf("gate pin %d: %w", c.GatePin, ErrNotPWMPin)
	}

	if vibrationChannel == gateChannel {
		return fmt.Errorf("pins %d and %d: %w", c.VibrationPin, c.GatePin, ErrSharedChannel)
	}

	if c.VibrationCycle == 0 {
		c.VibrationCycle = DefaultVibrationCycle
	}

	if c.MinPulse == 0 && c.MaxPulse == 0 {
		c.MinPulse, c.MaxPulse = DefaultMinPulse, DefaultMaxPulse
	}

	if c.MinPulse <= 0 || c.MaxPulse <= c.MinPulse || c.MaxPulse.Microseconds() > servoCycle {
		return fmt.Errorf("%s..%s: %w", c.MinPulse, c.MaxPulse, ErrInvalidPulseRange)
	}

	return nil
}

func newDriver(vibration, gate pwmPin, closeFn func() error, cfg Config) *Driver {
	for _, pin := range []pwmPin{vibration, gate} {
		pin.Pwm()
		pin.Freq(clockHz)
	}

	return &Driver{
		vibration:      vibration,
		gate:           gate,
		closeFn:        closeFn,
		vibrationCycle: cfg.VibrationCycle,
		minPulse:       uint32(cfg.MinPulse.Microseconds()),
		maxPulse:       uint32(cfg.MaxPulse.Microseconds()),
	}
}

// SetVibrationIntensity scales level onto the vibration duty cycle.
func (d *Driver) SetVibrationIntensity(level int) error {
	if level < 0 || level > maxIntensity {
		return fmt.Errorf("vibration intensity %d: %w", level, ErrValueOutOfRange)
	}

	duty := uint32(level) * d.vibrationCycle / maxIntensity
	d.vibration.DutyCycle(duty, d.vibrationCycle)

	return nil
}

// SetGatePosition converts angle into a servo pulse width.
func (d *Driver) SetGatePosition(angle int) error {
	if angle < 0 || angle > MaxServoAngle {
		return fmt.Errorf("gate angle %d: %w", angle, ErrValueOutOfRange)
	}

	d.gate.DutyCycle(d.pulseWidth(angle), servoCycle)

	return nil
}

// Close stops the vibration output and unmaps the GPIO registers.
func (d *Driver) Close() error {
	d.closeOnce.Do(func() {
		d.vibration.DutyCycle(0, d.vibrationCycle)

		if d.closeFn != nil {
			d.closeErr = d.closeFn()
		}
	})

	return d.closeErr
}

func (d *Driver) pulseWidth(angle int) uint32 {
	return d.minPulse + (d.maxPulse-d.minPulse)*uint32(angle)/MaxServoAngle
}
