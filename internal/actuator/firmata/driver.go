// Package firmata drives the injector from an Arduino running StandardFirmata.
//
// The vibration motor sits on a PWM pin and the gate servo on a pin in
// servo mode; both are written with analog messages.
package firmata

import (
	"errors"
	"fmt"
	"sync"

	gofirmata "github.com/kraman/go-firmata"
)

const (
	// DefaultBaudRate is the StandardFirmata serial speed.
	DefaultBaudRate = 57600

	// maxPWM is the top of the Firmata analog write range.
	maxPWM = 255
	// MaxServoAngle is the top of the Firmata servo range in degrees.
	MaxServoAngle = 180
)

var (
	// ErrPortRequired is returned when no serial port is configured.
	ErrPortRequired = errors.New("serial port must be provided")
	// ErrValueOutOfRange is returned for intensities or angles the board cannot express.
	ErrValueOutOfRange = errors.New("value out of range")
	// ErrClosed is returned for commands sent after Close.
	ErrClosed = errors.New("firmata driver is closed")
)

// Config describes how the actuators are wired to the board.
type Config struct {
	// Port is the serial device, e.g. /dev/ttyACM0.
	Port string
	// BaudRate defaults to DefaultBaudRate.
	BaudRate int
	// VibrationPin is the PWM pin of the vibration motor driver.
	VibrationPin uint8
	// GatePin is the pin the gate servo signal wire is attached to.
	GatePin uint8
}

// board is the subset of the Firmata client the driver uses.
type board interface {
	SetPinMode(pin uint8, mode gofirmata.PinMode) error
	AnalogWrite(pin uint, value byte) error
}

// Driver implements actuator.Actuator over Firmata.
type Driver struct {
	board   board
	closeFn func()

	vibrationPin uint8
	gatePin      uint8

	closed bool
	mu     sync.Mutex
}

// Open connects to the board and configures both pins.
func Open(cfg Config) (*Driver, error) {
	if cfg.Port == "" {
		return nil, ErrPortRequired
	}

	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	client, err := gofirmata.NewClient(cfg.Port, cfg.BaudRate)
	if err != nil {
		return nil, fmt.Errorf("connect to firmata board on %s: %w", cfg.Port, err)
	}

	d, err := newDriver(client, func() { client.Close() }, cfg)
	if err != nil {
		client.Close()

		return nil, err
	}

	return d, nil
}

func newDriver(b board, closeFn func(), cfg Config) (*Driver, error) {
	if err := b.SetPinMode(cfg.VibrationPin, gofirmata.PWM); err != nil {
		return nil, fmt.Errorf("set vibration pin %d to PWM: %w", cfg.VibrationPin, err)
	}

	if err := b.SetPinMode(cfg.GatePin, gofirmata.Servo); err != nil {
		return nil, fmt.Errorf("set gate pin %d to servo: %w", cfg.GatePin, err)
	}

	return &Driver{
		board:        b,
		closeFn:      closeFn,
		vibrationPin: cfg.VibrationPin,
		gatePin:      cfg.GatePin,
	}, nil
}

// SetVibrationIntensity writes the PWM duty for the vibration motor.
func (d *Driver) SetVibrationIntensity(level int) error {
	if level < 0 || level > maxPWM {
		return fmt.Errorf("vibration intensity %d: %w", level, ErrValueOutOfRange)
	}

	return d.write(d.vibrationPin, byte(level))
}

// SetGatePosition writes the servo angle for the gate.
func (d *Driver) SetGatePosition(angle int) error {
	if angle < 0 || angle > MaxServoAngle {
		return fmt.Errorf("gate angle %d: %w", angle, ErrValueOutOfRange)
	}

	return d.write(d.gatePin, byte(angle))
}

// Close releases the serial port. It is safe to call more than once.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}

	d.closed = true

	if d.closeFn != nil {
		d.closeFn()
	}

	return nil
}

func (d *Driver) write(pin uint8, value byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	if err := d.board.AnalogWrite(uint(pin), value); err != nil {
		return fmt.Errorf("analog write pin %d: %w", pin, err)
	}

	return nil
}
