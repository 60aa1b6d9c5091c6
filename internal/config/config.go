package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/particle-injector/internal/actuator/firmata"
	"github.com/oshokin/particle-injector/internal/actuator/rpio"
	"github.com/oshokin/particle-injector/internal/domain/pulse"
	"github.com/oshokin/particle-injector/internal/logger"
)

// Driver names an actuator backend.
type Driver string

const (
	// DriverSimulated records commands in memory and logs them.
	DriverSimulated Driver = "simulated"
	// DriverFirmata talks to an Arduino over the Firmata protocol.
	DriverFirmata Driver = "firmata"
	// DriverRPIO uses Raspberry Pi hardware PWM.
	DriverRPIO Driver = "rpio"
)

// Config holds every setting of the particle injector.
type Config struct {
	// LogLevel is the minimum level for console logs.
	LogLevel string `yaml:"log_level"`
	// StartupDelay is waited once before the first pulse for the rig to settle.
	StartupDelay time.Duration `yaml:"startup_delay"`
	// HaltAfterCompletion keeps the process idle after the run until it is signalled.
	HaltAfterCompletion bool `yaml:"halt_after_completion"`
	// Cycle is the pulse sequence.
	Cycle pulse.CycleConfig `yaml:"cycle"`
	// Hardware selects and wires the actuator driver.
	Hardware Hardware `yaml:"hardware"`
	// Supervisor configures the status and stop endpoints.
	Supervisor Supervisor `yaml:"supervisor"`
	// Storage configures the status file and run journal.
	Storage Storage `yaml:"storage"`
}

// Hardware describes the actuator backend.
type Hardware struct {
	// Driver is one of simulated, firmata or rpio.
	Driver Driver `yaml:"driver"`
	// SerialPort is the Firmata board device.
	SerialPort string `yaml:"serial_port,omitempty"`
	// BaudRate is the Firmata serial speed.
	BaudRate int `yaml:"baud_rate,omitempty"`
	// VibrationPin is the pin driving the vibration motor.
	VibrationPin uint8 `yaml:"vibration_pin"`
	// GatePin is the pin driving the gate servo.
	GatePin uint8 `yaml:"gate_pin"`
	// VibrationPWMCycle is the rpio vibration PWM period in microseconds.
	VibrationPWMCycle uint32 `yaml:"vibration_pwm_cycle,omitempty"`
	// ServoMinPulse is the rpio servo pulse width at 0 degrees.
	ServoMinPulse time.Duration `yaml:"servo_min_pulse,omitempty"`
	// ServoMaxPulse is the rpio servo pulse width at 180 degrees.
	ServoMaxPulse time.Duration `yaml:"servo_max_pulse,omitempty"`
}

// Supervisor configures how a running injector can be observed and stopped.
type Supervisor struct {
	// GRPCAddress enables the gRPC supervisor when set.
	GRPCAddress string `yaml:"grpc_address,omitempty"`
	// HTTPAddress enables the HTTP monitor when set.
	HTTPAddress string `yaml:"http_address,omitempty"`
	// Timeout bounds each supervisor call made by the CLIs.
	Timeout time.Duration `yaml:"timeout"`
}

// Storage configures where run data is kept.
type Storage struct {
	// StatusFile receives the latest progress snapshot as JSON.
	StatusFile string `yaml:"status_file"`
	// JournalFile is the SQLite database with one row per run.
	JournalFile string `yaml:"journal_file"`
}

const (
	// DefaultConfigFilename is the default filename for injector settings.
	DefaultConfigFilename = "particle-injector.yaml"

	// DefaultEnvFilename is the dotenv file read before the settings.
	DefaultEnvFilename = ".env"

	// DefaultStatusFilename is the default filename for the progress snapshot.
	DefaultStatusFilename = "particle-injector-status.json"

	// DefaultJournalFilename is the default filename for the run journal.
	DefaultJournalFilename = "particle-injector-journal.db"

	// DefaultTimeout is the default duration for supervisor calls.
	DefaultTimeout = 5 * time.Second

	// DefaultBaudRate is the StandardFirmata serial speed.
	DefaultBaudRate = 57600

	// DefaultFilePermissions is the default file permission for config and status files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// ErrUnknownDriver is returned for an unrecognised hardware driver.
	ErrUnknownDriver = errors.New("unknown hardware driver")
	// ErrSerialPortRequired is returned when the firmata driver has no serial port.
	ErrSerialPortRequired = errors.New("hardware.serial_port must be provided for the firmata driver")
	// ErrSamePin is returned when both actuators are wired to one pin.
	ErrSamePin = errors.New("hardware.vibration_pin and hardware.gate_pin must differ")
	// ErrNegativeStartupDelay is returned when startup_delay is below zero.
	ErrNegativeStartupDelay = errors.New("startup_delay must not be negative")
	// ErrGateAngleOutOfRange is returned when a gate angle is outside the driver's servo range.
	ErrGateAngleOutOfRange = errors.New("gate angle out of range")
)

// LoadEnvFile seeds the process environment from a dotenv file.
// A missing file is not an error; variables already set are kept.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFilename
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(filepath.Clean(path)); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	return nil
}

// Load reads configuration from the provided path, expands ${VAR} references and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(contents))), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults.
// Every error names the offending YAML field.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("log_level: %w: %q", logger.ErrUnknownLevel, settings.LogLevel)
	}

	if settings.StartupDelay < 0 {
		return ErrNegativeStartupDelay
	}

	if err := settings.Cycle.Validate(); err != nil {
		return fmt.Errorf("cycle: %w", err)
	}

	if err := validateHardware(&settings.Hardware); err != nil {
		return err
	}

	if err := validateGateAngles(settings.Cycle, settings.Hardware.Driver); err != nil {
		return err
	}

	if err := validateSupervisor(&settings.Supervisor); err != nil {
		return err
	}

	// Set default storage paths if not specified.
	if settings.Storage.StatusFile == "" {
		settings.Storage.StatusFile = DefaultStatusFilename
	}

	if settings.Storage.JournalFile == "" {
		settings.Storage.JournalFile = DefaultJournalFilename
	}

	return nil
}

func validateHardware(hw *Hardware) error {
	if hw.Driver == "" {
		hw.Driver = DriverSimulated
	}

	switch hw.Driver {
	case DriverSimulated:
	case DriverFirmata:
		if hw.SerialPort == "" {
			return ErrSerialPortRequired
		}

		if hw.BaudRate <= 0 {
			hw.BaudRate = DefaultBaudRate
		}
	case DriverRPIO:
		if hw.ServoMinPulse < 0 || hw.ServoMaxPulse < 0 {
			return fmt.Errorf("hardware.servo_min_pulse/servo_max_pulse: %w", pulse.ErrNegativeDuration)
		}
	default:
		return fmt.Errorf("hardware.driver: %w: %q", ErrUnknownDriver, hw.Driver)
	}

	if hw.Driver != DriverSimulated && hw.VibrationPin == hw.GatePin {
		return ErrSamePin
	}

	return nil
}

// validateGateAngles rejects angles the selected servo driver would refuse mid-run.
// The simulated driver accepts any angle.
func validateGateAngles(cycle pulse.CycleConfig, driver Driver) error {
	var maxAngle int

	switch driver {
	case DriverFirmata:
		maxAngle = firmata.MaxServoAngle
	case DriverRPIO:
		maxAngle = rpio.MaxServoAngle
	default:
		return nil
	}

	for _, angle := range []struct {
		name  string
		value int
	}{
		{"cycle.gate_open_angle", cycle.GateOpenAngle},
		{"cycle.gate_close_angle", cycle.GateCloseAngle},
	} {
		if angle.value < 0 || angle.value > maxAngle {
			return fmt.Errorf("%s %d not in [0, %d] for the %s driver: %w",
				angle.name, angle.value, maxAngle, driver, ErrGateAngleOutOfRange)
		}
	}

	return nil
}

func validateSupervisor(sv *Supervisor) error {
	for name, address := range map[string]string{
		"supervisor.grpc_address": sv.GRPCAddress,
		"supervisor.http_address": sv.HTTPAddress,
	} {
		if address == "" {
			continue
		}

		if _, err := net.ResolveTCPAddr("tcp", address); err != nil {
			return fmt.Errorf("%s: invalid address: %w", name, err)
		}
	}

	// Set default timeout if not specified.
	if sv.Timeout <= 0 {
		sv.Timeout = DefaultTimeout
	}

	return nil
}
