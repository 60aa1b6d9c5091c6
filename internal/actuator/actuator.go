// Package actuator defines the two commands the pulse controller sends to
// hardware and provides an in-memory recorder for dry runs and tests.
//
// Hardware drivers live in the firmata and rpio subpackages.
package actuator

//go:generate mockgen -destination mock_actuator.go -package actuator -write_package_comment=false . Actuator

// Actuator drives the vibration source and the gate.
// Both commands are idempotent and return without waiting for the hardware to settle.
type Actuator interface {
	// SetVibrationIntensity sets the vibration level; zero stops it.
	SetVibrationIntensity(level int) error
	// SetGatePosition moves the gate to an absolute angle.
	SetGatePosition(angle int) error
}
