package pulse

import (
	"errors"
	"fmt"
)

// Phase is a state of the pulse-cycle state machine.
type Phase int

const (
	// PhaseIdle is the state before the first pulse.
	PhaseIdle Phase = iota
	// PhaseVibrateOn runs the vibration source at the configured intensity.
	PhaseVibrateOn
	// PhaseVibrateOffAndClose silences vibration and closes the gate.
	PhaseVibrateOffAndClose
	// PhaseReopen opens the gate ahead of the next pulse.
	PhaseReopen
	// PhaseFinished is terminal: vibration is off and nothing else is commanded.
	PhaseFinished
)

// ErrUnknownPhase is returned by ParsePhase for unrecognised names.
var ErrUnknownPhase = errors.New("unknown phase")

//nolint:gochecknoglobals // Lookup table.
var phaseNames = map[Phase]string{
	PhaseIdle:               "idle",
	PhaseVibrateOn:          "vibrate_on",
	PhaseVibrateOffAndClose: "vibrate_off_and_close",
	PhaseReopen:             "reopen",
	PhaseFinished:           "finished",
}

// String returns the snake_case name used in logs and on the wire.
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}

	return fmt.Sprintf("phase(%d)", int(p))
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	for phase, name := range phaseNames {
		if name == s {
			return phase, nil
		}
	}

	return PhaseIdle, fmt.Errorf("%w: %q", ErrUnknownPhase, s)
}

// Outcome is how a run ended. The zero value means the run is still going.
type Outcome string

const (
	// OutcomeCompleted means every configured pulse ran.
	OutcomeCompleted Outcome = "completed"
	// OutcomeCanceled means a stop was requested between phases.
	OutcomeCanceled Outcome = "canceled"
	// OutcomeFailed means an actuator command failed.
	OutcomeFailed Outcome = "failed"
)
