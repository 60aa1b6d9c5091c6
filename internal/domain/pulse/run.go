package pulse

import (
	"fmt"
	"time"
)

// Result is what a finished run reports to its caller.
type Result struct {
	// Outcome tells whether the run completed, was canceled or failed.
	Outcome Outcome
	// PulsesCompleted counts pulses whose reopen wait fully elapsed.
	PulsesCompleted int
	// PulseCount is the configured number of pulses.
	PulseCount int
	// Elapsed is the time between the start of the run and the shutdown command.
	Elapsed time.Duration
}

// Progress is a point-in-time view of a running controller.
type Progress struct {
	// RunID identifies the run across logs, status file and journal.
	RunID string
	// Phase is the phase most recently entered.
	Phase Phase
	// PulseIndex is the 0-based index of the current pulse.
	PulseIndex int
	// PulseCount is the configured number of pulses.
	PulseCount int
	// PulsesCompleted counts fully finished pulses.
	PulsesCompleted int
	// Outcome is empty until the run reaches the finished phase.
	Outcome Outcome
	// StartedAt is when the run began.
	StartedAt time.Time
	// UpdatedAt is when the snapshot last changed.
	UpdatedAt time.Time
}

// Clone returns a copy of the progress to avoid leaking internal references.
func (p *Progress) Clone() *Progress {
	if p == nil {
		return nil
	}

	cloned := *p

	return &cloned
}

// Done reports whether the run has reached a terminal outcome.
func (p *Progress) Done() bool {
	return p != nil && p.Outcome != ""
}

// Summary renders the progress as a single human-readable line.
func (p *Progress) Summary() string {
	if p == nil {
		return "no run"
	}

	line := fmt.Sprintf("run %s: %s, pulse %d / %d, %d completed",
		p.RunID, p.Phase, min(p.PulseIndex+1, p.PulseCount), p.PulseCount, p.PulsesCompleted)

	if p.Outcome != "" {
		line += ", " + string(p.Outcome)
	}

	return line
}

// Operator identifies who started a run.
type Operator struct {
	// Hostname is the machine the run was started from.
	Hostname string
	// Username is the system user who started the run.
	Username string
}

// Clone returns a deep copy of the operator.
func (o *Operator) Clone() *Operator {
	if o == nil {
		return nil
	}

	cloned := *o

	return &cloned
}

// String renders the operator as user@host.
func (o *Operator) String() string {
	if o == nil {
		return "<unknown>"
	}

	return o.Username + "@" + o.Hostname
}

// RunRecord is one journal entry.
type RunRecord struct {
	ID              string
	Operator        *Operator
	Driver          string
	PulseCount      int
	PulsesCompleted int
	Outcome         Outcome
	Error           string
	StartedAt       time.Time
	FinishedAt      time.Time
}
