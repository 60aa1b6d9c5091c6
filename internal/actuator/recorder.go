package actuator

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oshokin/particle-injector/internal/clock"
)

// CommandKind names the capability a command was sent to.
type CommandKind string

const (
	// KindVibration is a SetVibrationIntensity command.
	KindVibration CommandKind = "vibration"
	// KindGate is a SetGatePosition command.
	KindGate CommandKind = "gate"
)

// Command is one recorded actuator call.
type Command struct {
	// Kind is the capability the command targeted.
	Kind CommandKind
	// Value is the intensity or angle.
	Value int
	// At is the clock time the command was issued.
	At time.Time
}

// Recorder is an Actuator that keeps every command in memory.
// It backs the simulated driver and the controller tests.
type Recorder struct {
	// clock stamps recorded commands.
	clock clock.Clock
	// log receives one debug line per command when set.
	log *zap.SugaredLogger
	// commands holds the command history in issue order.
	commands []Command
	// mu protects commands.
	mu sync.Mutex
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock stamps commands using c instead of the wall clock.
func WithClock(c clock.Clock) RecorderOption {
	return func(r *Recorder) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithLogger logs every command at debug level.
func WithLogger(l *zap.SugaredLogger) RecorderOption {
	return func(r *Recorder) {
		r.log = l
	}
}

// NewRecorder creates an empty recorder.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		clock: clock.System{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// SetVibrationIntensity records a vibration command.
func (r *Recorder) SetVibrationIntensity(level int) error {
	r.record(KindVibration, level)

	return nil
}

// SetGatePosition records a gate command.
func (r *Recorder) SetGatePosition(angle int) error {
	r.record(KindGate, angle)

	return nil
}

// Commands returns a copy of the recorded history.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Command, len(r.commands))
	copy(result, r.commands)

	return result
}

// Close is a no-op so the recorder can stand in for a hardware driver.
func (r *Recorder) Close() error {
	return nil
}

func (r *Recorder) record(kind CommandKind, value int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands = append(r.commands, Command{
		Kind:  kind,
		Value: value,
		At:    r.clock.Now(),
	})

	if r.log != nil {
		r.log.Debugw("Actuator command", "kind", kind, "value", value)
	}
}
