package supervisor

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/particle-injector/internal/domain/pulse"
)

// Struct field names of an encoded progress snapshot.
const (
	fieldRunID           = "run_id"
	fieldPhase           = "phase"
	fieldPulseIndex      = "pulse_index"
	fieldPulseCount      = "pulse_count"
	fieldPulsesCompleted = "pulses_completed"
	fieldOutcome         = "outcome"
	fieldStartedAt       = "started_at"
	fieldUpdatedAt       = "updated_at"
)

// errEmptyStatus is returned when decoding a nil struct.
var errEmptyStatus = errors.New("status is empty")

// ProgressToStruct encodes a progress snapshot as a protobuf Struct.
func ProgressToStruct(p *pulse.Progress) (*structpb.Struct, error) {
	if p == nil {
		return nil, errEmptyStatus
	}

	fields := map[string]any{
		fieldRunID:           p.RunID,
		fieldPhase:           p.Phase.String(),
		fieldPulseIndex:      p.PulseIndex,
		fieldPulseCount:      p.PulseCount,
		fieldPulsesCompleted: p.PulsesCompleted,
		fieldOutcome:         string(p.Outcome),
	}

	if !p.StartedAt.IsZero() {
		fields[fieldStartedAt] = p.StartedAt.Format(time.RFC3339Nano)
	}

	if !p.UpdatedAt.IsZero() {
		fields[fieldUpdatedAt] = p.UpdatedAt.Format(time.RFC3339Nano)
	}

	result, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode status: %w", err)
	}

	return result, nil
}

// ProgressFromStruct decodes a protobuf Struct produced by ProgressToStruct.
func ProgressFromStruct(s *structpb.Struct) (*pulse.Progress, error) {
	if s == nil {
		return nil, errEmptyStatus
	}

	fields := s.GetFields()

	phase, err := pulse.ParsePhase(fields[fieldPhase].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}

	startedAt, err := parseTime(fields[fieldStartedAt].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldStartedAt, err)
	}

	updatedAt, err := parseTime(fields[fieldUpdatedAt].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldUpdatedAt, err)
	}

	return &pulse.Progress{
		RunID:           fields[fieldRunID].GetStringValue(),
		Phase:           phase,
		PulseIndex:      int(fields[fieldPulseIndex].GetNumberValue()),
		PulseCount:      int(fields[fieldPulseCount].GetNumberValue()),
		PulsesCompleted: int(fields[fieldPulsesCompleted].GetNumberValue()),
		Outcome:         pulse.Outcome(fields[fieldOutcome].GetStringValue()),
		StartedAt:       startedAt,
		UpdatedAt:       updatedAt,
	}, nil
}

// parseTime treats an empty string as the zero time.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	return time.Parse(time.RFC3339Nano, s)
}
