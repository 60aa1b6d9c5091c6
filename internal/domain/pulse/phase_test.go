package pulse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestPhase_StringParse verifies names round-trip and unknown names are rejected.
func TestPhase_StringParse(t *testing.T) {
	t.Parallel()

	for _, phase := range []Phase{PhaseIdle, PhaseVibrateOn, PhaseVibrateOffAndClose, PhaseReopen, PhaseFinished} {
		got, err := ParsePhase(phase.String())
		require.NoError(t, err)
		require.Equal(t, phase, got)
	}

	require.Equal(t, "phase(42)", Phase(42).String())

	_, err := ParsePhase("spinning")
	require.ErrorIs(t, err, ErrUnknownPhase)
}

// TestProgressClone verifies Clone copies values and handles nil.
func TestProgressClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Progress)(nil).Clone())
	require.False(t, (*Progress)(nil).Done())

	p := &Progress{
		RunID:      "run",
		Phase:      PhaseReopen,
		PulseIndex: 1,
		PulseCount: 3,
		StartedAt:  time.Unix(100, 0),
	}

	c := p.Clone()
	require.Equal(t, p, c)
	require.NotSame(t, p, c)
	require.False(t, c.Done())

	c.Outcome = OutcomeCompleted
	require.True(t, c.Done())
	require.Empty(t, p.Outcome)
}

// TestOperatorClone verifies that Clone returns a copy and handles nil safely.
func TestOperatorClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Operator)(nil).Clone())
	require.Equal(t, "<unknown>", (*Operator)(nil).String())

	o := &Operator{Hostname: "bench-3", Username: "lab"}
	c := o.Clone()

	require.Equal(t, o, c)
	require.NotSame(t, o, c)
	require.Equal(t, "lab@bench-3", o.String())
}

// TestProgressSummary renders running and finished snapshots.
func TestProgressSummary(t *testing.T) {
	t.Parallel()

	running := &Progress{RunID: "r1", Phase: PhaseReopen, PulseIndex: 1, PulseCount: 3, PulsesCompleted: 1}
	require.Equal(t, "run r1: reopen, pulse 2 / 3, 1 completed", running.Summary())

	finished := &Progress{RunID: "r1", Phase: PhaseFinished, PulseIndex: 2, PulseCount: 3, PulsesCompleted: 3, Outcome: OutcomeCompleted}
	require.Equal(t, "run r1: finished, pulse 3 / 3, 3 completed, completed", finished.Summary())

	var none *Progress
	require.Equal(t, "no run", none.Summary())
}
