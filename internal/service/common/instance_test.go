//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

// fakeProcess satisfies ps.Process with fixed values.
type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.executable }

func listOf(processes ...ps.Process) processLister {
	return func() ([]ps.Process, error) {
		return processes, nil
	}
}

// TestEnsureSingleInstance_IgnoresSelf passes when the only match is the current process.
func TestEnsureSingleInstance_IgnoresSelf(t *testing.T) {
	t.Parallel()

	list := listOf(
		fakeProcess{pid: 10, executable: "pulse-injector"},
		fakeProcess{pid: 11, executable: "pulse-status"},
	)

	require.NoError(t, ensureSingleInstance(list, "pulse-injector", 10))
}

// TestEnsureSingleInstance_DetectsOther fails when another process has the same name.
func TestEnsureSingleInstance_DetectsOther(t *testing.T) {
	t.Parallel()

	list := listOf(
		fakeProcess{pid: 10, executable: "pulse-injector"},
		fakeProcess{pid: 42, executable: "pulse-injector"},
	)

	err := ensureSingleInstance(list, "pulse-injector", 10)
	require.ErrorIs(t, err, ErrAlreadyRunning)
	require.Contains(t, err.Error(), "pid 42")
}

// TestEnsureSingleInstance_ListError surfaces failures of the process listing.
func TestEnsureSingleInstance_ListError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	list := func() ([]ps.Process, error) { return nil, boom }

	require.ErrorIs(t, ensureSingleInstance(list, "pulse-injector", 1), boom)
}
