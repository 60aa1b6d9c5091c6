package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/particle-injector/internal/actuator"
	"github.com/oshokin/particle-injector/internal/config"
	"github.com/oshokin/particle-injector/internal/domain/pulse"
	"github.com/oshokin/particle-injector/internal/service/runner"
)

// injector is a runner started in the background for a test.
type injector struct {
	cfgPath     string
	grpcAddress string
	httpAddress string
	journalPath string
	statusPath  string
	recorder    *actuator.Recorder

	done chan error
	stop context.CancelFunc
}

// reservePort returns a free loopback address.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// startInjector saves a config with real supervisor listeners and runs the injector against a recorder.
func startInjector(t *testing.T, cycle pulse.CycleConfig, halt bool) *injector {
	t.Helper()

	dir := t.TempDir()
	inj := &injector{
		cfgPath:     filepath.Join(dir, "settings.yaml"),
		grpcAddress: reservePort(t),
		httpAddress: reservePort(t),
		journalPath: filepath.Join(dir, "journal.db"),
		statusPath:  filepath.Join(dir, "status.json"),
		recorder:    actuator.NewRecorder(),
		done:        make(chan error, 1),
	}

	require.NoError(t, config.Save(inj.cfgPath, &config.Config{
		LogLevel:            "info",
		HaltAfterCompletion: halt,
		// Leaves room for the endpoints to come up before the first pulse.
		StartupDelay: 150 * time.Millisecond,
		Cycle:        cycle,
		Hardware:     config.Hardware{Driver: config.DriverSimulated},
		Supervisor: config.Supervisor{
			GRPCAddress: inj.grpcAddress,
			HTTPAddress: inj.httpAddress,
			Timeout:     3 * time.Second,
		},
		Storage: config.Storage{
			StatusFile:  inj.statusPath,
			JournalFile: inj.journalPath,
		},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	inj.stop = cancel

	go func() {
		inj.done <- runner.Run(ctx, &runner.Options{
			ConfigPath:        inj.cfgPath,
			Actuator:          inj.recorder,
			SkipInstanceCheck: true,
		})
	}()

	t.Cleanup(func() {
		cancel()

		select {
		case <-inj.done:
		case <-time.After(5 * time.Second):
		}
	})

	// Wait briefly for the endpoints to start listening.
	time.Sleep(100 * time.Millisecond)

	return inj
}

// wait returns the runner error once it exits.
func (i *injector) wait(t *testing.T) error {
	t.Helper()

	select {
	case err := <-i.done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("injector did not exit")

		return nil
	}
}
