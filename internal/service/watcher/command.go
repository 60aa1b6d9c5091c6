package watcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/particle-injector/internal/config"
	"github.com/oshokin/particle-injector/internal/domain/pulse"
	"github.com/oshokin/particle-injector/internal/logger"
	"github.com/oshokin/particle-injector/internal/service/common"
)

// Options controls pulse-status.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional supervisor address override.
	ServerAddress string
	// Watch keeps polling until the run has an outcome.
	Watch bool
	// PollInterval defines the interval between polls in watch mode.
	PollInterval time.Duration
	// Output receives one summary line per poll. Defaults to stdout.
	Output io.Writer
}

// DefaultPollInterval is the watch-mode polling interval.
const DefaultPollInterval = time.Second

// Run prints the current status, or with Watch polls until the run is done or ctx ends.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "pulse-status")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	address, err := common.SupervisorAddress(cfg, opts.ServerAddress)
	if err != nil {
		return err
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	client, err := common.Dial(ctx, address, common.WithCallTimeout(cfg.Supervisor.Timeout))
	if err != nil {
		return fmt.Errorf("dial supervisor: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	progress, err := report(ctx, client, out)
	if err != nil || !opts.Watch || progress.Done() {
		return err
	}

	logger.InfoKV(ctx, "Watching run", "server_address", address, "interval", opts.PollInterval.String())

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
			progress, err = report(ctx, client, out)
			if err != nil {
				logger.ErrorKV(ctx, "Get status failed", "error", err)
				continue
			}

			if progress.Done() {
				return nil
			}
		}
	}
}

// report fetches the status and prints its summary.
func report(ctx context.Context, client *common.Client, out io.Writer) (*pulse.Progress, error) {
	progress, err := client.GetStatus(ctx)
	if err != nil {
		return nil, err
	}

	if _, err = fmt.Fprintln(out, progress.Summary()); err != nil {
		return nil, fmt.Errorf("write status: %w", err)
	}

	return progress, nil
}
