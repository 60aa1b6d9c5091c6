package stopper

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/particle-injector/internal/config"
	"github.com/oshokin/particle-injector/internal/logger"
	"github.com/oshokin/particle-injector/internal/service/common"
)

// Options controls pulse-stop.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional supervisor address override.
	ServerAddress string
	// Output receives the status returned by the injector. Defaults to stdout.
	Output io.Writer
}

// Run sends the stop request and prints the status at the time of the request.
// The injector still finishes the current phase before shutting down.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "pulse-stop")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	address, err := common.SupervisorAddress(cfg, opts.ServerAddress)
	if err != nil {
		return err
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

	operator, err := common.DetectOperator()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect operator", "error", err)
	}

	progress, err := client.Stop(ctx)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Stop requested", "server_address", address, "operator", operator.String())

	if _, err = fmt.Fprintln(out, progress.Summary()); err != nil {
		return fmt.Errorf("write status: %w", err)
	}

	return nil
}
