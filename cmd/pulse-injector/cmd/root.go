package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/particle-injector/internal/config"
	"github.com/oshokin/particle-injector/internal/logger"
	"github.com/oshokin/particle-injector/internal/service/runner"
	"github.com/oshokin/particle-injector/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// envFile is an optional dotenv file loaded before the config.
	envFile string
	// virtualTime runs the sequence without real waits.
	virtualTime bool

	// rootCmd represents the base command for running one pulse sequence.
	rootCmd = &cobra.Command{
		Use:   "pulse-injector",
		Short: "Run one pulse sequence on the particle injector.",
		Long: `Drives the vibration source and the gate through the configured pulse cycle.

Each pulse runs vibrate-on, vibrate-off-and-close and reopen; after the last
pulse the vibration source is commanded off once and the process returns,
or idles until signalled when halt_after_completion is set.

SIGINT and SIGTERM stop the run at the next phase boundary.
Supervisor endpoints (gRPC and HTTP) are served while the run is active.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if err := config.LoadEnvFile(envFile); err != nil {
				return err
			}

			options := &runner.Options{
				ConfigPath:  configPath,
				VirtualTime: virtualTime,
			}

			return runner.Run(ctx, options)
		},
	}
)

// Execute runs the pulse-injector CLI and exits with non-zero status on error.
// Exit handlers registered by the runner fire on both paths.
func Execute() {
	logger.RedirectGRPC(zapcore.WarnLevel)
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.ErrorKV(context.Background(), "Pulse injector failed", "error", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&envFile, "env-file", "e", config.DefaultEnvFilename, "path to dotenv file")
	rootCmd.Flags().BoolVar(&virtualTime, "virtual-time", false, "skip real waits (simulated driver only)")

	_ = rootCmd.Flags().MarkHidden("virtual-time")
}
