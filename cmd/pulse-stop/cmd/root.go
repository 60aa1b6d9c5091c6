package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/particle-injector/internal/config"
	"github.com/oshokin/particle-injector/internal/logger"
	"github.com/oshokin/particle-injector/internal/service/stopper"
	"github.com/oshokin/particle-injector/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for stopping a run.
	rootCmd = &cobra.Command{
		Use:   "pulse-stop [server-address]",
		Short: "Stop a running pulse injector at the next phase boundary.",
		Long: `Sends a stop request to the injector's gRPC supervisor.

The injector finishes the phase it is in, commands the vibration source off
and reports the run as canceled. Server address can be provided as argument
to override config.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var serverAddress string
			if len(args) > 0 {
				serverAddress = args[0]
			}

			options := &stopper.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
			}

			return stopper.Run(ctx, options)
		},
	}
)

// Execute runs the pulse-stop CLI and exits with non-zero status on error.
func Execute() {
	logger.RedirectGRPC(zapcore.ErrorLevel)
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
