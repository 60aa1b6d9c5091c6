package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/particle-injector/internal/config"
	"github.com/oshokin/particle-injector/internal/logger"
	"github.com/oshokin/particle-injector/internal/service/watcher"
	"github.com/oshokin/particle-injector/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// watch keeps polling until the run finishes.
	watch bool
	// interval between polls in watch mode.
	interval time.Duration

	// rootCmd represents the base command for reading the injector status.
	rootCmd = &cobra.Command{
		Use:   "pulse-status [server-address]",
		Short: "Show the progress of a running pulse injector.",
		Long: `Queries the injector's gRPC supervisor and prints the current phase,
pulse and outcome. With --watch it keeps polling until the run has an outcome.
Server address can be provided as argument to override config.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var serverAddress string
			if len(args) > 0 {
				serverAddress = args[0]
			}

			options := &watcher.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				Watch:         watch,
				PollInterval:  interval,
			}

			return watcher.Run(ctx, options)
		},
	}
)

// Execute runs the pulse-status CLI and exits with non-zero status on error.
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
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "poll until the run finishes")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", watcher.DefaultPollInterval, "poll interval in watch mode")
}
