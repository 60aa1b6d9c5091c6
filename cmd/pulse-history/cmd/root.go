package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/particle-injector/internal/config"
	"github.com/oshokin/particle-injector/internal/service/history"
	"github.com/oshokin/particle-injector/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// journalFile overrides the journal path from the config.
	journalFile string
	// limit caps the number of listed runs.
	limit int

	// rootCmd represents the base command for listing past runs.
	rootCmd = &cobra.Command{
		Use:   "pulse-history",
		Short: "List past pulse injector runs.",
		Long: `Reads the run journal and prints one line per run, newest first:
operator, driver, completed pulses, outcome, duration and error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			options := &history.Options{
				ConfigPath:  configPath,
				JournalFile: journalFile,
				Limit:       limit,
				Output:      cmd.OutOrStdout(),
			}

			return history.Run(context.Background(), options)
		},
	}
)

// Execute runs the pulse-history CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&journalFile, "journal", "j", "", "path to the journal database (overrides config)")
	rootCmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "maximum number of runs to list (0 lists all)")
}
