package history

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/oshokin/particle-injector/internal/config"
	"github.com/oshokin/particle-injector/internal/domain/pulse"
	"github.com/oshokin/particle-injector/internal/logger"
	"github.com/oshokin/particle-injector/internal/repository/journal"
)

// Options controls pulse-history.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// JournalFile overrides storage.journal_file from the config.
	JournalFile string
	// Limit caps the number of rows; zero lists every run.
	Limit int
	// Output receives the table. Defaults to stdout.
	Output io.Writer
}

// DefaultLimit is the number of runs listed when no limit is given on the command line.
const DefaultLimit = 20

// Run prints the most recent runs, newest first.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "pulse-history")

	journalFile := opts.JournalFile
	if journalFile == "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		journalFile = cfg.Storage.JournalFile
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	runs, err := journal.Open(ctx, journalFile)
	if err != nil {
		return err
	}

	defer func() {
		_ = runs.Close()
	}()

	records, err := runs.List(ctx, opts.Limit)
	if err != nil {
		return err
	}

	logger.DebugKV(ctx, "Listing runs", "journal_file", journalFile, "count", len(records))

	return write(out, records)
}

// write renders records as an aligned table.
func write(out io.Writer, records []*pulse.RunRecord) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "ID\tSTARTED\tOPERATOR\tDRIVER\tPULSES\tOUTCOME\tDURATION\tERROR")

	for _, r := range records {
		outcome := string(r.Outcome)
		if outcome == "" {
			outcome = "running"
		}

		duration := "-"
		if !r.FinishedAt.IsZero() {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Operator.String(),
			r.Driver,
			strconv.Itoa(r.PulsesCompleted)+"/"+strconv.Itoa(r.PulseCount),
			outcome,
			duration,
			r.Error,
		)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write history: %w", err)
	}

	return nil
}
