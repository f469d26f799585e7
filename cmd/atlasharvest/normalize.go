package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/atlasharvest/internal/config"
	"github.com/nao1215/atlasharvest/internal/database"
	"github.com/nao1215/atlasharvest/internal/model"
	"github.com/nao1215/atlasharvest/internal/normalize"
	"github.com/nao1215/atlasharvest/internal/report"
	"github.com/nao1215/atlasharvest/internal/store"
)

// NewNormalizeCmd creates the normalize command.
func NewNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [partition.json...]",
		Short: "Merge partitions into the normalized dataset",
		Long: `Normalize merges partition files into one dataset, derives each program's
quota status and splits packed attributes.

Without arguments every universities_data_*.json file in the input
directory is merged. Unreadable partitions are reported and skipped; the
command fails only when none can be read.

After writing the dataset, every record is fingerprinted in the history
database so that silent changes between harvests show up as "changed".

Examples:
  # Merge the partitions in the current directory into data.json
  atlasharvest normalize

  # Merge two partitions into a custom file
  atlasharvest normalize -o out.json universities_data_say.json universities_data_ea.json`,
		RunE: runNormalizeCmd,
	}

	cmd.Flags().StringP("input", "i", ".",
		"Directory searched for "+normalize.DefaultPattern+" when no files are given")
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Dataset output file")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Partitions decoded in parallel")
	cmd.Flags().Bool("no-history", false,
		"Do not fingerprint records in the history database")

	return cmd
}

// normalizeOptions holds the normalize flags.
type normalizeOptions struct {
	inputDir    string
	output      string
	concurrency int
	paths       []string
}

// runNormalizeCmd executes the normalize command.
func runNormalizeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := normalizeOptions{paths: args}
	if opts.inputDir, err = cmd.Flags().GetString("input"); err != nil {
		return err
	}
	if opts.output, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	if opts.concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return err
	}
	if opts.concurrency <= 0 {
		return fmt.Errorf("configuration error: %w", config.ErrInvalidConcurrency)
	}
	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cmd.ErrOrStderr())
	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	var db *database.HistoryDB
	if !noHistory {
		if db = openHistory(cfg, logger); db != nil {
			defer db.Close()
		}
	}

	return runNormalize(ctx, cmd.OutOrStdout(), opts, db, logger)
}

// runNormalize merges the partitions, writes the dataset and prints the
// quota status distribution. db may be nil.
func runNormalize(ctx context.Context, out io.Writer, opts normalizeOptions, db *database.HistoryDB, logger *slog.Logger) error {
	paths := opts.paths
	if len(paths) == 0 {
		var err error
		paths, err = normalize.FindPartitions(opts.inputDir)
		if err != nil {
			return fmt.Errorf("failed to list partitions: %w", err)
		}
		if len(paths) == 0 {
			return fmt.Errorf("%w: no %s in %s", normalize.ErrNoInput, normalize.DefaultPattern, opts.inputDir)
		}
	}

	ds, err := normalize.Normalize(ctx, paths,
		normalize.WithConcurrency(opts.concurrency),
		normalize.WithLogger(logger),
	)
	if err != nil {
		if errors.Is(err, normalize.ErrNoInput) && ds != nil {
			printSources(out, ds)
		}
		return err
	}

	printSources(out, ds)

	if err := store.WriteFile(opts.output, ds.Records); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	fmt.Fprintf(out, "\nWrote %d records to %s\n\n", len(ds.Records), opts.output)

	summary := model.NewSummary(ds.Records)
	if _, err := report.NewTextWriter(out).WriteDistribution("Quota Status", summary.QuotaStatuses, summary.TotalRecords); err != nil {
		return err
	}

	if db != nil {
		stats, err := db.SyncFingerprints(ctx, ds.Records)
		if err != nil {
			logger.Warn("fingerprint sync failed", "error", err)
			return nil
		}
		fmt.Fprintf(out, "History: %d new, %d changed, %d unchanged record(s)\n",
			stats.Inserted, stats.Changed, stats.Unchanged)
	}

	return nil
}

func printSources(out io.Writer, ds *normalize.Dataset) {
	for _, src := range ds.Sources {
		if src.Err != nil {
			fmt.Fprintf(out, "  skipped %s: %v\n", src.Path, src.Err)
			continue
		}
		fmt.Fprintf(out, "  loaded  %s (%d records)\n", src.Path, src.Records)
	}
}
