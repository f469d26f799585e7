package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/atlasharvest/internal/config"
	"github.com/nao1215/atlasharvest/internal/database"
	"github.com/nao1215/atlasharvest/internal/model"
)

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded crawl runs",
		Long: `History lists crawl runs from the history database, newest first, with
their final state, page and record counts and the error of failed runs.
It also shows how many fingerprinted records each score type has.

Examples:
  # Last 20 runs
  atlasharvest history

  # Last 5 runs of the TYT listing as Markdown
  atlasharvest history -s tyt -n 5 -f markdown`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("score-type", "s", "",
		"Only list runs of this score type")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs (0: all)")
	addReportFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	filter, err := cmd.Flags().GetString("score-type")
	if err != nil {
		return err
	}
	if filter != "" {
		st, err := model.ParseScoreType(filter)
		if err != nil {
			return fmt.Errorf("%w: %q", config.ErrUnknownScoreType, filter)
		}
		filter = st.String()
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit < 0 {
		return fmt.Errorf("invalid limit %d: must be non-negative", limit)
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	runs, err := db.ListRuns(ctx, filter, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	w, closeFn, err := reportWriter(cmd)
	if err != nil {
		return err
	}

	_, werr := w.WriteRuns(runs)
	if cerr := closeFn(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return werr
	}

	if format, _ := cmd.Flags().GetString("format"); !isTextFormat(format) { //nolint:errcheck // read by reportWriter already
		return nil
	}
	counts, err := db.CountFingerprints(ctx)
	if err != nil {
		return fmt.Errorf("failed to count fingerprints: %w", err)
	}
	if len(counts) > 0 {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Fingerprinted records:")
		for _, st := range model.AllScoreTypes() {
			if n, ok := counts[st.String()]; ok {
				fmt.Fprintf(out, "  %-4s %d\n", st, n)
			}
		}
	}
	return nil
}
