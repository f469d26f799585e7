package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/atlasharvest/internal/config"
	"github.com/nao1215/atlasharvest/internal/model"
	"github.com/nao1215/atlasharvest/internal/store"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print descriptive counts over the dataset",
		Long: `Stats counts the records of a dataset per score type and per quota
status and lists every distinct attribute.

Examples:
  # Terminal tables for data.json
  atlasharvest stats

  # Markdown with pie charts
  atlasharvest stats -f markdown -o reports/stats.md

  # JSON for scripts, from a single partition
  atlasharvest stats -i universities_data_say.json -f json`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}

	cmd.Flags().StringP("input", "i", config.DefaultOutputFile,
		"Dataset or partition file to summarize")
	addReportFlags(cmd)

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	input, err := cmd.Flags().GetString("input")
	if err != nil {
		return err
	}

	records, err := store.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}

	w, closeFn, err := reportWriter(cmd)
	if err != nil {
		return err
	}

	_, werr := w.WriteSummary(model.NewSummary(records))
	if cerr := closeFn(); werr == nil {
		werr = cerr
	}
	return werr
}
