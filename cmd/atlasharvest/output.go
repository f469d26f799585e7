package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/atlasharvest/internal/report"
)

// addReportFlags adds the --format and --output flags shared by stats and
// history.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", string(report.FormatText),
		"Output format: "+strings.Join(report.Formats(), ", "))
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file instead of stdout (creates directories if needed)")
}

// reportWriter returns the writer selected by the report flags and a
// function closing its destination.
func reportWriter(cmd *cobra.Command) (report.Writer, func() error, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, nil, err
	}
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = cmd.OutOrStdout()
	closeFn := func() error { return nil }
	if path != "" {
		f, err := createReportFile(path)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closeFn = f.Close
	}

	w, err := report.NewWriter(report.Format(strings.ToLower(format)), out)
	if err != nil {
		_ = closeFn() //nolint:errcheck // the format error is the one to report
		return nil, nil, err
	}
	return w, closeFn, nil
}

func createReportFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// isTextFormat reports whether format selects the terminal tables.
func isTextFormat(format string) bool {
	f := report.Format(strings.ToLower(format))
	return f == report.FormatText || f == ""
}
