package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/atlasharvest/internal/config"
	"github.com/nao1215/atlasharvest/internal/database"
	applog "github.com/nao1215/atlasharvest/internal/log"
)

// NewRootCmd creates the root command for atlasharvest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "atlasharvest",
		Short: "Harvest university program listings from the admission atlas",
		Long: `atlasharvest collects the university program listings of the admission
atlas for each score type (say, ea, soz, dil, tyt), stores them as JSON
partitions and merges the partitions into one normalized dataset.

Crawls resume: programs already stored in a partition are skipped, so an
interrupted crawl can simply be started again.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-log", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .atlasharvest in current or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory of the run history database (default: XDG data directory)")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewNormalizeCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return false
	}
	return verbose
}

// setupLogger creates the scrubbing logger and installs it as default.
func setupLogger(cmd *cobra.Command, w io.Writer) *slog.Logger {
	verbose := getVerboseFlag(cmd)
	jsonLog, err := cmd.Flags().GetBool("json-log")
	if err != nil {
		jsonLog = false
	}

	var logger *slog.Logger
	if jsonLog {
		logger = applog.NewJSONLogger(w, verbose)
	} else {
		logger = applog.NewLogger(w, verbose)
	}
	slog.SetDefault(logger)
	return logger
}

// loadConfig builds a Config from defaults, the config file and the
// persistent flags. An explicitly given config file must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	path := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case path != "":
		cfg.File, err = config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	return cfg, nil
}

// openHistory opens the run history database. Failing to open it is not
// fatal for crawl and normalize; they log and go on without history.
func openHistory(cfg *config.Config, logger *slog.Logger) *database.HistoryDB {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("run history disabled", "dir", cfg.DBDir, "error", err)
		return nil
	}
	logger.Debug("run history opened", "path", db.Path())
	return db
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// isCancelled reports whether err comes from an interrupted run.
func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
