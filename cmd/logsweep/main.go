// Package main implements logsweep, an interactive cleaner for the logs and
// data/output directories of the current working tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"logsweep/internal/config"
	"logsweep/internal/database"
	"logsweep/internal/exitcodes"
	"logsweep/internal/logging"
	"logsweep/internal/sweep"
)

// app holds the flag values and the exit code of one invocation.
type app struct {
	configPath string
	verbose    bool
	noColor    bool

	exitCode int
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logsweep",
		Short: "Interactively remove log and output files",
		Long: `logsweep counts the *.log files under ./logs and the *.csv files under
./data/output, then asks which of them to remove. Only files directly
inside those two directories are removed; subdirectories are left alone.`,
		Example: `logsweep
logsweep --config logsweep.yaml --verbose`,
		Args: cobra.NoArgs,
		RunE: a.runSweep,
	}

	cmd.Flags().StringVar(&a.configPath, "config", "", "Path to an optional YAML configuration file")
	cmd.Flags().BoolVar(&a.verbose, "verbose", false, "Write diagnostic logs to stderr")
	cmd.Flags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func main() {
	a := &app{exitCode: exitcodes.Success}
	cmd := newRootCmd(a)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := fang.Execute(
		ctx,
		cmd,
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	)
	if err != nil && a.exitCode == exitcodes.Success {
		a.exitCode = 1
	}
	stop()
	os.Exit(a.exitCode)
}

func (a *app) runSweep(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		cfg, err = config.Load(a.configPath)
		if err != nil {
			a.exitCode = exitcodes.InvalidConfig
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	if a.noColor {
		cfg.Color = config.ColorNever
	}

	root, err := os.Getwd()
	if err != nil {
		a.exitCode = exitcodes.RuntimeError
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	// Before the log file or database is created, so neither can show up
	// in the counts
	if err := sweep.CheckArtifacts(root, cfg); err != nil {
		a.exitCode = exitcodes.InvalidConfig
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closer := logging.NewWithConfig(cfg, a.verbose, cmd.ErrOrStderr())
	defer closer.Close()
	logger.Printf("logsweep %s starting in %s", version, root)

	var db *database.DeletionDB
	if cfg.DatabasePath != "" {
		logger.Printf("Opening deletion database: %s", cfg.DatabasePath)
		db, err = database.NewDeletionDB(cfg.DatabasePath)
		if err != nil {
			a.exitCode = exitcodes.RuntimeError
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: Failed to close database: %v", err)
			}
		}()
	}

	tool := sweep.New(sweep.Options{
		Root:   root,
		In:     cmd.InOrStdin(),
		Out:    cmd.OutOrStdout(),
		Config: cfg,
		Logger: logger,
		DB:     db,
	})

	if _, err := tool.Run(cmd.Context()); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			// Leave the shell prompt on a fresh line
			fmt.Fprintln(cmd.OutOrStdout())
			logger.Println("Interrupted, no further files removed")
			a.exitCode = exitcodes.Interrupted
			return nil
		case errors.Is(err, sweep.ErrArtifactInFileSet):
			a.exitCode = exitcodes.InvalidConfig
		default:
			a.exitCode = exitcodes.RuntimeError
		}
		return err
	}

	return nil
}
