// Package main implements the instinct CLI for the homunculus instinct store.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/homunculus/internal/config"
	"github.com/fyrsmithlabs/homunculus/internal/evolve"
	"github.com/fyrsmithlabs/homunculus/internal/logging"
	"github.com/fyrsmithlabs/homunculus/internal/store"
)

// version information
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string
	dir        string
	logLevel   string

	cfg    *config.Config
	logger *logging.Logger
	layout store.Layout
	stderr io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "instinct",
		Short: "Manage learned instincts",
		Long: `instinct manages a personal knowledge base of short lessons ("instincts")
learned by an agent over time.

Instincts live as flat record files under the homunculus directory
(~/.claude/homunculus by default):
  instincts/personal/    learned locally
  instincts/inherited/   imported from others

Examples:
  # Show every instinct grouped by domain
  instinct status

  # Import a shared pack
  instinct import https://example.com/go-testing.yaml

  # Look for skill candidates
  instinct evolve`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default <dir>/config.yaml)")
	root.PersistentFlags().StringVar(&a.dir, "dir", "", "homunculus directory (default $HOMUNCULUS_DIR or ~/.claude/homunculus)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		newStatusCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newEvolveCmd(a),
		newObserveCmd(a),
		newWatchCmd(a),
	)
	return root
}

// setup loads configuration, builds the logger and ensures the directory
// layout exists.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	configPath := a.configPath
	if configPath == "" && a.dir != "" {
		configPath = filepath.Join(a.dir, config.FileName)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if a.dir != "" {
		cfg.Dir = a.dir
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	logger, err := newLogger(cfg, cmd)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.layout = store.NewLayout(cfg.Dir)
	a.stderr = cmd.ErrOrStderr()

	ctx := logging.WithCommand(cmd.Context(), cmd.Name())
	cmd.SetContext(logging.WithLogger(ctx, logger))

	return a.layout.Ensure()
}

func newLogger(cfg *config.Config, cmd *cobra.Command) (*logging.Logger, error) {
	level, err := logging.LevelFromString(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	logCfg := logging.NewDefaultConfig()
	logCfg.Level = level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller.Enabled = cfg.Logging.Caller
	return logging.NewLogger(logCfg, cmd.ErrOrStderr())
}

// loadStore reads both tiers. Skipped files never fail the command and are
// always reported on stderr: through the logger when it shows warnings,
// directly otherwise.
func (a *app) loadStore(ctx context.Context) (*store.LoadResult, error) {
	loader, err := store.NewLoader(a.layout.Tiers(),
		store.WithPattern(a.cfg.Store.Pattern),
		store.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	result := loader.LoadAll(ctx)
	if !a.logger.Enabled(zapcore.WarnLevel) {
		for _, w := range result.Warnings {
			fmt.Fprintf(a.stderr, "warning: skipping %s\n", w)
		}
	}
	return result, nil
}

// normalizer returns the trigger normalizer selected by configuration.
func (a *app) normalizer() evolve.Normalizer {
	if a.cfg.Evolve.WordBoundary {
		return evolve.WordBoundaryNormalizer
	}
	return evolve.NormalizeTrigger
}
