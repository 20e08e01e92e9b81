package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/homunculus/internal/config"
	"github.com/fyrsmithlabs/homunculus/internal/logging"
	"github.com/fyrsmithlabs/homunculus/internal/observe"
	"github.com/fyrsmithlabs/homunculus/internal/store"
)

func newObserveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "observe [pre|post]",
		Short: "Record a tool-use hook event",
		Long: `Record a tool-use event for later pattern analysis.

Meant to be wired as a pre and post tool-use hook. The hook payload is read
from stdin as JSON and passed through to stdout unchanged. Recording is
skipped while <dir>/disabled exists. This command always exits successfully
so it never blocks the agent.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(observe.PhasePre), string(observe.PhasePost)},
		// Hooks must not fail, so a broken configuration falls back to
		// defaults instead of aborting.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, args); err != nil {
				a.fallback(cmd, err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			phase := observe.Phase("unknown")
			if len(args) > 0 {
				phase = observe.Phase(args[0])
			}
			return runObserve(cmd, a, phase)
		},
	}
}

// fallback replaces a failed setup with default settings.
func (a *app) fallback(cmd *cobra.Command, cause error) {
	cfg := config.Default()
	if a.dir != "" {
		cfg.Dir = a.dir
	}
	logger, err := newLogger(cfg, cmd)
	if err != nil {
		logger = logging.NewNop()
	}
	a.cfg = cfg
	a.logger = logger
	a.layout = store.NewLayout(cfg.Dir)
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	logger.Warn(cmd.Context(), "using default configuration", zap.Error(cause))
}

func runObserve(cmd *cobra.Command, a *app, phase observe.Phase) error {
	ctx := cmd.Context()
	recorder := observe.NewRecorder(a.layout,
		observe.WithMaxFileSize(int64(a.cfg.Observe.MaxFileSizeMB)*1024*1024),
		observe.WithMaxFieldChars(a.cfg.Observe.MaxFieldChars),
		observe.WithLogger(a.logger))

	if err := recorder.Record(ctx, phase, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		a.logger.Warn(ctx, "failed to record observation", zap.String("phase", string(phase)), zap.Error(err))
	}
	return nil
}
