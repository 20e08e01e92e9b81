package main

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/homunculus/internal/instinct"
	"github.com/fyrsmithlabs/homunculus/internal/observe"
	"github.com/fyrsmithlabs/homunculus/internal/report"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show all instincts and their status",
		Long: `Show every instinct grouped by domain, strongest first.

Each entry shows a confidence bar, the trigger and the first line of the
"## Action" section of its body.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, a)
		},
	}
}

func runStatus(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()

	result, err := a.loadStore(ctx)
	if err != nil {
		return err
	}

	observations, err := observe.CountLines(a.layout.ObservationsFile())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.logger.Warn(ctx, "failed to count observations", zap.Error(err))
		}
		observations = -1
	}

	return report.WriteStatus(cmd.OutOrStdout(), report.Status{
		Instincts:        result.Instincts,
		PersonalDir:      a.layout.TierDir(instinct.Personal),
		InheritedDir:     a.layout.TierDir(instinct.Inherited),
		Observations:     observations,
		ObservationsFile: a.layout.ObservationsFile(),
	})
}
