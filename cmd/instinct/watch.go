package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/homunculus/internal/evolve"
	"github.com/fyrsmithlabs/homunculus/internal/instinct"
	"github.com/fyrsmithlabs/homunculus/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload the store whenever instinct files change",
		Long: `Watch both instinct tiers and print instinct and cluster counts after
every change. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, a)
		},
	}
}

func runWatch(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	reload := func(ctx context.Context, changed []string) error {
		result, err := a.loadStore(ctx)
		if err != nil {
			return err
		}
		clusters := evolve.ClusterInstincts(result.Instincts, evolve.WithNormalizer(a.normalizer()))

		fmt.Fprintf(out, "%s  %d instincts, %d clusters, %d warnings\n",
			time.Now().Format(time.TimeOnly), len(result.Instincts), len(clusters), len(result.Warnings))
		a.logger.Info(ctx, "store reloaded",
			zap.Strings("changed", changed),
			zap.Int("instincts", len(result.Instincts)),
			zap.Int("clusters", len(clusters)))
		return nil
	}

	w, err := watch.New(
		[]string{a.layout.TierDir(instinct.Personal), a.layout.TierDir(instinct.Inherited)},
		reload,
		watch.WithDebounce(a.cfg.Watch.Debounce.Duration()),
		watch.WithPattern(a.cfg.Store.Pattern),
		watch.WithLogger(a.logger))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", a.layout.InstinctsDir())
	if err := reload(ctx, nil); err != nil {
		return err
	}
	return w.Run(ctx)
}
