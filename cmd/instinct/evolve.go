package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/homunculus/internal/evolve"
	"github.com/fyrsmithlabs/homunculus/internal/report"
	"github.com/fyrsmithlabs/homunculus/internal/store"
)

func newEvolveCmd(a *app) *cobra.Command {
	var generate bool
	cmd := &cobra.Command{
		Use:   "evolve",
		Short: "Cluster instincts into skill candidates",
		Long: `Group instincts by normalized trigger and rank the groups as candidate
skills: larger groups first, then higher mean confidence.

With --generate, each shown candidate is written to
evolved/skills/<name>/SKILL.md.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvolve(cmd, a, generate)
		},
	}
	cmd.Flags().BoolVar(&generate, "generate", false, "write SKILL.md files for the top candidates")
	return cmd
}

func runEvolve(cmd *cobra.Command, a *app, generate bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	policy := a.cfg.Evolve

	result, err := a.loadStore(ctx)
	if err != nil {
		return err
	}
	records := result.Instincts

	if err := evolve.CheckMinimum(len(records), policy.MinInstincts); err != nil {
		if werr := report.WriteInsufficient(out, len(records), policy.MinInstincts); werr != nil {
			return werr
		}
		return err
	}

	clusters := evolve.ClusterInstincts(records, evolve.WithNormalizer(a.normalizer()))

	var generated []*evolve.Artifact
	if generate {
		top := clusters
		if len(top) > policy.TopN {
			top = top[:policy.TopN]
		}
		generated, err = evolve.GenerateAll(top, a.layout.EvolvedDir(store.KindSkills))
		if err != nil {
			return err
		}
		for _, artifact := range generated {
			a.logger.Info(ctx, "generated skill",
				zap.String("name", artifact.Name),
				zap.String("path", artifact.Path),
				zap.String("evolution_id", artifact.EvolutionID))
		}
	}

	return report.WriteEvolve(out, report.Evolve{
		Total:          len(records),
		HighConfidence: evolve.HighConfidenceCount(records, policy.HighConfidence),
		Threshold:      policy.HighConfidence,
		Clusters:       clusters,
		TopN:           policy.TopN,
		SampleSize:     policy.SampleSize,
		Generated:      generated,
	})
}
