package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/homunculus/internal/instinct"
	"github.com/fyrsmithlabs/homunculus/internal/store"
)

type importOptions struct {
	dryRun        bool
	force         bool
	minConfidence float64
}

func newImportCmd(a *app) *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import <file|url|->",
		Short: "Import instincts from a file or URL",
		Long: `Import instincts into the inherited tier.

The source is a local file, an http(s) URL or "-" for stdin. Records without
an id are ignored, records whose id already exists are skipped unless --force
is given. Accepted records are written to instincts/inherited/<name>.yaml.

Examples:
  # Preview an import
  instinct import team.yaml --dry-run

  # Import only confident instincts
  instinct import https://example.com/pack.yaml --min-confidence 0.7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, a, opts, args[0])
		},
	}
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show what would be imported without writing")
	cmd.Flags().BoolVar(&opts.force, "force", false, "import records whose id already exists")
	cmd.Flags().Float64Var(&opts.minConfidence, "min-confidence", 0, "skip records below this confidence")
	return cmd
}

func runImport(cmd *cobra.Command, a *app, opts *importOptions, source string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	src, err := store.ReadSource(ctx, source, cmd.InOrStdin())
	if err != nil {
		return err
	}

	existing, err := a.loadStore(ctx)
	if err != nil {
		return err
	}

	importOpts := store.ImportOptions{DryRun: opts.dryRun, Force: opts.force}
	if cmd.Flags().Changed("min-confidence") {
		importOpts.MinConfidence = &opts.minConfidence
	}

	result, err := store.Import(src, existing.Instincts, a.layout.TierDir(instinct.Inherited), importOpts)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Importing from %s\n", source)
	fmt.Fprintf(out, "  Found %d instincts\n\n", len(result.Added)+len(result.Skipped))

	verb := "Imported"
	if opts.dryRun {
		verb = "Would import"
	}
	for _, r := range result.Added {
		fmt.Fprintf(out, "  + %s\n", r.ID())
	}
	for _, s := range result.Skipped {
		fmt.Fprintf(out, "  - %s (%s)\n", s.Instinct.ID(), s.Reason)
	}

	switch {
	case len(result.Added) == 0:
		fmt.Fprintln(out, "\nNothing to import.")
	case result.Path != "":
		fmt.Fprintf(out, "\n%s %d instincts to %s\n", verb, len(result.Added), result.Path)
	default:
		fmt.Fprintf(out, "\n%s %d instincts\n", verb, len(result.Added))
	}

	a.logger.Info(ctx, "import finished",
		zap.String("source", source),
		zap.Int("added", len(result.Added)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Bool("dry_run", opts.dryRun))
	return nil
}
