package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/homunculus/internal/instinct"
	"github.com/fyrsmithlabs/homunculus/internal/store"
)

type exportOptions struct {
	output        string
	domain        string
	minConfidence float64
}

func newExportCmd(a *app) *cobra.Command {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export instincts to a file",
		Long: `Export instincts from both tiers in record format.

Records are written to stdout unless --output is given. The output can be
imported again with "instinct import".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, a, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringVar(&opts.domain, "domain", "", "only export this domain")
	cmd.Flags().Float64Var(&opts.minConfidence, "min-confidence", 0, "only export records at or above this confidence")
	return cmd
}

func runExport(cmd *cobra.Command, a *app, opts *exportOptions) error {
	result, err := a.loadStore(cmd.Context())
	if err != nil {
		return err
	}

	filter := store.FilterOptions{Domain: opts.domain}
	if cmd.Flags().Changed("min-confidence") {
		filter.MinConfidence = &opts.minConfidence
	}
	records := store.Filter(result.Instincts, filter)

	if len(records) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No instincts to export.")
		return nil
	}

	if opts.output == "" {
		return instinct.Format(cmd.OutOrStdout(), records)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", opts.output, err)
	}
	if err := instinct.Format(f, records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", opts.output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.output, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d instincts to %s\n", len(records), opts.output)
	return nil
}
