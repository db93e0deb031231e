package main

import (
	"github.com/spf13/cobra"
)

func checkCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate navtree.json and the manifest",
		Long: `Load navtree.json and build the route tree from the manifest,
reporting the first problem found.

Examples:
  navtree check
  navtree check --manifest=routes/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			tree, err := loadTree(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			success(out, "%s: %d routes", cfg.ManifestPath(), tree.Len())
			if nf := tree.NotFound(); nf != nil {
				info(out, "not found view: %s", nf.HTML)
			}
			return nil
		},
	}
}
