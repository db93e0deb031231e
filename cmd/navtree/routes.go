package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navtree/pkg/manifest"
)

func routesCmd(opts *globalOptions) *cobra.Command {
	var asHCL bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the routes of the tree",
		Long: `List every route in depth-first order with its capture and view.

With --hcl the tree is printed as a single normalized manifest.`,
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
			if asHCL {
				_, err := manifest.FromTree(tree, tree.NotFound()).WriteTo(out)
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ROUTE\tCAPTURE\tHTML\tCSS\tJS")
			for _, r := range tree.Routes() {
				capture := "-"
				if r.Capture != "" {
					capture = r.Capture + " (" + r.Arity + ")"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Path, capture, dash(r.View.HTML), dash(r.View.CSS), dash(r.View.JSRef))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asHCL, "hcl", false, "Print the tree as a manifest")

	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
