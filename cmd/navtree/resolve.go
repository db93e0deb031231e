package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navtree/pkg/router"
)

func resolveCmd(opts *globalOptions) *cobra.Command {
	var (
		asJSON bool
		render bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Resolve a path against the route tree",
		Long: `Resolve a path and print the matched route, its view and captures.

A path no route matches resolves to the not_found view when the manifest
declares one.

Examples:
  navtree resolve /users/42
  navtree resolve '/files/docs/a.txt?raw=1' --json
  navtree resolve /users --render`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			tree, err := loadTree(cfg)
			if err != nil {
				return err
			}

			var routerOpts []router.Option
			if render {
				a, _, err := newAssembler(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				routerOpts = append(routerOpts, router.WithRenderer(a))
			}

			page, err := router.New(tree, routerOpts...).Navigate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			}
			printPage(out, page)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the page as JSON")
	cmd.Flags().BoolVar(&render, "render", false, "Assemble the view markup")

	return cmd
}

func printPage(w io.Writer, page *router.Page) {
	route := page.Route
	if page.NotFound {
		route = "(not found)"
	}
	fmt.Fprintf(w, "Path:    %s\n", page.Path)
	fmt.Fprintf(w, "Route:   %s\n", route)
	fmt.Fprintf(w, "Status:  %d\n", page.Status)
	if v := page.View; v.HTML != "" || v.CSS != "" || v.JSRef != "" {
		fmt.Fprintf(w, "View:    html=%q css=%q js=%q\n", v.HTML, v.CSS, v.JSRef)
	}

	if len(page.Context) > 0 {
		fmt.Fprintln(w, "Captures:")
		for _, name := range slices.Sorted(maps.Keys(page.Context)) {
			value, _ := json.Marshal(page.Context[name])
			fmt.Fprintf(w, "  %s = %s\n", name, value)
		}
	}
	if page.HTML != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, page.HTML)
	}
}
