package main

import (
	"github.com/spf13/cobra"
)

func newRoutesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the routes of the example application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			app, err := opts.buildApp(cmd.Context(), cfg, nil, nil)
			if err != nil {
				return err
			}

			routes := app.Routes().GetAllRoutes()
			opts.diag.Section("Routes")
			for _, route := range routes {
				opts.diag.List("%-6s %-16s %s (guards: %d)", route.Method, route.Path, route.HandlerName, route.Guards)
			}
			opts.diag.Summary("Summary", map[string]any{
				"Routes": len(routes),
				"Server": app.Server().Name(),
				"Paths":  len(app.Document().Paths),
			})
			return nil
		},
	}
}
