package main

import (
	"github.com/spf13/cobra"

	"estech/inference-gateway/pkg/cli"
	"estech/inference-gateway/pkg/routing"
)

var routesFlags struct {
	output string
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route table",
	Long: `Load the route table from the configured source (inline, file or sqlite)
and print it.

Examples:
  gateway routes
  gateway routes --output json
  gateway routes --output yaml > routes.yaml`,
	RunE: printRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
	routesCmd.Flags().StringVarP(&routesFlags.output, "output", "o", "text", "output format: text, json, yaml")
}

func printRoutes(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(routesFlags.output)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("routes", err)
	}
	src, err := routing.NewSource(cfg.Routes)
	if err != nil {
		return cli.NewCommandError("routes", err)
	}
	table, err := src.Load(cmd.Context())
	if err != nil {
		return cli.NewCommandError("routes", err)
	}

	routes := make(map[string]string, table.Len())
	for _, name := range table.Names() {
		routes[name], _ = table.Lookup(name)
	}
	return cli.WriteRoutes(cmd.OutOrStdout(), format, routes)
}
