package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"estech/inference-gateway/pkg/cli"
	"estech/inference-gateway/pkg/routing"
)

var validateFlags struct {
	checkRoutes bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the gateway configuration",
	Long: `Load the configuration file with environment overrides applied and report
every invalid field.

Examples:
  # Validate the default config.yaml
  gateway validate

  # Also load the route table from its source
  gateway validate --config /etc/gateway/config.yaml --check-routes`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateFlags.checkRoutes, "check-routes", false, "load the route table from its configured source")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		if fields := cli.ConfigErrors(err); len(fields) > 0 {
			fmt.Fprintf(out, "✗ %s: %d invalid field(s)\n", cfgFile, len(fields))
			for _, fe := range fields {
				fmt.Fprintf(out, "  - %s: %s\n", fe.Field, fe.Message)
			}
		}
		return cli.NewCommandError("validate", err)
	}

	fmt.Fprintf(out, "✓ Configuration valid: %s\n", cfgFile)
	fmt.Fprintf(out, "  listen:        %s (tls: %t)\n", cfg.Server.ListenAddress, cfg.Server.TLS.Enabled)
	fmt.Fprintf(out, "  auth mode:     %s\n", cfg.Security.Auth.Mode)
	fmt.Fprintf(out, "  routes source: %s\n", cfg.Routes.Source)
	fmt.Fprintf(out, "  retries:       %d attempts, %s delay\n", cfg.Resilience.MaxAttempts, cfg.Resilience.RetryDelay)

	if !validateFlags.checkRoutes {
		return nil
	}
	src, err := routing.NewSource(cfg.Routes)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	table, err := src.Load(cmd.Context())
	if err != nil {
		return cli.NewCommandError("validate", fmt.Errorf("loading routes from %s: %w", src.Name(), err))
	}
	fmt.Fprintf(out, "✓ Routes loaded from %s (%d services)\n", src.Name(), table.Len())
	return nil
}
