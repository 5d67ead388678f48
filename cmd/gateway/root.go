package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"estech/inference-gateway/pkg/cli"
	"estech/inference-gateway/pkg/config"
)

var (
	// Global flags
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Inference gateway - name-based dispatch to inference backends",
	Long: `The inference gateway exposes one dispatch endpoint in front of a set of
inference backends. Callers name a service; the gateway looks up its base URL
and forwards the request.

Every dispatch is:
  - authenticated with a bearer credential (JWT or API key)
  - admitted under a global concurrency limit
  - forwarded under a circuit breaker with bounded retries
  - traced, logged and counted by outcome`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a status derived from the
// error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before environment overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

// loadConfig reads the dotenv file, the YAML file and the environment
// overrides, in that order.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, cli.NewConfigError("env-file", err.Error())
	}
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}
