package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"estech/inference-gateway/pkg/cli"
	"estech/inference-gateway/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway",
	Long: `Start the gateway with the specified configuration.

The gateway serves /v1/run and /api/v1/compute, the operator endpoints under
/admin, the health probes and Prometheus metrics. SIGINT or SIGTERM starts a
graceful shutdown; a second signal exits immediately.

Examples:
  # Start with default config
  gateway run

  # Start with custom config
  gateway run --config /etc/gateway/config.yaml

  # Override listen address
  gateway run --listen 0.0.0.0:8080

  # Build every component without serving
  gateway run --dry-run`,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "wire all components and exit without serving")
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.close(flushCtx); err != nil {
			logger.Warn("error releasing resources", "error", err)
		}
	}()

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid, all components wired")
		return nil
	}

	if err := a.startReloaders(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	logger.Info("starting inference gateway",
		"version", Version,
		"config", cfgFile,
		"listen_address", cfg.Server.ListenAddress,
		"auth_mode", cfg.Security.Auth.Mode,
		"max_concurrent", cfg.Gateway.MaxConcurrent,
		"tracing", a.tracer.Enabled(),
	)

	if err := a.server.Run(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}
