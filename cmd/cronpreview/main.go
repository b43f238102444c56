package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/djlord-it/cronpreview/internal/config"

	// Embedded IANA database so timezone resolution does not depend on the host.
	_ "time/tzdata"
)

// Build-time variables set via -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitSuccess       = 0
	exitRuntimeError  = 1
	exitInvalidConfig = 2
	exitInvalidInput  = 3
)

// exitError carries a process exit code alongside the error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitRuntimeError
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cronpreview",
		Short: "cronpreview - cron schedule preview engine",
		Long: `cronpreview parses 5-field cron expressions, computes upcoming execution
instants in an IANA timezone and describes the schedule in English.

Environment Variables (serve):
  HTTP_ADDR                  HTTP server address (default: ":8080", falls back to PORT)
  HTTP_SHUTDOWN_TIMEOUT      Graceful HTTP shutdown timeout (default: "10s")
  REQUEST_TIMEOUT            Per-request timeout (default: "5s")
  ENVIRONMENT                development, staging or production (default: "production")
  LOG_LEVEL                  Log level (default: "info")

  METRICS_ENABLED            Enable Prometheus metrics (default: "false")
  METRICS_PATH               Metrics endpoint path (default: "/metrics")
  METRICS_PORT               Metrics server port (default: "9090")

  REDIS_ADDR                 Redis address for the preview cache (optional)
  REDIS_PASSWORD             Redis password (optional)
  CACHE_TTL                  Cached preview lifetime (default: "1m")
  CIRCUIT_BREAKER_THRESHOLD  Consecutive Redis failures before bypassing the cache (default: "5")
  CIRCUIT_BREAKER_COOLDOWN   Time before Redis is retried (default: "30s")

  SEARCH_HORIZON_YEARS       Years searched for a matching instant, 1-50 (default: "8")`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newPreviewCmd(),
		newNextCmd(),
		newDescribeCmd(),
		newFormatCmd(),
		newValidateCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

func newConfigCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print effective configuration as JSON (secrets masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd.OutOrStdout(), check)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Validate the configuration instead of printing it")
	return cmd
}

func runConfig(w io.Writer, check bool) error {
	cfg := config.Load()

	if check {
		if err := config.Validate(cfg); err != nil {
			return withExitCode(exitInvalidConfig, err)
		}
		fmt.Fprintln(w, "configuration valid")
		return nil
	}

	data, err := cfg.MaskedJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	fmt.Fprintln(w, string(data))
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cronpreview version %s (commit: %s)\n", version, commit)
		},
	}
}
