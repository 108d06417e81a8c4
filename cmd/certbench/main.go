// Package main provides the CLI entry point for certbench, a benchmark
// harness that binds latency, throughput and WCET measurements of a
// deterministic inference routine to the byte-exact outputs it produced.
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

func main() {
	// A .env in the working directory may set CERTBENCH_DEBUG; absence
	// is not an error.
	_ = godotenv.Load()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel(),
		TimeFormat: time.TimeOnly,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	if os.Getenv("CERTBENCH_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "certbench",
		Short: "Certifiable inference benchmark harness",
		Long: `Certbench measures latency, throughput and an empirical worst-case
execution time envelope for a deterministic inference routine, and
cryptographically binds those numbers to the byte-exact outputs the routine
produced during measurement. Results from different hardware may only be
compared for performance when the bound output digests are equal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newCompareCmd(logger))
	root.AddCommand(newGoldenCmd(logger))
	root.AddCommand(newInfoCmd())

	return root
}
