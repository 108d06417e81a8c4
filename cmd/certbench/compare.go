package main

import (
	"log/slog"
	"os"

	"github.com/certifiable-ai/go-bench/compare"
	"github.com/certifiable-ai/go-bench/report"
	"github.com/spf13/cobra"
)

func newCompareCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <a.json> <b.json>",
		Short: "Compare two benchmark results across the bit-identity gate",
		Long: `Load two result documents and compare them. Performance deltas and
ratios are reported only when the bound output digests are equal; otherwise
the results are not comparable and nothing is reported.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := report.LoadJSON(args[0])
			if err != nil {
				return err
			}
			b, err := report.LoadJSON(args[1])
			if err != nil {
				return err
			}

			if !a.IsValid() {
				logger.Warn("result A is invalid", "path", args[0])
			}
			if !b.IsValid() {
				logger.Warn("result B is invalid", "path", args[1])
			}

			cmp := compare.Compare(a, b)
			report.PrintComparison(os.Stdout, cmp)
			return nil
		},
	}
}
