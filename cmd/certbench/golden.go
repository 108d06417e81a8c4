package main

import (
	"fmt"
	"log/slog"

	"github.com/certifiable-ai/go-bench/digest"
	"github.com/certifiable-ai/go-bench/report"
	"github.com/certifiable-ai/go-bench/verify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newGoldenCmd(logger *slog.Logger) *cobra.Command {
	golden := &cobra.Command{
		Use:   "golden",
		Short: "Manage golden references",
	}

	var outputSize uint32
	write := &cobra.Command{
		Use:   "write <result.json> <golden.json>",
		Short: "Record a result's output digest as a golden reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := report.LoadJSON(args[0])
			if err != nil {
				return err
			}
			if !res.IsValid() {
				return errors.New("refusing to write a golden reference from an invalid result")
			}

			ref := &verify.GoldenRef{
				OutputHash:  res.OutputHash,
				SampleCount: res.Latency.SampleCount,
				OutputSize:  outputSize,
				Platform:    res.Platform,
			}
			if err := verify.Save(args[1], ref); err != nil {
				return err
			}
			logger.Info("wrote golden reference",
				"path", args[1], "hash", digest.ToHex(ref.OutputHash))
			return nil
		},
	}
	write.Flags().Uint32Var(&outputSize, "output-size", 0, "per-inference output size in bytes")

	check := &cobra.Command{
		Use:   "check <result.json> <golden.json>",
		Short: "Check a result's output digest against a golden reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := report.LoadJSON(args[0])
			if err != nil {
				return err
			}
			ref, err := verify.Load(args[1])
			if err != nil {
				return err
			}

			if !ref.Matches(res.OutputHash) {
				return fmt.Errorf("output digest mismatch: result %s, golden %s",
					digest.ToHex(res.OutputHash), digest.ToHex(ref.OutputHash))
			}
			fmt.Println("output digest matches golden reference")
			return nil
		},
	}

	golden.AddCommand(write, check)
	return golden
}
