package report

import (
	"fmt"
	"io"

	"github.com/certifiable-ai/go-bench/bench"
	"github.com/certifiable-ai/go-bench/compare"
	"github.com/certifiable-ai/go-bench/digest"
	"github.com/fatih/color"
)

var (
	headerStyle = color.New(color.Bold)
	okStyle     = color.New(color.FgGreen)
	failStyle   = color.New(color.FgRed, color.Bold)
	warnStyle   = color.New(color.FgYellow)
)

// PrintSummary writes a human-readable summary of one result.
//
// Ratio and rate values are converted to floating point here and only here:
// this is the presentation boundary, nothing downstream consumes the
// formatted numbers.
func PrintSummary(w io.Writer, res *bench.Result) {
	headerStyle.Fprintln(w, "Benchmark Result")
	fmt.Fprintf(w, "  Platform:    %s", res.Platform)
	if res.CPUModel != "" {
		fmt.Fprintf(w, " (%s)", res.CPUModel)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Iterations:  %d (warmup %d, batch %d)\n",
		res.MeasureIterations, res.WarmupIterations, res.BatchSize)

	fmt.Fprintln(w)
	headerStyle.Fprintln(w, "Latency (ns)")
	fmt.Fprintf(w, "  min/median/mean:  %d / %d / %d\n",
		res.Latency.MinNs, res.Latency.MedianNs, res.Latency.MeanNs)
	fmt.Fprintf(w, "  p95/p99/max:      %d / %d / %d\n",
		res.Latency.P95Ns, res.Latency.P99Ns, res.Latency.MaxNs)
	fmt.Fprintf(w, "  stddev:           %d\n", res.Latency.StddevNs)
	fmt.Fprintf(w, "  wcet observed:    %d\n", res.Latency.WcetObservedNs)
	fmt.Fprintf(w, "  wcet bound:       %d (max + 6σ)\n", res.Latency.WcetBoundNs)
	fmt.Fprintf(w, "  outliers:         %d of %d (mean+3σ), %d (MAD)\n",
		res.Latency.OutlierCount, res.Latency.SampleCount, res.MadOutlierCount)

	fmt.Fprintln(w)
	headerStyle.Fprintln(w, "Throughput")
	fmt.Fprintf(w, "  inferences/sec:   %d\n", res.Throughput.InferencesPerSec)
	fmt.Fprintf(w, "  samples/sec:      %d\n", res.Throughput.SamplesPerSec)

	if res.HWCounters.Available {
		fmt.Fprintln(w)
		headerStyle.Fprintln(w, "Hardware Counters")
		fmt.Fprintf(w, "  cycles:           %d\n", res.HWCounters.Cycles)
		fmt.Fprintf(w, "  instructions:     %d\n", res.HWCounters.Instructions)
		fmt.Fprintf(w, "  IPC:              %.2f\n", q16ToFloat(res.HWCounters.IPCQ16))
		fmt.Fprintf(w, "  cache miss rate:  %.1f%%\n", q16ToFloat(res.HWCounters.CacheMissRateQ16)*100)
	}

	fmt.Fprintln(w)
	headerStyle.Fprintln(w, "Verification")
	fmt.Fprintf(w, "  output hash:      %s\n", digest.ToHex(res.OutputHash))
	fmt.Fprintf(w, "  result hash:      %s\n", digest.ToHex(res.ResultHash))
	if res.DeterminismVerified {
		okStyle.Fprintln(w, "  determinism:      verified")
	} else {
		failStyle.Fprintf(w, "  determinism:      NOT verified (%d failures)\n",
			res.VerificationFailures)
	}

	if !res.EnvStable {
		warnStyle.Fprintln(w, "  environment:      thermal drift detected")
	}

	if res.IsValid() {
		okStyle.Fprintln(w, "  status:           VALID")
	} else {
		failStyle.Fprintln(w, "  status:           INVALID (hard fault or verification failure)")
	}
}

// PrintComparison writes a human-readable comparison of two results.
func PrintComparison(w io.Writer, cmp compare.Comparison) {
	headerStyle.Fprintf(w, "Comparison: %s vs %s\n", cmp.PlatformA, cmp.PlatformB)

	if !cmp.Comparable {
		failStyle.Fprintln(w, "  NOT COMPARABLE: output digests differ")
		fmt.Fprintln(w, "  Performance deltas are meaningless across divergent outputs;")
		fmt.Fprintln(w, "  nothing is reported.")
		return
	}

	okStyle.Fprintln(w, "  outputs: bit-identical")
	fmt.Fprintf(w, "  p99 latency:  %+d ns (ratio %.4fx)\n",
		cmp.LatencyDiffNs, q16ToFloat(cmp.LatencyRatioQ16))
	fmt.Fprintf(w, "  throughput:   %+d inf/s (ratio %.4fx)\n",
		cmp.ThroughputDiff, q16ToFloat(cmp.ThroughputRatioQ16))
	fmt.Fprintf(w, "  wcet bound:   %+d ns (ratio %.4fx)\n",
		cmp.WcetDiffNs, q16ToFloat(cmp.WcetRatioQ16))
}

// q16ToFloat converts a Q16.16 value for display. Presentation only; no
// decision is made on the converted value.
func q16ToFloat(q uint32) float64 {
	return float64(q) / float64(compare.Q16One)
}
