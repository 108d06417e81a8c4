// Package compare implements the cross-platform comparison gate.
//
// Two results may only be compared for performance when their output digests
// are equal: the bit-identity gate. When the gate fails, every delta and
// ratio is zero: not computed, not displayed. Ratios are Q16.16 fixed-point
// integers; converting them to floating point is reserved for the final
// presentation boundary.
package compare

import (
	"github.com/certifiable-ai/go-bench/bench"
	"github.com/certifiable-ai/go-bench/digest"
	"github.com/certifiable-ai/go-bench/verify"
)

// Q16Shift is the fractional bit count of the Q16.16 fixed-point format.
const Q16Shift = 16

// Q16One is 1.0 in Q16.16.
const Q16One = 1 << Q16Shift

// Comparison is the outcome of comparing two results A and B. Positive
// deltas mean B is larger (slower for latency/WCET, faster for throughput).
type Comparison struct {
	PlatformA string `json:"platform_a"`
	PlatformB string `json:"platform_b"`

	OutputsIdentical bool `json:"outputs_identical"`
	Comparable       bool `json:"comparable"`

	LatencyDiffNs   int64  `json:"latency_diff_ns"`
	LatencyRatioQ16 uint32 `json:"latency_ratio_q16"`

	ThroughputDiff     int64  `json:"throughput_diff"`
	ThroughputRatioQ16 uint32 `json:"throughput_ratio_q16"`

	WcetDiffNs   int64  `json:"wcet_diff_ns"`
	WcetRatioQ16 uint32 `json:"wcet_ratio_q16"`
}

// Compare gates and compares two benchmark results.
//
// Comparison still works on invalid results; the gate only cares whether the
// output digests match, so a pair of invalid-but-bit-identical runs yields
// performance numbers (the caller decides what to do with them).
func Compare(a, b *bench.Result) Comparison {
	cmp := Comparison{
		PlatformA: a.Platform,
		PlatformB: b.Platform,
	}

	cmp.OutputsIdentical = digest.Equal(&a.OutputHash, &b.OutputHash)
	cmp.Comparable = cmp.OutputsIdentical
	if !cmp.Comparable {
		return cmp
	}

	cmp.LatencyDiffNs = int64(b.Latency.P99Ns) - int64(a.Latency.P99Ns)
	cmp.LatencyRatioQ16 = ratioQ16(b.Latency.P99Ns, a.Latency.P99Ns)

	cmp.ThroughputDiff = int64(b.Throughput.InferencesPerSec) - int64(a.Throughput.InferencesPerSec)
	cmp.ThroughputRatioQ16 = ratioQ16(b.Throughput.InferencesPerSec, a.Throughput.InferencesPerSec)

	cmp.WcetDiffNs = int64(b.Latency.WcetBoundNs) - int64(a.Latency.WcetBoundNs)
	cmp.WcetRatioQ16 = ratioQ16(b.Latency.WcetBoundNs, a.Latency.WcetBoundNs)

	return cmp
}

// ratioQ16 computes (num << 16) / den, collapsing a zero denominator to 0
// rather than trapping.
func ratioQ16(num, den uint64) uint32 {
	if den == 0 {
		return 0
	}
	return uint32((num << Q16Shift) / den)
}

// ResultBinding re-exports the result-binding digest primitive so the
// comparator's surface covers everything result certification needs.
func ResultBinding(outputHash digest.Digest, platform string, configHash uint64,
	st verify.BindingStats, timestampUnix uint64) digest.Digest {
	return verify.ResultBinding(outputHash, platform, configHash, st, timestampUnix)
}
