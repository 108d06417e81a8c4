package compare

import (
	"testing"

	"github.com/certifiable-ai/go-bench/bench"
	"github.com/certifiable-ai/go-bench/digest"
	"github.com/stretchr/testify/assert"
)

func resultWith(platform string, outputs string, p99, throughput, wcet uint64) *bench.Result {
	r := &bench.Result{Platform: platform}
	r.OutputHash = digest.Sum([]byte(outputs))
	r.Latency.P99Ns = p99
	r.Latency.WcetBoundNs = wcet
	r.Throughput.InferencesPerSec = throughput
	return r
}

func TestRatioLiteralVector(t *testing.T) {
	// A.p99 = 1ms, B.p99 = 2ms, identical outputs → ratio 2.0 in Q16.16.
	a := resultWith("x86_64", "same", 1_000_000, 1000, 1_500_000)
	b := resultWith("aarch64", "same", 2_000_000, 500, 3_000_000)

	cmp := Compare(a, b)

	assert.True(t, cmp.OutputsIdentical)
	assert.True(t, cmp.Comparable)
	assert.Equal(t, int64(1_000_000), cmp.LatencyDiffNs)
	assert.Equal(t, uint32(131_072), cmp.LatencyRatioQ16)
	assert.Equal(t, int64(-500), cmp.ThroughputDiff)
	assert.Equal(t, uint32(Q16One/2), cmp.ThroughputRatioQ16)
	assert.Equal(t, int64(1_500_000), cmp.WcetDiffNs)
	assert.Equal(t, uint32(2*Q16One), cmp.WcetRatioQ16)
	assert.Equal(t, "x86_64", cmp.PlatformA)
	assert.Equal(t, "aarch64", cmp.PlatformB)
}

func TestGateZeroesEverything(t *testing.T) {
	a := resultWith("x86_64", "outputs-a", 1_000_000, 1000, 1_500_000)
	b := resultWith("x86_64", "outputs-b", 2_000_000, 500, 3_000_000)

	cmp := Compare(a, b)

	assert.False(t, cmp.OutputsIdentical)
	assert.False(t, cmp.Comparable)
	assert.Zero(t, cmp.LatencyDiffNs)
	assert.Zero(t, cmp.LatencyRatioQ16)
	assert.Zero(t, cmp.ThroughputDiff)
	assert.Zero(t, cmp.ThroughputRatioQ16)
	assert.Zero(t, cmp.WcetDiffNs)
	assert.Zero(t, cmp.WcetRatioQ16)
}

func TestZeroDenominatorCollapsesRatio(t *testing.T) {
	a := resultWith("x86_64", "same", 0, 0, 0)
	b := resultWith("x86_64", "same", 2_000_000, 500, 3_000_000)

	cmp := Compare(a, b)

	assert.True(t, cmp.Comparable)
	assert.Zero(t, cmp.LatencyRatioQ16)
	assert.Zero(t, cmp.ThroughputRatioQ16)
	assert.Zero(t, cmp.WcetRatioQ16)
	// Signed deltas are still computed.
	assert.Equal(t, int64(2_000_000), cmp.LatencyDiffNs)
}

func TestEqualResultsCompareAsUnity(t *testing.T) {
	a := resultWith("x86_64", "same", 750, 4000, 900)
	b := resultWith("x86_64", "same", 750, 4000, 900)

	cmp := Compare(a, b)

	assert.True(t, cmp.Comparable)
	assert.Zero(t, cmp.LatencyDiffNs)
	assert.Equal(t, uint32(Q16One), cmp.LatencyRatioQ16)
	assert.Equal(t, uint32(Q16One), cmp.ThroughputRatioQ16)
	assert.Equal(t, uint32(Q16One), cmp.WcetRatioQ16)
}
