package stats

import (
	"math"
	"testing"

	"github.com/certifiable-ai/go-bench/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsqrtRequiredVectors(t *testing.T) {
	vectors := map[uint64]uint64{
		0:              0,
		1:              1,
		4:              2,
		5:              2,
		100:            10,
		101:            10,
		math.MaxUint64: 0xFFFF_FFFF,
	}
	for n, want := range vectors {
		assert.Equal(t, want, Isqrt(n), "isqrt(%d)", n)
	}

	for k := uint64(0); k <= 1000; k++ {
		assert.Equal(t, k, Isqrt(k*k), "isqrt(%d²)", k)
	}
}

func TestIsqrtFloorInvariant(t *testing.T) {
	// isqrt(n)² ≤ n < (isqrt(n)+1)².
	cases := []uint64{2, 3, 7, 15, 24, 99, 1 << 20, 1<<40 + 17, math.MaxUint64}
	for _, n := range cases {
		r := Isqrt(n)
		assert.LessOrEqual(t, r*r, n)
		if r < 0xFFFF_FFFF {
			assert.Greater(t, (r+1)*(r+1), n)
		}
	}
}

func TestSortU64BothRegimes(t *testing.T) {
	// Insertion-sort regime.
	small := []uint64{5, 3, 9, 1, 1, 7}
	SortU64(small)
	assert.Equal(t, []uint64{1, 1, 3, 5, 7, 9}, small)

	// Heapsort regime: descending input of 200 elements.
	large := make([]uint64, 200)
	for i := range large {
		large[i] = uint64(len(large) - i)
	}
	SortU64(large)
	for i := 1; i < len(large); i++ {
		assert.LessOrEqual(t, large[i-1], large[i])
	}
}

func TestPercentileLiteralVectors(t *testing.T) {
	samples := []uint64{100, 200, 300, 400, 500}

	assert.Equal(t, uint64(100), Percentile(samples, 0))
	assert.Equal(t, uint64(200), Percentile(samples, 25))
	assert.Equal(t, uint64(300), Percentile(samples, 50))
	assert.Equal(t, uint64(400), Percentile(samples, 75))
	assert.Equal(t, uint64(500), Percentile(samples, 100))
}

func TestPercentileEdges(t *testing.T) {
	assert.Equal(t, uint64(0), Percentile(nil, 50))
	assert.Equal(t, uint64(42), Percentile([]uint64{42}, 99))

	// p > 100 clamps.
	assert.Equal(t, uint64(9), Percentile([]uint64{1, 9}, 200))

	// Interpolation: p90 of [10, 20] = 10 + (10·90)/100 = 19.
	assert.Equal(t, uint64(19), Percentile([]uint64{10, 20}, 90))
}

func TestComputeOrderingInvariants(t *testing.T) {
	samples := []uint64{420, 100, 380, 90, 2000, 150, 310, 305, 300, 299}
	var st LatencyStats
	var f fault.Flags

	require.NoError(t, Compute(samples, &st, &f))

	assert.LessOrEqual(t, st.MinNs, st.MedianNs)
	assert.LessOrEqual(t, st.MedianNs, st.MaxNs)
	assert.LessOrEqual(t, st.MinNs, st.MeanNs)
	assert.LessOrEqual(t, st.MeanNs, st.MaxNs)
	assert.LessOrEqual(t, st.MedianNs, st.P95Ns)
	assert.LessOrEqual(t, st.P95Ns, st.P99Ns)
	assert.LessOrEqual(t, st.P99Ns, st.MaxNs)
	assert.Equal(t, st.MaxNs, st.WcetObservedNs)
	assert.GreaterOrEqual(t, st.WcetBoundNs, st.WcetObservedNs)
	assert.Equal(t, uint32(len(samples)), st.SampleCount)
	assert.False(t, f.HasHardFault())
}

func TestComputeZeroSamples(t *testing.T) {
	var st LatencyStats
	var f fault.Flags

	err := Compute(nil, &st, &f)
	assert.ErrorIs(t, err, ErrNoSamples)
	assert.True(t, f.DivZero)
	assert.Equal(t, LatencyStats{}, st)
}

func TestComputeSingleSample(t *testing.T) {
	var st LatencyStats
	var f fault.Flags

	require.NoError(t, Compute([]uint64{777}, &st, &f))
	assert.Equal(t, uint64(777), st.MinNs)
	assert.Equal(t, uint64(777), st.MaxNs)
	assert.Equal(t, uint64(777), st.MeanNs)
	assert.Equal(t, uint64(777), st.MedianNs)
	assert.Equal(t, uint64(0), st.VarianceNs2)
	assert.Equal(t, uint64(0), st.StddevNs)
	assert.Equal(t, uint64(777), st.WcetBoundNs)
}

func TestComputeIdenticalSamples(t *testing.T) {
	samples := make([]uint64, 100)
	for i := range samples {
		samples[i] = 5000
	}

	var st LatencyStats
	var f fault.Flags
	require.NoError(t, Compute(samples, &st, &f))

	assert.Equal(t, uint64(5000), st.MeanNs)
	assert.Equal(t, uint64(0), st.StddevNs)
	assert.Equal(t, uint64(5000), st.WcetBoundNs)
	assert.Equal(t, uint32(0), st.OutlierCount)
}

func TestComputeSumOverflowFallsBackToWelford(t *testing.T) {
	// Three samples of 2^63; adding the second already overflows the
	// accumulator.
	samples := []uint64{1 << 63, 1 << 63, 1 << 63}

	var st LatencyStats
	var f fault.Flags
	err := Compute(samples, &st, &f)

	assert.ErrorIs(t, err, ErrOverflow)
	assert.True(t, f.Overflow)
	// Stats are still populated via Welford's mean.
	assert.Equal(t, uint64(1<<63), st.MinNs)
	assert.Equal(t, uint64(1<<63), st.MaxNs)
	assert.NotZero(t, st.SampleCount)
}

func TestComputeWcetBound(t *testing.T) {
	// stddev of [100·8, 300·2] spread; verify bound = max + 6·stddev.
	samples := []uint64{100, 100, 100, 100, 100, 100, 100, 100, 300, 300}
	var st LatencyStats
	var f fault.Flags
	require.NoError(t, Compute(samples, &st, &f))

	assert.Equal(t, st.MaxNs+6*st.StddevNs, st.WcetBoundNs)
}

func TestComputeWcetOverflowSaturates(t *testing.T) {
	// A near-max sample with nonzero spread overflows max + 6·stddev.
	samples := []uint64{math.MaxUint64 - 10, math.MaxUint64 - 10, 10}
	var st LatencyStats
	var f fault.Flags
	_ = Compute(samples, &st, &f)

	assert.True(t, f.Overflow)
	assert.Equal(t, st.MaxNs, st.WcetBoundNs)
}

func TestHistogramConservation(t *testing.T) {
	bins := make([]Bin, 10)
	var h Histogram
	require.NoError(t, h.Init(bins, 100, 1100))

	samples := []uint64{50, 100, 150, 550, 1099, 1100, 2000, 99, 800, 100}
	require.NoError(t, h.Build(samples))

	var total uint32
	for _, b := range h.Bins {
		total += b.Count
	}
	total += h.UnderflowCount + h.OverflowCount
	assert.Equal(t, uint32(len(samples)), total)

	// 50 and 99 underflow; 1100 and 2000 overflow; 1099 lands in-range.
	assert.Equal(t, uint32(2), h.UnderflowCount)
	assert.Equal(t, uint32(2), h.OverflowCount)
}

func TestHistogramInitValidation(t *testing.T) {
	var h Histogram

	assert.ErrorIs(t, h.Init(nil, 0, 100), ErrBadHistogram)
	assert.ErrorIs(t, h.Init(make([]Bin, 4), 100, 100), ErrBadHistogram)
	assert.ErrorIs(t, h.Init(make([]Bin, 4), 200, 100), ErrBadHistogram)
	assert.ErrorIs(t, h.Init(make([]Bin, MaxHistogramBins+1), 0, 100), ErrBadHistogram)
}

func TestHistogramBinEdges(t *testing.T) {
	bins := make([]Bin, 3)
	var h Histogram
	require.NoError(t, h.Init(bins, 0, 10))

	// Width 3; last bin stretched to [6, 10).
	assert.Equal(t, uint64(3), h.BinWidthNs)
	assert.Equal(t, uint64(10), bins[2].MaxNs)

	require.NoError(t, h.Build([]uint64{0, 2, 3, 9}))
	assert.Equal(t, uint32(2), bins[0].Count)
	assert.Equal(t, uint32(1), bins[1].Count)
	assert.Equal(t, uint32(1), bins[2].Count)
}

func TestDetectOutliersLiteralVector(t *testing.T) {
	samples := []uint64{100, 110, 120, 130, 1000}
	flags := make([]bool, len(samples))
	scratch := NewOutlierScratch(len(samples))

	count, err := DetectOutliers(samples, flags, scratch)
	require.NoError(t, err)

	assert.Equal(t, uint32(1), count)
	assert.Equal(t, []bool{false, false, false, false, true}, flags)
}

func TestDetectOutliersAllIdentical(t *testing.T) {
	samples := []uint64{42, 42, 42, 42, 42, 42}
	flags := make([]bool, len(samples))
	scratch := NewOutlierScratch(len(samples))

	count, err := DetectOutliers(samples, flags, scratch)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), count)
	for _, fl := range flags {
		assert.False(t, fl)
	}
}

func TestDetectOutliersScratchValidation(t *testing.T) {
	samples := []uint64{1, 2, 3}

	_, err := DetectOutliers(samples, make([]bool, 2), NewOutlierScratch(3))
	assert.ErrorIs(t, err, ErrScratchTooSmall)

	_, err = DetectOutliers(samples, make([]bool, 3), NewOutlierScratch(2))
	assert.ErrorIs(t, err, ErrScratchTooSmall)

	_, err = DetectOutliers(samples, make([]bool, 3), nil)
	assert.ErrorIs(t, err, ErrScratchTooSmall)

	count, err := DetectOutliers(nil, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}
