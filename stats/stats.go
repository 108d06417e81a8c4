// Package stats is the integer statistics kernel for latency samples.
//
// Every operation is integer-only and deterministic across platforms: no
// floating point, no library sqrt, and no sort whose comparison schedule
// depends on pivot selection. Identical sample buffers therefore produce
// bit-identical statistics on every architecture.
package stats

import (
	"math"

	"github.com/certifiable-ai/go-bench/fault"
	"github.com/pkg/errors"
)

const (
	// sortThreshold is the sample count at which sorting switches from
	// insertion sort to heapsort.
	sortThreshold = 64

	// wcetSigma is the stddev multiplier for the empirical WCET bound.
	wcetSigma = 6

	// MaxSamples bounds a single benchmark run.
	MaxSamples = 1_000_000
)

// ErrNoSamples is returned when statistics are requested over an empty
// buffer; the caller's fault set gets DivZero.
var ErrNoSamples = errors.New("stats: no samples")

// ErrOverflow indicates the sum accumulator saturated; statistics are still
// populated using Welford's running mean.
var ErrOverflow = errors.New("stats: accumulator overflow")

// LatencyStats holds the integer latency statistics for one run. All
// durations are nanoseconds; VarianceNs2 is in ns².
type LatencyStats struct {
	MinNs          uint64 `json:"min_ns"`
	MaxNs          uint64 `json:"max_ns"`
	MeanNs         uint64 `json:"mean_ns"`
	MedianNs       uint64 `json:"median_ns"`
	P95Ns          uint64 `json:"p95_ns"`
	P99Ns          uint64 `json:"p99_ns"`
	StddevNs       uint64 `json:"stddev_ns"`
	VarianceNs2    uint64 `json:"variance_ns2"`
	SampleCount    uint32 `json:"sample_count"`
	OutlierCount   uint32 `json:"outlier_count"`
	WcetObservedNs uint64 `json:"wcet_observed_ns"`
	WcetBoundNs    uint64 `json:"wcet_bound_ns"`
}

// Isqrt returns ⌊√n⌋ by binary search in O(log n).
//
// The inner test uses mid <= n/mid rather than mid*mid so no intermediate
// value can overflow.
func Isqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}

	lo, hi := uint64(1), n
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if mid <= n/mid {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// SortU64 sorts samples ascending with a fixed, platform-invariant
// comparison schedule: insertion sort up to sortThreshold elements,
// heapsort above. Quicksort-family algorithms are excluded because pivot
// choice is not fixed by the interface.
func SortU64(arr []uint64) {
	if len(arr) <= 1 {
		return
	}
	if len(arr) <= sortThreshold {
		insertionSort(arr)
		return
	}
	heapSort(arr)
}

func insertionSort(arr []uint64) {
	for i := 1; i < len(arr); i++ {
		key := arr[i]
		j := i
		for j > 0 && arr[j-1] > key {
			arr[j] = arr[j-1]
			j--
		}
		arr[j] = key
	}
}

func heapSort(arr []uint64) {
	n := len(arr)
	for i := n / 2; i > 0; i-- {
		siftDown(arr, n, i-1)
	}
	for i := n - 1; i > 0; i-- {
		arr[0], arr[i] = arr[i], arr[0]
		siftDown(arr, i, 0)
	}
}

func siftDown(arr []uint64, n, i int) {
	for {
		largest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && arr[left] > arr[largest] {
			largest = left
		}
		if right < n && arr[right] > arr[largest] {
			largest = right
		}
		if largest == i {
			return
		}
		arr[i], arr[largest] = arr[largest], arr[i]
		i = largest
	}
}

// Percentile returns the p-th percentile of an ascending-sorted sample
// array using integer linear interpolation:
//
//	rank_scaled = p·(n−1); rank = rank_scaled/100; frac = rank_scaled%100
//	result = s[rank] + (s[rank+1]−s[rank])·frac/100
//
// p is clamped to [0,100]. An empty array yields 0.
func Percentile(sorted []uint64, p uint32) uint64 {
	n := uint64(len(sorted))
	if n == 0 {
		return 0
	}
	if p > 100 {
		p = 100
	}
	if n == 1 {
		return sorted[0]
	}

	rankScaled := uint64(p) * (n - 1)
	rank := rankScaled / 100
	frac := rankScaled % 100

	lower := sorted[rank]
	upper := lower
	if rank+1 < n {
		upper = sorted[rank+1]
	}

	if upper < lower {
		return lower
	}
	return lower + ((upper-lower)*frac)/100
}

// Compute populates st from the sample buffer, sorting it in place.
//
// A zero-length buffer sets DivZero and returns ErrNoSamples with st zeroed.
// If the 64-bit sum accumulator would saturate, Overflow is set, the mean
// falls back to Welford's running mean, and ErrOverflow is returned with
// all statistics still populated.
//
// Arguments:
// - samples: Raw latency samples; sorted ascending on return
// - st: Output statistics, cleared first
// - faults: Fault accumulator for overflow / div-zero conditions
func Compute(samples []uint64, st *LatencyStats, faults *fault.Flags) error {
	*st = LatencyStats{}

	n := uint64(len(samples))
	if n == 0 {
		faults.DivZero = true
		return ErrNoSamples
	}

	var (
		sum      uint64
		overflow bool
		// Welford running state; deltas are signed.
		m int64
		s int64
	)

	minVal, maxVal := samples[0], samples[0]
	for i, x := range samples {
		if sum > math.MaxUint64-x {
			overflow = true
			faults.Overflow = true
		} else {
			sum += x
		}

		if x < minVal {
			minVal = x
		}
		if x > maxVal {
			maxVal = x
		}

		delta := int64(x) - m
		m += delta / int64(i+1)
		delta2 := int64(x) - m
		s += delta * delta2
	}

	mean := uint64(m)
	if !overflow {
		mean = sum / n
	}

	var variance, stddev uint64
	if n > 1 {
		variance = uint64(s / int64(n-1))
		stddev = Isqrt(variance)
	}

	SortU64(samples)

	st.MinNs = minVal
	st.MaxNs = maxVal
	st.MeanNs = mean
	st.VarianceNs2 = variance
	st.StddevNs = stddev
	st.SampleCount = uint32(n)

	st.MedianNs = Percentile(samples, 50)
	st.P95Ns = Percentile(samples, 95)
	st.P99Ns = Percentile(samples, 99)

	st.WcetObservedNs = maxVal
	if stddev <= (math.MaxUint64-maxVal)/wcetSigma {
		st.WcetBoundNs = maxVal + wcetSigma*stddev
	} else {
		st.WcetBoundNs = maxVal
		faults.Overflow = true
	}

	// Inline outlier count uses the mean+3σ threshold; the MAD-based
	// detector in DetectOutliers is the full criterion.
	if stddev > 0 {
		thresh := mean + 3*stddev
		for _, x := range samples {
			if x > thresh {
				st.OutlierCount++
			}
		}
	}

	if overflow {
		return ErrOverflow
	}
	return nil
}
