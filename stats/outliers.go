package stats

import "github.com/pkg/errors"

const (
	// madScaleFactor is 0.6745 scaled by 10000 for the integer modified
	// Z-score.
	madScaleFactor = 6745

	// outlierThreshScaled is 3.5 scaled by 10000: a sample is an outlier
	// iff its scaled modified Z exceeds this.
	outlierThreshScaled = 35_000
)

// ErrScratchTooSmall is returned when the scratch buffers cannot hold the
// sample set.
var ErrScratchTooSmall = errors.New("stats: outlier scratch too small")

// OutlierScratch holds the two working arrays MAD outlier detection needs
// (a sorted copy and the deviations). Reserving it once per runner keeps the
// detection path allocation-free; access is serialised by the single-threaded
// run contract.
type OutlierScratch struct {
	sorted     []uint64
	deviations []uint64
}

// NewOutlierScratch reserves scratch space for up to capacity samples.
func NewOutlierScratch(capacity int) *OutlierScratch {
	if capacity > MaxSamples {
		capacity = MaxSamples
	}
	return &OutlierScratch{
		sorted:     make([]uint64, capacity),
		deviations: make([]uint64, capacity),
	}
}

// DetectOutliers flags samples whose MAD-based modified Z-score exceeds 3.5,
// using scaled integer arithmetic throughout:
//
//	modified_z_scaled = (6745 · |xᵢ − median|) / MAD
//
// If the MAD is zero (all samples identical or nearly so) nothing is
// flagged. flags must be at least as long as samples; the flagged count is
// returned.
func DetectOutliers(samples []uint64, flags []bool, scratch *OutlierScratch) (uint32, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	if len(flags) < len(samples) {
		return 0, ErrScratchTooSmall
	}
	if scratch == nil || len(scratch.sorted) < len(samples) {
		return 0, ErrScratchTooSmall
	}

	n := len(samples)
	sorted := scratch.sorted[:n]
	deviations := scratch.deviations[:n]

	copy(sorted, samples)
	SortU64(sorted)
	median := Percentile(sorted, 50)

	for i, x := range samples {
		deviations[i] = absDiff(x, median)
	}
	SortU64(deviations)
	mad := Percentile(deviations, 50)

	if mad == 0 {
		for i := range samples {
			flags[i] = false
		}
		return 0, nil
	}

	var count uint32
	for i, x := range samples {
		z := (madScaleFactor * absDiff(x, median)) / mad
		if z > outlierThreshScaled {
			flags[i] = true
			count++
		} else {
			flags[i] = false
		}
	}
	return count, nil
}

func absDiff(a, b uint64) uint64 {
	if a >= b {
		return a - b
	}
	return b - a
}
