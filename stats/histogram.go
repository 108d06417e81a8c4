package stats

import "github.com/pkg/errors"

// MaxHistogramBins bounds the bin count a histogram may carry.
const MaxHistogramBins = 256

// ErrBadHistogram is returned for an invalid bin count or range.
var ErrBadHistogram = errors.New("stats: invalid histogram configuration")

// Bin is one half-open histogram bucket [MinNs, MaxNs).
type Bin struct {
	MinNs uint64 `json:"min_ns"`
	MaxNs uint64 `json:"max_ns"`
	Count uint32 `json:"count"`
}

// Histogram is a fixed-width latency histogram over caller-owned bins.
// Samples below the range increment UnderflowCount, samples at or above it
// increment OverflowCount, so the bin counts plus both sentinels always sum
// to the sample count.
type Histogram struct {
	RangeMinNs     uint64 `json:"range_min_ns"`
	RangeMaxNs     uint64 `json:"range_max_ns"`
	BinWidthNs     uint64 `json:"bin_width_ns"`
	UnderflowCount uint32 `json:"underflow_count"`
	OverflowCount  uint32 `json:"overflow_count"`
	Bins           []Bin  `json:"bins"`
}

// Init lays out the histogram over the caller-provided bin slice. The bin
// width is fixed at (max−min)/len(bins), floored to a minimum of 1 ns; the
// last bin is stretched to end exactly at max.
func (h *Histogram) Init(bins []Bin, minNs, maxNs uint64) error {
	if len(bins) == 0 || len(bins) > MaxHistogramBins || minNs >= maxNs {
		return ErrBadHistogram
	}

	width := (maxNs - minNs) / uint64(len(bins))
	if width == 0 {
		width = 1
	}

	h.RangeMinNs = minNs
	h.RangeMaxNs = maxNs
	h.BinWidthNs = width
	h.UnderflowCount = 0
	h.OverflowCount = 0
	h.Bins = bins

	cur := minNs
	for i := range bins {
		bins[i] = Bin{MinNs: cur, MaxNs: cur + width}
		cur += width
	}
	bins[len(bins)-1].MaxNs = maxNs

	return nil
}

// Build bins every sample into the initialised histogram. It does not
// allocate; counts are reset first so Build may be called repeatedly.
func (h *Histogram) Build(samples []uint64) error {
	if h.Bins == nil {
		return ErrBadHistogram
	}

	h.UnderflowCount = 0
	h.OverflowCount = 0
	for i := range h.Bins {
		h.Bins[i].Count = 0
	}

	for _, s := range samples {
		switch {
		case s < h.RangeMinNs:
			h.UnderflowCount++
		case s >= h.RangeMaxNs:
			h.OverflowCount++
		default:
			idx := (s - h.RangeMinNs) / h.BinWidthNs
			if idx >= uint64(len(h.Bins)) {
				idx = uint64(len(h.Bins)) - 1
			}
			h.Bins[idx].Count++
		}
	}

	return nil
}
