package bench

import (
	"github.com/certifiable-ai/go-bench/digest"
	"github.com/certifiable-ai/go-bench/fault"
	"github.com/certifiable-ai/go-bench/platform"
	"github.com/certifiable-ai/go-bench/stats"
)

// Throughput holds the integer throughput metrics for one run.
type Throughput struct {
	InferencesPerSec uint64 `json:"inferences_per_sec"`
	SamplesPerSec    uint64 `json:"samples_per_sec"`
	BytesPerSec      uint64 `json:"bytes_per_sec"`
	BatchSize        uint32 `json:"batch_size"`
}

// Result is the complete record of one benchmark run. It binds the
// performance metrics to the output digest: two results may only be compared
// for performance when their output hashes are equal.
type Result struct {
	// Platform identification.
	Platform   string `json:"platform"`
	CPUModel   string `json:"cpu_model"`
	CPUFreqMHz uint32 `json:"cpu_freq_mhz"`

	// Configuration echo.
	WarmupIterations  uint32 `json:"warmup_iterations"`
	MeasureIterations uint32 `json:"measure_iterations"`
	BatchSize         uint32 `json:"batch_size"`

	Latency    stats.LatencyStats `json:"latency"`
	Throughput Throughput         `json:"throughput"`

	// MadOutlierCount is the MAD-based modified-Z criterion's count;
	// Latency.OutlierCount carries the inline mean+3σ count. The two
	// criteria differ and both are reported.
	MadOutlierCount uint32 `json:"mad_outlier_count"`

	// Hardware counters are optional; Available=false is not a fault.
	HWCounters platform.HWCounters `json:"hwcounters"`

	Environment platform.EnvStats `json:"environment"`
	EnvStable   bool              `json:"env_stable"`

	Histogram      *stats.Histogram `json:"histogram,omitempty"`
	HistogramValid bool             `json:"histogram_valid"`

	// Verification.
	DeterminismVerified  bool          `json:"determinism_verified"`
	VerificationFailures uint32        `json:"verification_failures"`
	OutputHash           digest.Digest `json:"-"`
	ResultHash           digest.Digest `json:"-"`

	// Metadata.
	BenchmarkStartNs    uint64 `json:"benchmark_start_ns"`
	BenchmarkEndNs      uint64 `json:"benchmark_end_ns"`
	BenchmarkDurationNs uint64 `json:"benchmark_duration_ns"`
	TimestampUnix       uint64 `json:"timestamp_unix"`

	Faults fault.Flags `json:"faults"`
}

// IsValid reports whether the result can be used as certification evidence:
// no hard fault and no verification failures. Warnings (thermal drift) do
// not invalidate a result.
func (r *Result) IsValid() bool {
	if r.Faults.HasHardFault() {
		return false
	}
	return r.VerificationFailures == 0
}
