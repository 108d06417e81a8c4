// Package bench is the benchmark measurement core: configuration, the
// critical-loop runner, and the result record that binds performance numbers
// to the byte-exact outputs the inference routine produced.
//
// A run is single-threaded by contract. The runner borrows the caller's
// sample buffer, spawns nothing, holds no lock, and allocates nothing
// between initialisation and result assembly. Throughput is derived from the
// sum of measured per-iteration latencies, so inter-call gaps outside the
// critical loop are excluded; on the serial contract this coincides with the
// wall-clock definition.
package bench

import (
	"encoding/binary"

	"github.com/certifiable-ai/go-bench/digest"
	"github.com/certifiable-ai/go-bench/stats"
	"github.com/certifiable-ai/go-bench/timer"
	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned for configurations that fail validation and
// for operations invoked in the wrong runner state.
var ErrInvalidConfig = errors.New("bench: invalid configuration")

// ErrTimerInit is returned when the timer subsystem cannot be initialised.
var ErrTimerInit = errors.New("bench: timer initialisation failed")

// Config controls a benchmark run.
type Config struct {
	WarmupIterations  uint32       `json:"warmup_iterations" toml:"warmup_iterations"`
	MeasureIterations uint32       `json:"measure_iterations" toml:"measure_iterations"`
	BatchSize         uint32       `json:"batch_size" toml:"batch_size"`
	TimerSource       timer.Source `json:"timer_source" toml:"timer_source"`
	VerifyOutputs     bool         `json:"verify_outputs" toml:"verify_outputs"`

	CollectHistogram bool   `json:"collect_histogram" toml:"collect_histogram"`
	HistogramBins    uint32 `json:"histogram_bins" toml:"histogram_bins"`
	HistogramMinNs   uint64 `json:"histogram_min_ns" toml:"histogram_min_ns"`
	HistogramMaxNs   uint64 `json:"histogram_max_ns" toml:"histogram_max_ns"`

	MonitorEnvironment bool `json:"monitor_environment" toml:"monitor_environment"`

	ModelPath  string `json:"model_path,omitempty" toml:"model_path"`
	DataPath   string `json:"data_path,omitempty" toml:"data_path"`
	GoldenPath string `json:"golden_path,omitempty" toml:"golden_path"`
	OutputPath string `json:"output_path,omitempty" toml:"output_path"`
}

// DefaultConfig returns the recognised option set with its defaults.
func DefaultConfig() Config {
	return Config{
		WarmupIterations:   100,
		MeasureIterations:  1000,
		BatchSize:          1,
		TimerSource:        timer.Auto,
		VerifyOutputs:      true,
		CollectHistogram:   false,
		HistogramBins:      100,
		HistogramMinNs:     0,
		HistogramMaxNs:     10_000_000,
		MonitorEnvironment: true,
	}
}

// Validate rejects configurations the runner cannot execute: zero
// measurement iterations or batch size, an iteration count beyond the
// sample limit, or a degenerate histogram range.
func (c Config) Validate() error {
	if c.MeasureIterations == 0 {
		return errors.Wrap(ErrInvalidConfig, "measure_iterations must be > 0")
	}
	if c.MeasureIterations > stats.MaxSamples {
		return errors.Wrapf(ErrInvalidConfig, "measure_iterations exceeds %d", stats.MaxSamples)
	}
	if c.BatchSize == 0 {
		return errors.Wrap(ErrInvalidConfig, "batch_size must be > 0")
	}
	if c.CollectHistogram {
		if c.HistogramBins == 0 || c.HistogramBins > stats.MaxHistogramBins {
			return errors.Wrapf(ErrInvalidConfig, "histogram_bins must be in 1..%d", stats.MaxHistogramBins)
		}
		if c.HistogramMaxNs <= c.HistogramMinNs {
			return errors.Wrap(ErrInvalidConfig, "histogram range is empty")
		}
	}
	return nil
}

// Hash commits the measurement-relevant configuration fields to a 64-bit
// value for the result binding: the fields are framed as little-endian
// 64-bit words through SHA-256 and the first eight digest bytes are taken.
// Path fields are excluded; they do not affect what was measured.
func (c Config) Hash() uint64 {
	var ctx digest.Context
	ctx.Init()

	var le [8]byte
	words := []uint64{
		uint64(c.WarmupIterations),
		uint64(c.MeasureIterations),
		uint64(c.BatchSize),
		uint64(c.TimerSource),
		boolWord(c.VerifyOutputs),
		boolWord(c.CollectHistogram),
		uint64(c.HistogramBins),
		c.HistogramMinNs,
		c.HistogramMaxNs,
		boolWord(c.MonitorEnvironment),
	}
	for _, w := range words {
		binary.LittleEndian.PutUint64(le[:], w)
		ctx.Update(le[:])
	}

	d := ctx.Final()
	return binary.LittleEndian.Uint64(d[:8])
}

func boolWord(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
