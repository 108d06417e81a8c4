package bench

import (
	"time"

	"github.com/certifiable-ai/go-bench/digest"
	"github.com/certifiable-ai/go-bench/fault"
	"github.com/certifiable-ai/go-bench/platform"
	"github.com/certifiable-ai/go-bench/stats"
	"github.com/certifiable-ai/go-bench/timer"
	"github.com/certifiable-ai/go-bench/verify"
	"github.com/pkg/errors"
)

const nsPerSec = 1_000_000_000

// InferenceFunc is the routine under measurement. The runner calls it once
// per iteration with the same input and output buffers; it must write
// exactly len(output) bytes to output on every call. A returned error sets
// the VerifyFail fault and the run continues, so latency data is still
// produced.
//
// The routine is treated as opaque and synchronous: if it blocks, all of its
// blocking time is measured as latency. It must be free of side effects that
// would break determinism between iterations.
type InferenceFunc func(userCtx any, input, output []byte) error

// runnerState is the typestate of a Runner. Operations are only valid at
// specific states; boolean flags are not used.
type runnerState uint8

const (
	stateUninit runnerState = iota
	stateInitialised
	stateWarmed
	stateExecuted
	stateReported
)

// Runner choreographs one benchmark run: warmup, the critical measurement
// loop, and result assembly. It borrows the caller's sample buffer for the
// duration of the run and owns no heap storage of its own beyond what
// NewRunner reserves up front.
type Runner struct {
	cfg     Config
	samples []uint64

	hash       digest.Context
	golden     *verify.GoldenRef
	outputSize uint64

	histogram *stats.Histogram

	// MAD outlier detection working storage, reserved at init so the
	// detection pass in GetResult allocates nothing.
	outlierScratch *stats.OutlierScratch
	outlierFlags   []bool

	envStart platform.EnvSnapshot
	startNs  uint64

	verifyFailures uint32
	collected      uint32
	state          runnerState
	faults         fault.Flags
}

// NewRunner validates the configuration, takes ownership of the borrowed
// sample buffer, initialises the timer and the hashing context, and reserves
// everything the run will need; this is the last point at which allocation
// is permitted until GetResult.
//
// Arguments:
// - cfg: Run configuration; must pass Validate
// - sampleBuffer: Caller-owned buffer with capacity ≥ cfg.MeasureIterations
//
// Returns the initialised runner or an error; ErrTimerInit if no timer
// backend could be brought up, verify.ErrGoldenLoad if a configured golden
// reference cannot be read.
func NewRunner(cfg Config, sampleBuffer []uint64) (*Runner, error) {
	if sampleBuffer == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "nil sample buffer")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if uint32(len(sampleBuffer)) < cfg.MeasureIterations {
		return nil, errors.Wrapf(ErrInvalidConfig,
			"sample buffer holds %d, need %d", len(sampleBuffer), cfg.MeasureIterations)
	}

	r := &Runner{cfg: cfg, samples: sampleBuffer}

	selected := timer.Init(cfg.TimerSource)
	if timer.Faults().TimerError || selected == timer.Auto {
		return nil, ErrTimerInit
	}

	if cfg.VerifyOutputs {
		r.hash.Init()
		if cfg.GoldenPath != "" {
			golden, err := verify.Load(cfg.GoldenPath)
			if err != nil {
				return nil, err
			}
			r.golden = golden
		}
	}

	if cfg.CollectHistogram {
		r.histogram = &stats.Histogram{}
		bins := make([]stats.Bin, cfg.HistogramBins)
		if err := r.histogram.Init(bins, cfg.HistogramMinNs, cfg.HistogramMaxNs); err != nil {
			return nil, err
		}
	}

	r.outlierScratch = stats.NewOutlierScratch(int(cfg.MeasureIterations))
	r.outlierFlags = make([]bool, cfg.MeasureIterations)

	r.faults.Clear()
	r.state = stateInitialised
	return r, nil
}

// Warmup executes exactly cfg.WarmupIterations calls of the inference
// function with the same arguments the measurement loop will use. No latency
// is recorded. An inference failure aborts the warmup and is surfaced
// unchanged. On success the environmental start snapshot is taken and the
// benchmark start timestamp recorded.
func (r *Runner) Warmup(fn InferenceFunc, userCtx any, input, output []byte) error {
	if fn == nil {
		return errors.Wrap(ErrInvalidConfig, "nil inference function")
	}
	if r.state != stateInitialised {
		return errors.Wrap(ErrInvalidConfig, "warmup requires an initialised runner")
	}

	for i := uint32(0); i < r.cfg.WarmupIterations; i++ {
		if err := fn(userCtx, input, output); err != nil {
			return err
		}
	}

	if r.cfg.MonitorEnvironment {
		// A failed probe leaves a zero snapshot; that is "no data",
		// not a fault.
		r.envStart, _ = platform.Snapshot()
	}
	r.startNs = timer.Now()

	r.state = stateWarmed
	return nil
}

// Execute runs the critical measurement loop. If the runner has not been
// warmed it auto-warms first.
//
// Between the two timestamp reads of an iteration nothing executes but the
// inference call. Sample storage, wrap detection, output hashing and fault
// bookkeeping all happen strictly outside the timed region, and nothing in
// the loop allocates.
func (r *Runner) Execute(fn InferenceFunc, userCtx any, input, output []byte) error {
	if fn == nil {
		return errors.Wrap(ErrInvalidConfig, "nil inference function")
	}
	switch r.state {
	case stateInitialised:
		if err := r.Warmup(fn, userCtx, input, output); err != nil {
			return err
		}
	case stateWarmed:
	default:
		return errors.Wrap(ErrInvalidConfig, "execute requires an initialised or warmed runner")
	}

	r.outputSize = uint64(len(output))
	verifying := r.cfg.VerifyOutputs && len(output) > 0

	for i := uint32(0); i < r.cfg.MeasureIterations; i++ {
		tStart := timer.Now()
		err := fn(userCtx, input, output)
		tEnd := timer.Now()

		r.samples[i] = tEnd - tStart

		if tEnd < tStart {
			r.faults.TimerError = true
		}
		if verifying {
			r.hash.Update(output)
		}
		if err != nil {
			r.faults.VerifyFail = true
			r.verifyFailures++
		}
	}

	r.collected = r.cfg.MeasureIterations
	r.state = stateExecuted
	return nil
}

// GetResult assembles the run's result record. It may sort the sample
// buffer in place; after it returns, the runner no longer references the
// buffer.
func (r *Runner) GetResult(out *Result) error {
	if out == nil {
		return errors.Wrap(ErrInvalidConfig, "nil result")
	}
	if r.state != stateExecuted {
		return errors.Wrap(ErrInvalidConfig, "get result requires an executed runner")
	}

	*out = Result{}

	// Platform identification; probe failure leaves the fields empty.
	out.Platform = platform.Name()
	if model, err := platform.CPUModel(); err == nil {
		out.CPUModel = model
	}
	out.CPUFreqMHz = platform.CPUFreqMHz()

	out.WarmupIterations = r.cfg.WarmupIterations
	out.MeasureIterations = r.cfg.MeasureIterations
	out.BatchSize = r.cfg.BatchSize

	samples := r.samples[:r.collected]

	var totalNs uint64
	statsFaults := fault.Flags{}
	for _, s := range samples {
		totalNs += s
	}

	// MAD detection runs on the samples in issue order, before the
	// statistics kernel sorts the buffer in place. The inline
	// mean+3σ count in Latency.OutlierCount is the other criterion;
	// the record carries both.
	if madCount, err := stats.DetectOutliers(samples, r.outlierFlags, r.outlierScratch); err == nil {
		out.MadOutlierCount = madCount
	}

	_ = stats.Compute(samples, &out.Latency, &statsFaults)

	if totalNs > 0 {
		out.Throughput.InferencesPerSec = uint64(r.collected) * nsPerSec / totalNs
	}
	out.Throughput.SamplesPerSec = out.Throughput.InferencesPerSec * uint64(r.cfg.BatchSize)
	out.Throughput.BytesPerSec = out.Throughput.InferencesPerSec * r.outputSize
	out.Throughput.BatchSize = r.cfg.BatchSize

	if r.cfg.MonitorEnvironment {
		envEnd, _ := platform.Snapshot()
		out.Environment = platform.ComputeEnvStats(r.envStart, envEnd)
		out.EnvStable = out.Environment.Stable()
		if !out.EnvStable {
			r.faults.ThermalDrift = true
		}
	} else {
		out.EnvStable = true
	}

	if r.histogram != nil {
		if err := r.histogram.Build(samples); err == nil {
			out.Histogram = r.histogram
			out.HistogramValid = true
		}
	}

	out.BenchmarkStartNs = r.startNs
	out.BenchmarkEndNs = timer.Now()
	out.BenchmarkDurationNs = out.BenchmarkEndNs - out.BenchmarkStartNs
	out.TimestampUnix = uint64(time.Now().Unix())

	if r.cfg.VerifyOutputs {
		// Finalise a copy so the live context stays open for audit.
		hashCopy := r.hash
		out.OutputHash = hashCopy.Final()

		if r.golden != nil && !r.golden.Matches(out.OutputHash) {
			r.faults.VerifyFail = true
			r.verifyFailures++
		}

		out.VerificationFailures = r.verifyFailures
		out.DeterminismVerified = !r.faults.VerifyFail

		out.ResultHash = verify.ResultBinding(
			out.OutputHash,
			out.Platform,
			r.cfg.Hash(),
			verify.BindingStats{
				MinNs:  out.Latency.MinNs,
				MaxNs:  out.Latency.MaxNs,
				MeanNs: out.Latency.MeanNs,
				P99Ns:  out.Latency.P99Ns,
			},
			out.TimestampUnix,
		)
	}

	r.faults.Merge(statsFaults)
	r.faults.Merge(timer.Faults())
	out.Faults = r.faults

	// The borrowed buffer is released; the caller owns it again.
	r.samples = nil
	r.state = stateReported
	return nil
}

// Hash exposes the live hashing context for post-run audit. GetResult
// finalises a copy, so the returned context is still open.
func (r *Runner) Hash() *digest.Context {
	return &r.hash
}

// Faults returns a copy of the run's current fault set.
func (r *Runner) Faults() fault.Flags {
	return r.faults
}

// OutlierFlags returns the per-iteration MAD outlier flags in issue order.
// Populated by GetResult; all false before that.
func (r *Runner) OutlierFlags() []bool {
	return r.outlierFlags
}

// Run performs the whole sequence (init, warmup, execute, result) with a
// caller-provided sample buffer.
//
// Arguments:
// - cfg: Run configuration
// - fn: Inference routine under measurement
// - userCtx: Opaque context passed through to fn
// - input: Input buffer, identical for every iteration
// - output: Output buffer; fn must fill all of it each call
// - sampleBuffer: Caller-owned latency buffer, capacity ≥ MeasureIterations
//
// Returns the populated result record.
func Run(cfg Config, fn InferenceFunc, userCtx any, input, output []byte,
	sampleBuffer []uint64) (*Result, error) {

	r, err := NewRunner(cfg, sampleBuffer)
	if err != nil {
		return nil, err
	}
	if err := r.Warmup(fn, userCtx, input, output); err != nil {
		return nil, err
	}
	if err := r.Execute(fn, userCtx, input, output); err != nil {
		return nil, err
	}

	var result Result
	if err := r.GetResult(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
