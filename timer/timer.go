// Package timer provides the monotonic nanosecond timer the benchmark
// runner times the critical loop with.
//
// Timer state is process-global: it is initialised once before a run and is
// read-only while a run is in flight, matching the single-threaded benchmark
// contract. Re-initialisation between runs is idempotent.
package timer

import (
	"math"
	"sync"
	"time"

	"github.com/certifiable-ai/go-bench/fault"
)

// Source selects the timestamp backend.
type Source uint32

const (
	// Auto picks the highest-resolution source available.
	Auto Source = iota
	// Monotonic is the portable monotonic clock (the Go runtime's
	// clock_gettime / mach_absolute_time path).
	Monotonic
	// TSC is the x86 invariant timestamp counter.
	TSC
	// CNTVCT is the ARM64 virtual counter.
	CNTVCT
	// RiscvCycle is the RISC-V cycle CSR.
	RiscvCycle
)

const nsPerSec = 1_000_000_000

// calibrationIterations is the number of back-to-back Now pairs sampled to
// measure self-overhead.
const calibrationIterations = 1000

var sourceNames = map[Source]string{
	Auto:       "auto",
	Monotonic:  "monotonic",
	TSC:        "x86_64 (RDTSC)",
	CNTVCT:     "arm64 (CNTVCT_EL0)",
	RiscvCycle: "risc-v (cycle CSR)",
}

var (
	mu            sync.Mutex
	initialised   bool
	active        Source
	base          time.Time
	resolutionNs  uint64
	calibrationNs uint64
	freqHz        uint64
	faults        fault.Flags
)

// Init selects and calibrates a timer source. Called once before a run;
// calling it again re-initialises and is idempotent.
//
// Auto selects the highest-resolution available backend. A specific
// cycle-counter source that is unavailable falls back to the portable
// monotonic clock; in a pure-Go build that is always the outcome, since raw
// TSC/CNTVCT/cycle-CSR reads need per-platform assembly that is not wired
// in. The monotonic backend reads already-converted
// nanoseconds, so FreqHz stays 0 and CyclesToNs is the identity.
//
// Returns the source actually selected.
func Init(preferred Source) Source {
	mu.Lock()
	defer mu.Unlock()

	faults.Clear()
	freqHz = 0
	base = time.Now()

	switch preferred {
	case TSC:
		active = fallbackUnless(tscAvailable(), TSC)
	case CNTVCT:
		active = fallbackUnless(cntvctAvailable(), CNTVCT)
	case RiscvCycle:
		active = fallbackUnless(riscvCycleAvailable(), RiscvCycle)
	default:
		// Auto: the cycle counters would outrank the monotonic clock,
		// but none is reachable from a pure-Go build.
		active = Monotonic
	}

	resolutionNs = measureResolution()
	calibrationNs = calibrate()
	initialised = true

	return active
}

func fallbackUnless(available bool, s Source) Source {
	if available {
		return s
	}
	return Monotonic
}

// Raw cycle-counter reads need per-platform assembly; none is wired in, so
// the probes report unavailable and selection falls back to the monotonic
// clock.
func tscAvailable() bool        { return false }
func cntvctAvailable() bool     { return false }
func riscvCycleAvailable() bool { return false }

// Now returns nanoseconds since Init on the active source. It never blocks,
// never allocates, and is monotonically non-decreasing. If the timer has not
// been initialised it sets TimerError and returns 0 rather than panicking.
func Now() uint64 {
	if !initialised {
		faults.TimerError = true
		return 0
	}
	// time.Since reads the runtime's monotonic clock; it cannot go
	// backwards and involves no heap use.
	d := time.Since(base)
	if d < 0 {
		faults.TimerError = true
		return 0
	}
	return uint64(d)
}

// Resolution returns the measured timer resolution in nanoseconds.
func Resolution() uint64 {
	if !initialised {
		return 0
	}
	return resolutionNs
}

// Calibration returns the measured self-overhead of a Now read pair in
// nanoseconds.
func Calibration() uint64 {
	if !initialised {
		return 0
	}
	return calibrationNs
}

// Name returns the active backend's name.
func Name() string {
	if !initialised {
		return "uninitialised"
	}
	return sourceNames[active]
}

// FreqHz returns the counter frequency for cycle-counter backends, 0 for
// backends that already report nanoseconds.
func FreqHz() uint64 {
	return freqHz
}

// Faults returns a copy of the timer's fault flags.
func Faults() fault.Flags {
	return faults
}

// CyclesToNs converts a raw counter value to nanoseconds using the
// calibrated frequency. Identity for backends whose counters are already in
// nanoseconds. The conversion splits whole seconds from the remainder so no
// intermediate product overflows silently; on overflow it saturates to
// MaxUint64 and sets the Overflow fault.
func CyclesToNs(cycles uint64) uint64 {
	if !initialised {
		return 0
	}
	if freqHz == 0 {
		return cycles
	}

	wholeSecs := cycles / freqHz
	remainder := cycles % freqHz

	if wholeSecs > math.MaxUint64/nsPerSec {
		faults.Overflow = true
		return math.MaxUint64
	}
	nsWhole := wholeSecs * nsPerSec
	nsRem := (remainder * nsPerSec) / freqHz

	if nsWhole > math.MaxUint64-nsRem {
		faults.Overflow = true
		return math.MaxUint64
	}
	return nsWhole + nsRem
}

// measureResolution finds the smallest nonzero step the clock reports over a
// burst of reads. Falls back to 1 ns if the clock never advanced during the
// burst.
func measureResolution() uint64 {
	minStep := uint64(math.MaxUint64)
	prev := uint64(time.Since(base))
	for i := 0; i < calibrationIterations; i++ {
		cur := uint64(time.Since(base))
		if cur > prev && cur-prev < minStep {
			minStep = cur - prev
		}
		prev = cur
	}
	if minStep == math.MaxUint64 {
		return 1
	}
	return minStep
}

// calibrate measures the self-overhead of a timestamp pair as the minimum
// delta over many back-to-back reads, discarding scheduling noise.
func calibrate() uint64 {
	minOverhead := uint64(math.MaxUint64)
	for i := 0; i < calibrationIterations; i++ {
		start := uint64(time.Since(base))
		end := uint64(time.Since(base))
		if end < start {
			continue
		}
		if d := end - start; d < minOverhead {
			minOverhead = d
		}
	}
	if minOverhead == math.MaxUint64 {
		return 0
	}
	return minOverhead
}
