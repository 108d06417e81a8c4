// Package platform identifies the host and probes its environment: CPU
// model and frequency, thermal state, throttle events, and optional
// hardware performance counters.
//
// Every probe degrades gracefully: a failed or unsupported read yields zero
// fields and never a fault, because a benchmark result must not become
// invalid when a sensor is absent.
package platform

import "runtime"

// Name returns the architecture tag for the host, from the set
// {x86_64, aarch64, riscv64, riscv32, i386, arm, unknown}.
func Name() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "riscv64":
		return "riscv64"
	case "riscv":
		return "riscv32"
	case "386":
		return "i386"
	case "arm":
		return "arm"
	default:
		return "unknown"
	}
}

// MaxCPUModel is the CPU model string length limit; longer models truncate.
const MaxCPUModel = 128

// CPUModel returns the host CPU identification string, truncated to
// MaxCPUModel bytes. An empty string and an error mean the probe failed;
// callers leave the field empty and continue.
func CPUModel() (string, error) {
	model, err := cpuModel()
	if err != nil {
		return "", err
	}
	if len(model) > MaxCPUModel {
		model = model[:MaxCPUModel]
	}
	return model, nil
}

// CPUFreqMHz returns the current CPU frequency in MHz, 0 if unavailable.
func CPUFreqMHz() uint32 {
	return cpuFreqMHz()
}

// EnvSnapshot is a point-in-time reading of the thermal/frequency state.
// All-zero fields mean the corresponding sensor is unavailable.
type EnvSnapshot struct {
	TimestampNs   uint64 `json:"timestamp_ns"`
	CPUFreqHz     uint64 `json:"cpu_freq_hz"`
	CPUTempMilliC int32  `json:"cpu_temp_mc"`
	ThrottleCount uint32 `json:"throttle_count"`
}

// EnvStats aggregates the environment over a benchmark window.
type EnvStats struct {
	Start               EnvSnapshot `json:"start"`
	End                 EnvSnapshot `json:"end"`
	MinFreqHz           uint64      `json:"min_freq_hz"`
	MaxFreqHz           uint64      `json:"max_freq_hz"`
	MinTempMilliC       int32       `json:"min_temp_mc"`
	MaxTempMilliC       int32       `json:"max_temp_mc"`
	TotalThrottleEvents uint32      `json:"total_throttle_events"`
}

// ComputeEnvStats folds a start and end snapshot into window statistics.
// Throttle counters are cumulative, so the window total is the difference.
func ComputeEnvStats(start, end EnvSnapshot) EnvStats {
	st := EnvStats{Start: start, End: end}

	st.MinFreqHz, st.MaxFreqHz = start.CPUFreqHz, end.CPUFreqHz
	if st.MinFreqHz > st.MaxFreqHz {
		st.MinFreqHz, st.MaxFreqHz = st.MaxFreqHz, st.MinFreqHz
	}

	st.MinTempMilliC, st.MaxTempMilliC = start.CPUTempMilliC, end.CPUTempMilliC
	if st.MinTempMilliC > st.MaxTempMilliC {
		st.MinTempMilliC, st.MaxTempMilliC = st.MaxTempMilliC, st.MinTempMilliC
	}

	if end.ThrottleCount >= start.ThrottleCount {
		st.TotalThrottleEvents = end.ThrottleCount - start.ThrottleCount
	}

	return st
}

// Stable reports whether the hardware state held steady over the window:
// the end frequency must be at least 95% of the start frequency (compared
// without dividing, end×100 ≥ start×95) and no throttle events may have
// occurred. A zero start frequency means no data; stability is assumed.
func (st EnvStats) Stable() bool {
	if st.Start.CPUFreqHz != 0 &&
		st.End.CPUFreqHz*100 < st.Start.CPUFreqHz*95 {
		return false
	}
	return st.TotalThrottleEvents == 0
}

// HWCounters is a snapshot of hardware performance counters over a
// measurement window. Available is false when the counters could not be
// read; that is never a fault. IPC and the cache miss rate are Q16.16
// fixed-point; display code may convert them to floating point, nothing
// else may.
type HWCounters struct {
	Available        bool   `json:"available"`
	Cycles           uint64 `json:"cycles"`
	Instructions     uint64 `json:"instructions"`
	CacheRefs        uint64 `json:"cache_refs"`
	CacheMisses      uint64 `json:"cache_misses"`
	BranchRefs       uint64 `json:"branch_refs"`
	BranchMisses     uint64 `json:"branch_misses"`
	IPCQ16           uint32 `json:"ipc_q16"`
	CacheMissRateQ16 uint32 `json:"cache_miss_rate_q16"`
}

// deriveRatios fills the Q16.16 derived fields; zero denominators leave the
// ratio zero rather than trapping.
func (c *HWCounters) deriveRatios() {
	if c.Cycles > 0 {
		c.IPCQ16 = uint32((c.Instructions << 16) / c.Cycles)
	}
	if c.CacheRefs > 0 {
		c.CacheMissRateQ16 = uint32((c.CacheMisses << 16) / c.CacheRefs)
	}
}
