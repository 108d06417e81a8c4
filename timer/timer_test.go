package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSelectsMonotonic(t *testing.T) {
	assert.Equal(t, Monotonic, Init(Auto))
	assert.Equal(t, "monotonic", Name())
	assert.Zero(t, FreqHz())
}

func TestInitFallsBackForUnavailableSources(t *testing.T) {
	for _, s := range []Source{TSC, CNTVCT, RiscvCycle} {
		assert.Equal(t, Monotonic, Init(s), "source %d", s)
	}
}

func TestNowMonotonicity(t *testing.T) {
	Init(Auto)

	prev := Now()
	require.NotZero(t, prev)
	for i := 0; i < 10_000; i++ {
		cur := Now()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	assert.False(t, Faults().TimerError)
}

func TestCalibrationOverheadBound(t *testing.T) {
	Init(Auto)

	// Non-interference: the self-overhead of a read pair stays under a
	// microsecond on the portable backend.
	assert.Less(t, Calibration(), uint64(1000))
}

func TestResolutionBound(t *testing.T) {
	Init(Auto)

	res := Resolution()
	assert.NotZero(t, res)
	assert.LessOrEqual(t, res, uint64(1000))
}

func TestCyclesToNsIdentityOnMonotonic(t *testing.T) {
	Init(Auto)

	// FreqHz == 0 means counter values are already nanoseconds.
	assert.Equal(t, uint64(12345), CyclesToNs(12345))
	assert.Equal(t, uint64(0), CyclesToNs(0))
}

func TestCyclesToNsFrequencyConversion(t *testing.T) {
	Init(Auto)

	// Exercise the frequency path directly.
	freqHz = 3_000_000_000 // 3 GHz
	defer func() { freqHz = 0 }()

	// 3e9 cycles at 3 GHz = 1 s.
	assert.Equal(t, uint64(1_000_000_000), CyclesToNs(3_000_000_000))
	// 1500 cycles = 500 ns.
	assert.Equal(t, uint64(500), CyclesToNs(1500))
}

func TestCyclesToNsOverflowSaturates(t *testing.T) {
	Init(Auto)

	freqHz = 1 // pathological 1 Hz counter: every cycle is one second
	defer func() { freqHz = 0 }()

	got := CyclesToNs(1 << 63)
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), got)
	assert.True(t, Faults().Overflow)
}

func TestUninitialisedAccessors(t *testing.T) {
	mu.Lock()
	initialised = false
	mu.Unlock()
	defer Init(Auto)

	assert.Equal(t, uint64(0), Now())
	assert.Equal(t, uint64(0), Resolution())
	assert.Equal(t, uint64(0), Calibration())
	assert.Equal(t, "uninitialised", Name())
	assert.True(t, Faults().TimerError)
}
