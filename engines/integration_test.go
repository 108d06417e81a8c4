package engines

import (
	"testing"

	"github.com/certifiable-ai/go-bench/bench"
	"github.com/certifiable-ai/go-bench/compare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runEngine pushes an engine through the full measurement core.
func runEngine(t *testing.T, e *Engine, iterations uint32) *bench.Result {
	t.Helper()

	cfg := bench.DefaultConfig()
	cfg.WarmupIterations = 3
	cfg.MeasureIterations = iterations
	cfg.MonitorEnvironment = false

	input := make([]byte, e.InputSize)
	for i := range input {
		input[i] = byte(i*13 + 1)
	}
	output := make([]byte, e.OutputSize)
	samples := make([]uint64, iterations)

	res, err := bench.Run(cfg, e.Fn, nil, input, output, samples)
	require.NoError(t, err)
	return res
}

func TestEnginesThroughMeasurementCore(t *testing.T) {
	for _, name := range []string{"xor", "fixed-mlp"} {
		t.Run(name, func(t *testing.T) {
			e, err := New(name)
			require.NoError(t, err)

			a := runEngine(t, e, 25)
			b := runEngine(t, e, 25)

			assert.True(t, a.IsValid())
			assert.True(t, a.DeterminismVerified)

			// Bit-identity across repeated runs of a deterministic
			// engine: the comparison gate must open.
			cmp := compare.Compare(a, b)
			assert.True(t, cmp.OutputsIdentical)
			assert.True(t, cmp.Comparable)
		})
	}
}

func TestDivergentEnginesFailTheGate(t *testing.T) {
	a := runEngine(t, NewXorRotate(256), 25)
	b := runEngine(t, NewFixedMLP(256, 32, 256, 9), 25)

	cmp := compare.Compare(a, b)
	assert.False(t, cmp.OutputsIdentical)
	assert.False(t, cmp.Comparable)
	assert.Zero(t, cmp.LatencyRatioQ16)
}
