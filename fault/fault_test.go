package fault

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHardFaultClassification(t *testing.T) {
	assert.False(t, Flags{}.HasHardFault())

	hard := []Flags{
		{Overflow: true},
		{Underflow: true},
		{DivZero: true},
		{TimerError: true},
		{VerifyFail: true},
	}
	for _, f := range hard {
		assert.True(t, f.HasHardFault())
		assert.False(t, f.HasWarning())
	}

	// Thermal drift is a warning, not a hard fault.
	warn := Flags{ThermalDrift: true}
	assert.False(t, warn.HasHardFault())
	assert.True(t, warn.HasWarning())
}

func TestClearAndMerge(t *testing.T) {
	f := Flags{Overflow: true, ThermalDrift: true}
	f.Clear()
	assert.Equal(t, Flags{}, f)

	f.Merge(Flags{DivZero: true})
	f.Merge(Flags{ThermalDrift: true})
	assert.True(t, f.DivZero)
	assert.True(t, f.ThermalDrift)
	assert.False(t, f.Overflow)
}
