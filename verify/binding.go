package verify

import (
	"encoding/binary"

	"github.com/certifiable-ai/go-bench/digest"
)

// bindingPrefix is the domain-separation tag for the result-binding digest.
const bindingPrefix = "CB:RESULT:v1"

// platformPadded is the fixed width the platform tag is NUL-padded to
// inside the binding.
const platformPadded = 32

// BindingStats are the latency fields committed to by the result binding.
type BindingStats struct {
	MinNs  uint64
	MaxNs  uint64
	MeanNs uint64
	P99Ns  uint64
}

// ResultBinding computes the digest that commits a result to its output
// hash, platform, configuration and key latency metrics in one value:
//
//	SHA-256("CB:RESULT:v1" ‖ output_hash ‖ platform₃₂ ‖ LE64(config_hash) ‖
//	        LE64(min) ‖ LE64(max) ‖ LE64(mean) ‖ LE64(p99) ‖ LE64(ts))
//
// Identical inputs always yield the identical digest; perturbing any single
// input changes it.
func ResultBinding(outputHash digest.Digest, platform string, configHash uint64,
	st BindingStats, timestampUnix uint64) digest.Digest {

	var ctx digest.Context
	ctx.Init()

	ctx.Update([]byte(bindingPrefix))
	ctx.Update(outputHash[:])

	var plat [platformPadded]byte
	copy(plat[:], platform)
	ctx.Update(plat[:])

	var le [8]byte
	for _, v := range []uint64{configHash, st.MinNs, st.MaxNs, st.MeanNs, st.P99Ns, timestampUnix} {
		binary.LittleEndian.PutUint64(le[:], v)
		ctx.Update(le[:])
	}

	return ctx.Final()
}
