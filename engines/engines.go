// Package engines provides reference inference routines for the benchmark
// runner: deterministic workloads used by the CLI, the examples and the
// integration tests, plus an adapter for real ONNX models.
//
// Every routine here is deterministic on a given platform: identical input
// always produces identical output bytes, which is what the bit-identity
// gate certifies. Routines that use floating point may legitimately diverge
// across architectures; the gate exists to catch exactly that.
package engines

import (
	"github.com/certifiable-ai/go-bench/bench"
	"github.com/pkg/errors"
)

// Engine couples an inference routine with its buffer geometry so callers
// can size the input/output buffers the runner hashes.
type Engine struct {
	Name       string
	InputSize  int
	OutputSize int
	Fn         bench.InferenceFunc

	// Close releases engine resources; nil when there is nothing to
	// release.
	Close func() error
}

// New constructs a named built-in engine with its default geometry.
// Recognised names: xor, fixed-mlp, mlp32, tensor, gorgonia, imageprep.
// The ONNX adapter needs a model path and is constructed via NewONNX.
func New(name string) (*Engine, error) {
	switch name {
	case "xor":
		return NewXorRotate(1024), nil
	case "fixed-mlp":
		return NewFixedMLP(64, 128, 64, 0x5EED), nil
	case "mlp32":
		return NewFloat32MLP(64, 128, 64, 0x5EED), nil
	case "tensor":
		return NewTensorMatMul(32)
	case "gorgonia":
		return NewGorgoniaMLP(32, 64, 32)
	case "imageprep":
		return NewImagePrep(128, 128, 64, 64), nil
	default:
		return nil, errors.Errorf("engines: unknown engine %q", name)
	}
}

// Names lists the built-in engine names in registry order.
func Names() []string {
	return []string{"xor", "fixed-mlp", "mlp32", "tensor", "gorgonia", "imageprep"}
}

// NewXorRotate is the reference byte-transform workload: each output byte is
// the input byte XORed with its position, plus a constant. Pure integer,
// bit-identical on every platform.
func NewXorRotate(size int) *Engine {
	fn := func(_ any, input, output []byte) error {
		for i := range output {
			output[i] = (input[i%len(input)] ^ byte(i)) + 0x5A
		}
		return nil
	}
	return &Engine{Name: "xor", InputSize: size, OutputSize: size, Fn: fn}
}

// xorshift64 is the deterministic weight generator shared by the MLP
// engines.
type xorshift64 uint64

func (x *xorshift64) next() uint64 {
	v := uint64(*x)
	v ^= v << 13
	v ^= v >> 7
	v ^= v << 17
	*x = xorshift64(v)
	return v
}

// NewFixedMLP builds a two-layer perceptron in Q16.16 fixed-point
// arithmetic: integer end to end, so its outputs are bit-identical across
// architectures. Weights derive from the seed via xorshift.
func NewFixedMLP(in, hidden, out int, seed uint64) *Engine {
	rng := xorshift64(seed | 1)

	// Small signed Q16.16 weights in [−0.5, 0.5).
	weight := func() int32 {
		return int32(rng.next()%65536) - 32768
	}

	w1 := make([]int32, in*hidden)
	w2 := make([]int32, hidden*out)
	for i := range w1 {
		w1[i] = weight()
	}
	for i := range w2 {
		w2[i] = weight()
	}

	hiddenBuf := make([]int32, hidden)

	fn := func(_ any, input, output []byte) error {
		for h := 0; h < hidden; h++ {
			var acc int64
			for i := 0; i < in; i++ {
				// Input bytes as Q16.16 in [0, 1).
				x := int64(input[i%len(input)]) << 8
				acc += x * int64(w1[i*hidden+h]) >> 16
			}
			// Hard sigmoid: clamp into [0, 2^16).
			if acc < 0 {
				acc = 0
			}
			if acc > 65535 {
				acc = 65535
			}
			hiddenBuf[h] = int32(acc)
		}

		for o := 0; o < out; o++ {
			var acc int64
			for h := 0; h < hidden; h++ {
				acc += int64(hiddenBuf[h]) * int64(w2[h*out+o]) >> 16
			}
			output[o%len(output)] = byte(uint64(acc) >> 8)
		}
		return nil
	}

	return &Engine{Name: "fixed-mlp", InputSize: in, OutputSize: out, Fn: fn}
}
