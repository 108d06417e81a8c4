package engines

import (
	"github.com/chewxy/math32"
)

// NewFloat32MLP builds a two-layer float32 perceptron with a sigmoid
// activation. Deterministic per platform; cross-architecture float32
// divergence is precisely what the output-hash gate detects.
func NewFloat32MLP(in, hidden, out int, seed uint64) *Engine {
	rng := xorshift64(seed | 1)

	weight := func() float32 {
		// Uniform in [−0.5, 0.5) from the top 24 bits.
		return float32(rng.next()>>40)/float32(1<<24) - 0.5
	}

	w1 := make([]float32, in*hidden)
	w2 := make([]float32, hidden*out)
	for i := range w1 {
		w1[i] = weight()
	}
	for i := range w2 {
		w2[i] = weight()
	}

	hiddenBuf := make([]float32, hidden)

	fn := func(_ any, input, output []byte) error {
		for h := 0; h < hidden; h++ {
			var acc float32
			for i := 0; i < in; i++ {
				x := float32(input[i%len(input)]) / 255
				acc += x * w1[i*hidden+h]
			}
			hiddenBuf[h] = sigmoid32(acc)
		}

		for o := 0; o < out; o++ {
			var acc float32
			for h := 0; h < hidden; h++ {
				acc += hiddenBuf[h] * w2[h*out+o]
			}
			output[o%len(output)] = byte(sigmoid32(acc) * 255)
		}
		return nil
	}

	return &Engine{Name: "mlp32", InputSize: in, OutputSize: out, Fn: fn}
}

func sigmoid32(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}
