package engines

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// NewTensorMatMul builds a dense n×n matrix-multiply workload on
// gorgonia/tensor. The weight matrix is fixed at construction; each call
// refreshes the input matrix from the input bytes, multiplies, and writes
// the product back out. All tensors are pre-allocated so the per-call path
// reuses the same backing arrays.
func NewTensorMatMul(n int) (*Engine, error) {
	rng := xorshift64(0xC0FFEE)

	wBacking := make([]float32, n*n)
	for i := range wBacking {
		wBacking[i] = float32(rng.next()>>40)/float32(1<<24) - 0.5
	}
	weights := tensor.New(tensor.WithShape(n, n), tensor.WithBacking(wBacking))

	inBacking := make([]float32, n*n)
	input := tensor.New(tensor.WithShape(n, n), tensor.WithBacking(inBacking))

	outBacking := make([]float32, n*n)
	reuse := tensor.New(tensor.WithShape(n, n), tensor.WithBacking(outBacking))

	size := n * n

	fn := func(_ any, in, out []byte) error {
		for i := 0; i < size; i++ {
			inBacking[i] = float32(in[i%len(in)]) / 255
		}

		if _, err := tensor.MatMul(input, weights, tensor.WithReuse(reuse)); err != nil {
			return errors.Wrap(err, "tensor matmul")
		}

		for i := 0; i < size; i++ {
			v := outBacking[i]
			if v < 0 {
				v = -v
			}
			out[i%len(out)] = byte(uint32(v*16) & 0xFF)
		}
		return nil
	}

	return &Engine{Name: "tensor", InputSize: size, OutputSize: size, Fn: fn}, nil
}
