package engines

import (
	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// NewGorgoniaMLP builds a single-hidden-layer perceptron as a gorgonia
// expression graph executed by a tape machine. The graph and weights are
// constructed once; each inference call binds the input tensor, runs the
// tape, and copies the activation back out.
func NewGorgoniaMLP(in, hidden, out int) (*Engine, error) {
	rng := xorshift64(0xDECAF)

	backing := func(n int) []float32 {
		b := make([]float32, n)
		for i := range b {
			b[i] = float32(rng.next()>>40)/float32(1<<24) - 0.5
		}
		return b
	}

	g := gorgonia.NewGraph()

	w1 := gorgonia.NodeFromAny(g,
		tensor.New(tensor.WithShape(in, hidden), tensor.WithBacking(backing(in*hidden))),
		gorgonia.WithName("w1"))
	w2 := gorgonia.NodeFromAny(g,
		tensor.New(tensor.WithShape(hidden, out), tensor.WithBacking(backing(hidden*out))),
		gorgonia.WithName("w2"))

	x := gorgonia.NewMatrix(g, tensor.Float32,
		gorgonia.WithShape(1, in), gorgonia.WithName("x"))

	h, err := gorgonia.Mul(x, w1)
	if err != nil {
		return nil, errors.Wrap(err, "build hidden layer")
	}
	h, err = gorgonia.Sigmoid(h)
	if err != nil {
		return nil, errors.Wrap(err, "build hidden activation")
	}
	y, err := gorgonia.Mul(h, w2)
	if err != nil {
		return nil, errors.Wrap(err, "build output layer")
	}
	y, err = gorgonia.Sigmoid(y)
	if err != nil {
		return nil, errors.Wrap(err, "build output activation")
	}

	vm := gorgonia.NewTapeMachine(g)

	xBacking := make([]float32, in)
	xT := tensor.New(tensor.WithShape(1, in), tensor.WithBacking(xBacking))

	fn := func(_ any, input, output []byte) error {
		for i := 0; i < in; i++ {
			xBacking[i] = float32(input[i%len(input)]) / 255
		}
		if err := gorgonia.Let(x, xT); err != nil {
			return errors.Wrap(err, "bind input")
		}
		if err := vm.RunAll(); err != nil {
			vm.Reset()
			return errors.Wrap(err, "run tape machine")
		}

		vals := y.Value().Data().([]float32)
		for o := 0; o < out; o++ {
			output[o%len(output)] = byte(vals[o] * 255)
		}
		vm.Reset()
		return nil
	}

	return &Engine{
		Name:       "gorgonia",
		InputSize:  in,
		OutputSize: out,
		Fn:         fn,
		Close: func() error {
			return vm.Close()
		},
	}, nil
}
