package engines

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// The ONNX runtime environment is initialised once per process.
var ortInit sync.Once

// NewONNX adapts an ONNX model to the inference-function contract. The
// session and its I/O tensors are created once; each call decodes the input
// bytes as little-endian float32s into the input tensor, runs the session,
// and encodes the output tensor back to bytes.
//
// Whether an ONNX model is bit-deterministic depends on the runtime build;
// the output-hash gate is the arbiter, exactly as for any other routine.
//
// Arguments:
// - modelPath: Path to the .onnx model file
// - inputName, outputName: Graph tensor names
// - inputShape, outputShape: Tensor dimensions
//
// Returns the engine or an error if the runtime or model cannot be loaded.
func NewONNX(modelPath, inputName, outputName string,
	inputShape, outputShape []int64) (*Engine, error) {

	var initErr error
	ortInit.Do(func() {
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return nil, errors.Wrap(initErr, "initialise onnx runtime")
	}

	inTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(inputShape...))
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}
	outTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(outputShape...))
	if err != nil {
		inTensor.Destroy()
		return nil, errors.Wrap(err, "create output tensor")
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{inputName}, []string{outputName},
		[]ort.ArbitraryTensor{inTensor}, []ort.ArbitraryTensor{outTensor}, nil)
	if err != nil {
		inTensor.Destroy()
		outTensor.Destroy()
		return nil, errors.Wrap(err, "create onnx session")
	}

	inData := inTensor.GetData()
	outData := outTensor.GetData()

	fn := func(_ any, input, output []byte) error {
		// Buffers are sized from Engine.InputSize/OutputSize, so the
		// offsets below are exact.
		if len(input) < len(inData)*4 || len(output) < len(outData)*4 {
			return errors.New("engines: onnx buffer size mismatch")
		}

		for i := range inData {
			inData[i] = math.Float32frombits(binary.LittleEndian.Uint32(input[i*4:]))
		}

		if err := session.Run(); err != nil {
			return errors.Wrap(err, "onnx inference")
		}

		for i := range outData {
			binary.LittleEndian.PutUint32(output[i*4:], math.Float32bits(outData[i]))
		}
		return nil
	}

	return &Engine{
		Name:       "onnx",
		InputSize:  len(inData) * 4,
		OutputSize: len(outData) * 4,
		Fn:         fn,
		Close: func() error {
			session.Destroy()
			inTensor.Destroy()
			outTensor.Destroy()
			return nil
		},
	}, nil
}
