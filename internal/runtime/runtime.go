/*
PURPOSE:
  Model Runtime capability. The harness never talks to an inference engine
  directly; it loads a Session through a Runtime and drives it with
  SetInput / Invoke / Output.

REQUIREMENTS:
  User-specified:
  - Load a model file and expose its input and output tensor specs.
  - Bind an input tensor, invoke, read output tensors.

  Implementation-discovered:
  - Dynamic dimensions (-1) are pinned to 1 so synthetic inputs can be built.
  - Sessions hold native resources; callers must Close them.

ARCHITECTURE INTEGRATION:
  - Implemented by: ONNX (onnxruntime_go), TFLite (go-tflite, build tag "tflite"), Fake (tests)
  - Used by: internal/engine

ERROR HANDLING:
  - Load failures wrap model.ErrLoad, invoke failures wrap model.ErrInference.

IMPLEMENTATION RULES:
  - A Session is not safe for concurrent use.

RELATED FILES:
  - internal/runtime/onnx.go
  - internal/runtime/tflite.go
  - internal/runtime/fake.go

MAINTENANCE:
  - New engines implement Runtime and get a case in Select.
*/

package runtime

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/daryltucker/model-harness/internal/artifact"
	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/tensor"
)

// Runtime loads model artifacts.
type Runtime interface {
	Name() string
	Load(path string) (Session, error)
}

// Session is one loaded model ready for inference.
type Session interface {
	Inputs() []tensor.Spec
	Outputs() []tensor.Spec
	// SetInput binds t to input i. t must not change until Invoke returns.
	SetInput(i int, t *tensor.Tensor) error
	Invoke() error
	Output(i int) (*tensor.Tensor, error)
	Close() error
}

// Options configure the concrete runtimes.
type Options struct {
	ONNXLibrary string // path to the onnxruntime shared library
	NumThreads  int
}

// FormatOf returns the artifact format of path, trusting a known extension
// before reading the header.
func FormatOf(path string) artifact.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tflite":
		return artifact.TFLite
	case ".onnx":
		return artifact.ONNX
	}
	info, err := artifact.Sniff(path)
	if err != nil {
		return artifact.Unknown
	}
	return info.Format
}

// Select returns the runtime able to execute path.
func Select(path string, opts Options) (Runtime, error) {
	switch f := FormatOf(path); f {
	case artifact.TFLite:
		return NewTFLite(opts), nil
	case artifact.ONNX:
		return NewONNX(opts), nil
	default:
		return nil, fmt.Errorf("%w: %s: unrecognized model format", model.ErrLoad, path)
	}
}

func pinDims(shape []int) []int {
	out := make([]int, len(shape))
	for i, d := range shape {
		if d <= 0 {
			d = 1
		}
		out[i] = d
	}
	return out
}

func checkIndex(kind string, i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%s index %d out of range (%d)", kind, i, n)
	}
	return nil
}
