package runtime

import (
	"fmt"
	"slices"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/tensor"
)

var ortMu sync.Mutex

// ONNX runs models through the onnxruntime shared library.
type ONNX struct {
	opts Options
}

func NewONNX(opts Options) *ONNX { return &ONNX{opts: opts} }

func (o *ONNX) Name() string { return "onnxruntime" }

func (o *ONNX) environment() error {
	ortMu.Lock()
	defer ortMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if o.opts.ONNXLibrary != "" {
		ort.SetSharedLibraryPath(o.opts.ONNXLibrary)
	}
	return ort.InitializeEnvironment()
}

// ShutdownONNX releases the onnxruntime environment if it was started.
func ShutdownONNX() error {
	ortMu.Lock()
	defer ortMu.Unlock()
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

func ortSpecs(infos []ort.InputOutputInfo) ([]tensor.Spec, error) {
	specs := make([]tensor.Spec, len(infos))
	for i, info := range infos {
		var dt tensor.Dtype
		switch info.DataType {
		case ort.TensorElementDataTypeFloat:
			dt = tensor.Float32
		case ort.TensorElementDataTypeUint8:
			dt = tensor.Uint8
		default:
			return nil, fmt.Errorf("tensor %q has unsupported element type %v", info.Name, info.DataType)
		}
		shape := make([]int, len(info.Dimensions))
		for j, d := range info.Dimensions {
			shape[j] = int(d)
		}
		specs[i] = tensor.Spec{Name: info.Name, Shape: pinDims(shape), Dtype: dt}
	}
	return specs, nil
}

func (o *ONNX) Load(path string) (Session, error) {
	if err := o.environment(); err != nil {
		return nil, fmt.Errorf("%w: onnxruntime environment: %v", model.ErrLoad, err)
	}
	inInfo, outInfo, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrLoad, path, err)
	}
	s := &onnxSession{}
	if s.inputs, err = ortSpecs(inInfo); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrLoad, path, err)
	}
	if s.outputs, err = ortSpecs(outInfo); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrLoad, path, err)
	}

	var sessOpts *ort.SessionOptions
	if o.opts.NumThreads > 0 {
		if sessOpts, err = ort.NewSessionOptions(); err != nil {
			return nil, fmt.Errorf("%w: session options: %v", model.ErrLoad, err)
		}
		defer sessOpts.Destroy()
		if err := sessOpts.SetIntraOpNumThreads(o.opts.NumThreads); err != nil {
			return nil, fmt.Errorf("%w: session options: %v", model.ErrLoad, err)
		}
	}

	names := func(specs []tensor.Spec) []string {
		out := make([]string, len(specs))
		for i, sp := range specs {
			out[i] = sp.Name
		}
		return out
	}
	s.session, err = ort.NewDynamicAdvancedSession(path, names(s.inputs), names(s.outputs), sessOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrLoad, path, err)
	}
	s.in = make([]ort.Value, len(s.inputs))
	s.out = make([]ort.Value, len(s.outputs))
	return s, nil
}

type onnxSession struct {
	session         *ort.DynamicAdvancedSession
	inputs, outputs []tensor.Spec
	in, out         []ort.Value
}

func (s *onnxSession) Inputs() []tensor.Spec  { return s.inputs }
func (s *onnxSession) Outputs() []tensor.Spec { return s.outputs }

func (s *onnxSession) SetInput(i int, t *tensor.Tensor) error {
	if err := checkIndex("input", i, len(s.in)); err != nil {
		return err
	}
	dims := make([]int64, len(t.Shape))
	for j, d := range t.Shape {
		dims[j] = int64(d)
	}
	var (
		v   ort.Value
		err error
	)
	switch t.Dtype {
	case tensor.Uint8:
		v, err = ort.NewTensor(ort.NewShape(dims...), t.U8)
	default:
		v, err = ort.NewTensor(ort.NewShape(dims...), t.F32)
	}
	if err != nil {
		return fmt.Errorf("%w: binding input %d: %v", model.ErrInference, i, err)
	}
	if s.in[i] != nil {
		s.in[i].Destroy()
	}
	s.in[i] = v
	return nil
}

func (s *onnxSession) Invoke() error {
	s.releaseOutputs()
	if err := s.session.Run(s.in, s.out); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInference, err)
	}
	return nil
}

func (s *onnxSession) Output(i int) (*tensor.Tensor, error) {
	if err := checkIndex("output", i, len(s.out)); err != nil {
		return nil, err
	}
	if s.out[i] == nil {
		return nil, fmt.Errorf("%w: output %d read before invoke", model.ErrInference, i)
	}
	shape := make([]int, 0, len(s.out[i].GetShape()))
	for _, d := range s.out[i].GetShape() {
		shape = append(shape, int(d))
	}
	switch v := s.out[i].(type) {
	case *ort.Tensor[float32]:
		return tensor.FromFloat32(shape, slices.Clone(v.GetData()))
	case *ort.Tensor[uint8]:
		return tensor.FromUint8(shape, slices.Clone(v.GetData()))
	default:
		return nil, fmt.Errorf("%w: output %d has unsupported type %T", model.ErrInference, i, v)
	}
}

func (s *onnxSession) releaseOutputs() {
	for i, v := range s.out {
		if v != nil {
			v.Destroy()
			s.out[i] = nil
		}
	}
}

func (s *onnxSession) Close() error {
	s.releaseOutputs()
	for _, v := range s.in {
		if v != nil {
			v.Destroy()
		}
	}
	return s.session.Destroy()
}
