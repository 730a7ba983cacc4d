//go:build tflite

package runtime

import (
	"fmt"
	"slices"

	"github.com/mattn/go-tflite"

	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/tensor"
)

// TFLite runs .tflite models through the TensorFlow Lite C library.
type TFLite struct {
	opts Options
}

func NewTFLite(opts Options) *TFLite { return &TFLite{opts: opts} }

func (r *TFLite) Name() string { return "tflite" }

func tfliteSpec(t *tflite.Tensor) (tensor.Spec, error) {
	var dt tensor.Dtype
	switch t.Type() {
	case tflite.Float32:
		dt = tensor.Float32
	case tflite.UInt8:
		dt = tensor.Uint8
	default:
		return tensor.Spec{}, fmt.Errorf("tensor %q has unsupported type %v", t.Name(), t.Type())
	}
	shape := make([]int, t.NumDims())
	for i := range shape {
		shape[i] = t.Dim(i)
	}
	return tensor.Spec{Name: t.Name(), Shape: pinDims(shape), Dtype: dt}, nil
}

func (r *TFLite) Load(path string) (Session, error) {
	m := tflite.NewModelFromFile(path)
	if m == nil {
		return nil, fmt.Errorf("%w: %s: cannot read tflite model", model.ErrLoad, path)
	}
	opts := tflite.NewInterpreterOptions()
	defer opts.Delete()
	if r.opts.NumThreads > 0 {
		opts.SetNumThread(r.opts.NumThreads)
	}
	ip := tflite.NewInterpreter(m, opts)
	if ip == nil {
		m.Delete()
		return nil, fmt.Errorf("%w: %s: cannot create interpreter", model.ErrLoad, path)
	}
	if status := ip.AllocateTensors(); status != tflite.OK {
		ip.Delete()
		m.Delete()
		return nil, fmt.Errorf("%w: %s: allocate tensors: status %v", model.ErrLoad, path, status)
	}

	s := &tfliteSession{model: m, ip: ip}
	for i := 0; i < ip.GetInputTensorCount(); i++ {
		spec, err := tfliteSpec(ip.GetInputTensor(i))
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("%w: %s: %v", model.ErrLoad, path, err)
		}
		s.inputs = append(s.inputs, spec)
	}
	for i := 0; i < ip.GetOutputTensorCount(); i++ {
		spec, err := tfliteSpec(ip.GetOutputTensor(i))
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("%w: %s: %v", model.ErrLoad, path, err)
		}
		s.outputs = append(s.outputs, spec)
	}
	return s, nil
}

type tfliteSession struct {
	model           *tflite.Model
	ip              *tflite.Interpreter
	inputs, outputs []tensor.Spec
}

func (s *tfliteSession) Inputs() []tensor.Spec  { return s.inputs }
func (s *tfliteSession) Outputs() []tensor.Spec { return s.outputs }

func (s *tfliteSession) SetInput(i int, t *tensor.Tensor) error {
	if err := checkIndex("input", i, len(s.inputs)); err != nil {
		return err
	}
	var status tflite.Status
	switch t.Dtype {
	case tensor.Uint8:
		status = s.ip.GetInputTensor(i).CopyFromBuffer(t.U8)
	default:
		status = s.ip.GetInputTensor(i).CopyFromBuffer(t.F32)
	}
	if status != tflite.OK {
		return fmt.Errorf("%w: copy input %d: status %v", model.ErrInference, i, status)
	}
	return nil
}

func (s *tfliteSession) Invoke() error {
	if status := s.ip.Invoke(); status != tflite.OK {
		return fmt.Errorf("%w: invoke: status %v", model.ErrInference, status)
	}
	return nil
}

func (s *tfliteSession) Output(i int) (*tensor.Tensor, error) {
	if err := checkIndex("output", i, len(s.outputs)); err != nil {
		return nil, err
	}
	out := s.ip.GetOutputTensor(i)
	shape := make([]int, out.NumDims())
	for j := range shape {
		shape[j] = out.Dim(j)
	}
	switch out.Type() {
	case tflite.UInt8:
		return tensor.FromUint8(shape, slices.Clone(out.UInt8s()))
	case tflite.Float32:
		return tensor.FromFloat32(shape, slices.Clone(out.Float32s()))
	default:
		return nil, fmt.Errorf("%w: output %d has unsupported type %v", model.ErrInference, i, out.Type())
	}
}

func (s *tfliteSession) Close() error {
	s.ip.Delete()
	s.model.Delete()
	return nil
}
