package tensor

import (
	"fmt"
	"math"
	"slices"
)

// Spec describes one model input or output as reported by the runtime.
// Specs are derived once per loaded model and not modified afterwards.
type Spec struct {
	Name  string `json:"name" yaml:"name"`
	Shape []int  `json:"shape" yaml:"shape"`
	Dtype Dtype  `json:"dtype" yaml:"dtype"`
}

// NumElements returns the product of the shape dimensions.
func (s Spec) NumElements() int {
	return NumElements(s.Shape)
}

// Rank returns the number of dimensions.
func (s Spec) Rank() int { return len(s.Shape) }

// NumElements returns the product of shape. An empty shape is a scalar.
func NumElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Tensor is a dense, row-major array. Exactly one of F32/U8 is populated,
// matching Dtype.
type Tensor struct {
	Shape []int
	Dtype Dtype
	F32   []float32
	U8    []uint8

	// Pattern names the synthetic pattern that produced the tensor, if any.
	Pattern string
}

// New allocates a zero tensor. Every dimension must be positive.
func New(shape []int, dtype Dtype) (*Tensor, error) {
	for i, d := range shape {
		if d <= 0 {
			return nil, fmt.Errorf("dimension %d of shape %v is not positive", i, shape)
		}
	}
	t := &Tensor{Shape: slices.Clone(shape), Dtype: dtype}
	n := NumElements(shape)
	switch dtype {
	case Uint8:
		t.U8 = make([]uint8, n)
	case Float32:
		t.F32 = make([]float32, n)
	default:
		return nil, fmt.Errorf("unsupported dtype %s", dtype)
	}
	return t, nil
}

// FromFloat32 wraps data without copying.
func FromFloat32(shape []int, data []float32) (*Tensor, error) {
	if NumElements(shape) != len(data) {
		return nil, fmt.Errorf("shape %v needs %d elements, got %d", shape, NumElements(shape), len(data))
	}
	return &Tensor{Shape: slices.Clone(shape), Dtype: Float32, F32: data}, nil
}

// FromUint8 wraps data without copying.
func FromUint8(shape []int, data []uint8) (*Tensor, error) {
	if NumElements(shape) != len(data) {
		return nil, fmt.Errorf("shape %v needs %d elements, got %d", shape, NumElements(shape), len(data))
	}
	return &Tensor{Shape: slices.Clone(shape), Dtype: Uint8, U8: data}, nil
}

// Len returns the number of elements.
func (t *Tensor) Len() int {
	if t.Dtype == Uint8 {
		return len(t.U8)
	}
	return len(t.F32)
}

// At returns element i as float64.
func (t *Tensor) At(i int) float64 {
	if t.Dtype == Uint8 {
		return float64(t.U8[i])
	}
	return float64(t.F32[i])
}

// Set stores v at i after passing it through the dtype cast.
func (t *Tensor) Set(i int, v float64) {
	v = t.Dtype.Cast(v)
	if t.Dtype == Uint8 {
		t.U8[i] = uint8(v)
		return
	}
	t.F32[i] = float32(v)
}

// Fill sets every element to v.
func (t *Tensor) Fill(v float64) {
	for i := 0; i < t.Len(); i++ {
		t.Set(i, v)
	}
}

// Float64s copies the elements into a new float64 slice.
func (t *Tensor) Float64s() []float64 {
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = t.At(i)
	}
	return out
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	c := &Tensor{Shape: slices.Clone(t.Shape), Dtype: t.Dtype, Pattern: t.Pattern}
	if t.F32 != nil {
		c.F32 = slices.Clone(t.F32)
	}
	if t.U8 != nil {
		c.U8 = slices.Clone(t.U8)
	}
	return c
}

// CastTo returns t converted to dtype. When the dtype already matches, t is returned.
func (t *Tensor) CastTo(dtype Dtype) (*Tensor, error) {
	if t.Dtype == dtype {
		return t, nil
	}
	out, err := New(t.Shape, dtype)
	if err != nil {
		return nil, err
	}
	for i := 0; i < t.Len(); i++ {
		out.Set(i, t.At(i))
	}
	out.Pattern = t.Pattern
	return out, nil
}

// Summary holds population statistics over all elements.
type Summary struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Summarize computes mean, population std, min and max.
func (t *Tensor) Summarize() Summary {
	return Summarize(t.Float64s())
}

// Summarize computes mean, population std, min and max of xs.
// An empty slice yields a zero Summary.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, x := range xs {
		sum += x
		s.Min = math.Min(s.Min, x)
		s.Max = math.Max(s.Max, x)
	}
	s.Mean = sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		d := x - s.Mean
		sq += d * d
	}
	s.Std = math.Sqrt(sq / float64(len(xs)))
	return s
}

// FirstRow returns the elements of batch entry 0 as float64.
// For rank < 2 the whole tensor is returned.
func (t *Tensor) FirstRow() []float64 {
	if len(t.Shape) < 2 || t.Shape[0] == 0 {
		return t.Float64s()
	}
	n := t.Len() / t.Shape[0]
	row := make([]float64, n)
	for i := range row {
		row[i] = t.At(i)
	}
	return row
}

// ArgMax returns the index and value of the largest element (first on ties).
// It returns -1 for an empty slice.
func ArgMax(xs []float64) (int, float64) {
	if len(xs) == 0 {
		return -1, 0
	}
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best, xs[best]
}
