package runtime

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/tensor"
)

// Fake is an in-memory Runtime with scripted behavior. Every Load returns a
// session sharing the Fake's counters.
type Fake struct {
	InputSpecs  []tensor.Spec
	OutputSpecs []tensor.Spec

	// Compute maps input 0 to output 0 values. Nil produces a fixed ramp
	// scaled by the input mean.
	Compute func(in *tensor.Tensor) []float64
	// Noise is the std of gaussian noise added to every output value.
	Noise float64
	// FailPattern makes Invoke fail for inputs generated with that pattern.
	FailPattern string
	LoadErr     error
	Delay       time.Duration

	mu      sync.Mutex
	rng     *rand.Rand
	loads   int
	invokes int
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Load(path string) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.LoadErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrLoad, path, f.LoadErr)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewPCG(1, 1))
	}
	return &fakeSession{f: f, in: make([]*tensor.Tensor, len(f.InputSpecs))}, nil
}

// Loads returns how many times Load was called.
func (f *Fake) Loads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

// Invokes returns how many times Invoke was called across sessions.
func (f *Fake) Invokes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invokes
}

type fakeSession struct {
	f      *Fake
	in     []*tensor.Tensor
	out    *tensor.Tensor
	closed bool
}

func (s *fakeSession) Inputs() []tensor.Spec  { return s.f.InputSpecs }
func (s *fakeSession) Outputs() []tensor.Spec { return s.f.OutputSpecs }

func (s *fakeSession) SetInput(i int, t *tensor.Tensor) error {
	if err := checkIndex("input", i, len(s.in)); err != nil {
		return err
	}
	s.in[i] = t
	return nil
}

func (s *fakeSession) Invoke() error {
	f := s.f
	f.mu.Lock()
	f.invokes++
	f.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%w: session closed", model.ErrInference)
	}
	if len(s.in) == 0 || s.in[0] == nil {
		return fmt.Errorf("%w: input 0 not set", model.ErrInference)
	}
	in := s.in[0]
	if f.FailPattern != "" && in.Pattern == f.FailPattern {
		return fmt.Errorf("%w: scripted failure for %s", model.ErrInference, in.Pattern)
	}
	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}
	if len(f.OutputSpecs) == 0 {
		return nil
	}

	spec := f.OutputSpecs[0]
	var values []float64
	if f.Compute != nil {
		values = f.Compute(in)
	} else {
		mean := in.Summarize().Mean
		values = make([]float64, spec.NumElements())
		for k := range values {
			values[k] = (mean + 1) * float64(k+1) / float64(len(values))
		}
	}
	out, err := tensor.New(spec.Shape, spec.Dtype)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrInference, err)
	}
	for k := 0; k < out.Len() && k < len(values); k++ {
		v := values[k]
		if f.Noise > 0 {
			f.mu.Lock()
			v += f.rng.NormFloat64() * f.Noise
			f.mu.Unlock()
		}
		out.Set(k, v)
	}
	s.out = out
	return nil
}

func (s *fakeSession) Output(i int) (*tensor.Tensor, error) {
	if err := checkIndex("output", i, len(s.f.OutputSpecs)); err != nil {
		return nil, err
	}
	if i > 0 {
		return tensor.New(s.f.OutputSpecs[i].Shape, s.f.OutputSpecs[i].Dtype)
	}
	if s.out == nil {
		return nil, fmt.Errorf("%w: output read before invoke", model.ErrInference)
	}
	return s.out.Clone(), nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}
