/*
PURPOSE:
  Synthetic Input Generator. Produces test tensors for a tensor spec under
  named patterns, plus the modality-aware representative input used by the
  speed and memory checks.

REQUIREMENTS:
  User-specified:
  - Patterns zeros, ones, random_uniform, random_normal, max_values.
  - uint8 random_uniform draws integers in [0,256); max_values is 255 for uint8.
  - Reproducible only when the caller fixes a seed.
  - Audio-style generation rejects ranks other than 2/3/4 with ErrShape.

  Implementation-discovered:
  - Every value passes through tensor.Dtype.Cast, so dtype rules live in one place.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine (variation, stability, speed, memory checks)

ERROR HANDLING:
  - Unknown pattern or bad shape returns an error; nothing is silently defaulted.

IMPLEMENTATION RULES:
  - Never touch the global math/rand source; each Generator owns its *rand.Rand.

RELATED FILES:
  - internal/tensor/dtype.go

MAINTENANCE:
  - New patterns go into Patterns and generate().
*/

package synth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/tensor"
)

// Pattern names a synthetic construction rule.
type Pattern string

const (
	Zeros         Pattern = "zeros"
	Ones          Pattern = "ones"
	RandomUniform Pattern = "random_uniform"
	RandomNormal  Pattern = "random_normal"
	MaxValues     Pattern = "max_values"
)

// Patterns lists every pattern in probe order.
var Patterns = []Pattern{Zeros, Ones, RandomUniform, RandomNormal, MaxValues}

// Generator builds synthetic tensors.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator drawing from rng.
func New(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// NewSeeded returns a Generator whose output is fully determined by seed.
func NewSeeded(seed uint64) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed)))
}

// NewUnseeded returns a Generator seeded from the runtime's entropy.
func NewUnseeded() *Generator {
	return New(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// Generate builds a tensor of spec's shape and dtype following pattern.
func (g *Generator) Generate(spec tensor.Spec, pattern Pattern) (*tensor.Tensor, error) {
	t, err := tensor.New(spec.Shape, spec.Dtype)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrShape, err)
	}
	t.Pattern = string(pattern)

	switch pattern {
	case Zeros:
		// already zero
	case Ones:
		t.Fill(1)
	case MaxValues:
		t.Fill(spec.Dtype.Max())
	case RandomUniform:
		g.uniform(t)
	case RandomNormal:
		for i := 0; i < t.Len(); i++ {
			t.Set(i, clip(g.rng.NormFloat64(), 0, 1))
		}
	default:
		return nil, fmt.Errorf("unknown pattern %q", pattern)
	}
	return t, nil
}

// uniform fills t with [0,1) floats, or integers in [0,256) for uint8.
func (g *Generator) uniform(t *tensor.Tensor) {
	for i := 0; i < t.Len(); i++ {
		if t.Dtype == tensor.Uint8 {
			t.Set(i, float64(g.rng.IntN(256)))
		} else {
			t.Set(i, g.rng.Float64())
		}
	}
}

// Representative builds the input the speed and memory checks feed to a
// model of the given modality. Image inputs must be rank 4 (NHWC) and get
// uniform data (integers in [0,255) for uint8). Audio inputs must be rank
// 2, 3 or 4 and get unclipped standard-normal samples cast through the dtype.
func (g *Generator) Representative(spec tensor.Spec, modality model.Modality) (*tensor.Tensor, error) {
	switch modality {
	case model.Audio:
		return g.Audio(spec)
	default:
		if spec.Rank() != 4 {
			return nil, fmt.Errorf("%w: image input must be rank 4 (NHWC), got %v", model.ErrShape, spec.Shape)
		}
		return g.Fixed(spec)
	}
}

// Audio builds standard-normal audio-style data. Ranks other than 2, 3 and 4
// are rejected with ErrShape.
func (g *Generator) Audio(spec tensor.Spec) (*tensor.Tensor, error) {
	switch spec.Rank() {
	case 2, 3, 4:
	default:
		return nil, fmt.Errorf("%w: audio input must be rank 2, 3 or 4, got %v", model.ErrShape, spec.Shape)
	}
	t, err := tensor.New(spec.Shape, spec.Dtype)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrShape, err)
	}
	t.Pattern = "audio_normal"
	for i := 0; i < t.Len(); i++ {
		t.Set(i, g.rng.NormFloat64())
	}
	return t, nil
}

// Fixed builds the fixed-input tensor used by stability and speed checks:
// uniform [0,1) floats, or integers in [0,255) for uint8.
func (g *Generator) Fixed(spec tensor.Spec) (*tensor.Tensor, error) {
	t, err := tensor.New(spec.Shape, spec.Dtype)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrShape, err)
	}
	t.Pattern = "fixed_uniform"
	for i := 0; i < t.Len(); i++ {
		if t.Dtype == tensor.Uint8 {
			t.Set(i, float64(g.rng.IntN(255)))
		} else {
			t.Set(i, g.rng.Float64())
		}
	}
	return t, nil
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
