package synth

import (
	"errors"
	"testing"

	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var specs = []tensor.Spec{
	{Shape: []int{1, 8, 8, 3}, Dtype: tensor.Float32},
	{Shape: []int{1, 8, 8, 3}, Dtype: tensor.Uint8},
	{Shape: []int{1, 40}, Dtype: tensor.Float32},
	{Shape: []int{2, 5, 4}, Dtype: tensor.Uint8},
}

func TestZerosAndOnes(t *testing.T) {
	g := NewSeeded(1)
	for _, spec := range specs {
		z, err := g.Generate(spec, Zeros)
		require.NoError(t, err)
		o, err := g.Generate(spec, Ones)
		require.NoError(t, err)

		assert.Equal(t, spec.Shape, z.Shape)
		assert.Equal(t, spec.Dtype, o.Dtype)
		assert.Equal(t, "zeros", z.Pattern)
		for i := 0; i < z.Len(); i++ {
			require.Equal(t, 0.0, z.At(i), "zeros %v at %d", spec, i)
			require.Equal(t, 1.0, o.At(i), "ones %v at %d", spec, i)
		}
	}
}

func TestMaxValues(t *testing.T) {
	g := NewSeeded(1)
	u, err := g.Generate(specs[1], MaxValues)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), u.U8[0])

	f, err := g.Generate(specs[0], MaxValues)
	require.NoError(t, err)
	assert.Equal(t, float32(1), f.F32[len(f.F32)-1])
}

func TestRandomRanges(t *testing.T) {
	g := NewSeeded(7)

	f, err := g.Generate(specs[0], RandomUniform)
	require.NoError(t, err)
	s := f.Summarize()
	assert.GreaterOrEqual(t, s.Min, 0.0)
	assert.Less(t, s.Max, 1.0)

	u, err := g.Generate(tensor.Spec{Shape: []int{1, 4096}, Dtype: tensor.Uint8}, RandomUniform)
	require.NoError(t, err)
	assert.Greater(t, u.Summarize().Max, 1.0, "uint8 uniform draws integers, not [0,1) floats")

	n, err := g.Generate(specs[2], RandomNormal)
	require.NoError(t, err)
	s = n.Summarize()
	assert.GreaterOrEqual(t, s.Min, 0.0)
	assert.LessOrEqual(t, s.Max, 1.0)
}

func TestSeededIsReproducible(t *testing.T) {
	a, err := NewSeeded(42).Generate(specs[0], RandomUniform)
	require.NoError(t, err)
	b, err := NewSeeded(42).Generate(specs[0], RandomUniform)
	require.NoError(t, err)
	assert.Equal(t, a.F32, b.F32)

	c, err := NewSeeded(43).Generate(specs[0], RandomUniform)
	require.NoError(t, err)
	assert.NotEqual(t, a.F32, c.F32)
}

func TestUnknownPattern(t *testing.T) {
	_, err := NewSeeded(1).Generate(specs[0], Pattern("stripes"))
	assert.Error(t, err)
}

func TestAudioRejectsUnsupportedRank(t *testing.T) {
	g := NewSeeded(1)
	_, err := g.Audio(tensor.Spec{Shape: []int{16000}, Dtype: tensor.Float32})
	assert.True(t, errors.Is(err, model.ErrShape))

	_, err = g.Audio(tensor.Spec{Shape: []int{1, 2, 3, 4, 5}, Dtype: tensor.Float32})
	assert.True(t, errors.Is(err, model.ErrShape))

	a, err := g.Audio(tensor.Spec{Shape: []int{1, 32, 40}, Dtype: tensor.Float32})
	require.NoError(t, err)
	assert.Equal(t, 32*40, a.Len())
}

func TestRepresentative(t *testing.T) {
	g := NewSeeded(1)
	_, err := g.Representative(tensor.Spec{Shape: []int{1, 40}, Dtype: tensor.Float32}, model.Image)
	assert.True(t, errors.Is(err, model.ErrShape))

	x, err := g.Representative(specs[1], model.Image)
	require.NoError(t, err)
	assert.Less(t, x.Summarize().Max, 255.0)

	a, err := g.Representative(specs[2], model.Audio)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 40}, a.Shape)
}

func TestGenerateRejectsBadShape(t *testing.T) {
	_, err := NewSeeded(1).Generate(tensor.Spec{Shape: []int{1, -1}, Dtype: tensor.Float32}, Zeros)
	assert.True(t, errors.Is(err, model.ErrShape))
}
