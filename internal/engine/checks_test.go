package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/model-harness/internal/memprobe"
	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/synth"
	"github.com/daryltucker/model-harness/internal/tensor"
)

func TestBenchmarkImageClassifier(t *testing.T) {
	f := classifier([]int{1, 224, 224, 3}, tensor.Float32, 10)
	f.Delay = 50 * time.Microsecond
	s := session(t, f)

	input, err := synth.NewSeeded(1).Representative(f.InputSpecs[0], model.Image)
	require.NoError(t, err)

	stats, err := Benchmark(s, input, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, 110, f.Invokes())
	assert.Equal(t, 100, stats.NumIterations)
	assert.Greater(t, float64(stats.MeanTimeMS), 0.0)
	assert.InDelta(t, 1000/float64(stats.MeanTimeMS), float64(stats.FPS), 1e-6)
	assert.LessOrEqual(t, float64(stats.Percentile95MS), float64(stats.Percentile99MS))
}

func TestBenchmarkAbortsOnFailure(t *testing.T) {
	f := classifier([]int{1, 4}, tensor.Float32, 3)
	f.FailPattern = "fixed_uniform"
	s := session(t, f)
	input, err := synth.NewSeeded(1).Fixed(f.InputSpecs[0])
	require.NoError(t, err)

	_, err = Benchmark(s, input, 10, 2)
	assert.True(t, errors.Is(err, model.ErrInference))
	assert.Equal(t, 1, f.Invokes())

	_, err = Benchmark(s, input, 0, 0)
	assert.Error(t, err)
}

func TestStabilityDeterministic(t *testing.T) {
	f := classifier([]int{1, 8}, tensor.Float32, 10)
	s := session(t, f)

	rep, err := CheckStability(s, f.InputSpecs[0], 5, 42)
	require.NoError(t, err)
	assert.Equal(t, 5, f.Invokes())
	assert.True(t, rep.IsDeterministic)
	assert.Equal(t, model.Decimal(0), rep.MaxVariance)
	assert.Equal(t, model.Decimal(0), rep.MeanVariance)
	assert.Len(t, rep.ElementVariance, 10)
	assert.Equal(t, uint64(42), rep.Seed)
	assert.Greater(t, float64(rep.CoefficientOfVariation), 0.0)
}

func TestStabilityDetectsNoise(t *testing.T) {
	f := classifier([]int{1, 8}, tensor.Float32, 10)
	f.Noise = 1e-3
	s := session(t, f)

	rep, err := CheckStability(s, f.InputSpecs[0], 5, 42)
	require.NoError(t, err)
	assert.False(t, rep.IsDeterministic)
	assert.Greater(t, float64(rep.MaxVariance), 0.0)
	assert.LessOrEqual(t, float64(rep.MeanVariance), float64(rep.MaxVariance))
}

func TestStabilityUsesSameInputEveryRun(t *testing.T) {
	var seen [][]float64
	f := classifier([]int{1, 4}, tensor.Float32, 2)
	f.Compute = func(in *tensor.Tensor) []float64 {
		seen = append(seen, in.Float64s())
		return []float64{0, 1}
	}
	s := session(t, f)

	_, err := CheckStability(s, f.InputSpecs[0], 3, 7)
	require.NoError(t, err)
	require.Len(t, seen, 3)
	assert.Equal(t, seen[0], seen[1])
	assert.Equal(t, seen[0], seen[2])
}

func TestVariationFailureIsIsolated(t *testing.T) {
	f := classifier([]int{1, 8, 8, 3}, tensor.Float32, 10)
	f.FailPattern = string(synth.Ones)
	s := session(t, f)

	out := ProbeVariations(s, f.InputSpecs[0], synth.NewSeeded(1))
	require.Len(t, out, len(synth.Patterns))
	for i, p := range synth.Patterns {
		assert.Equal(t, string(p), out[i].Pattern)
	}

	ones, ok := out.Get("ones")
	require.True(t, ok)
	assert.False(t, ones.Success)
	assert.Contains(t, ones.Error, "scripted failure")
	assert.Nil(t, ones.TopClass)

	for _, p := range []string{"zeros", "random_uniform", "random_normal", "max_values"} {
		o, ok := out.Get(p)
		require.True(t, ok, p)
		assert.True(t, o.Success, p)
		assert.Equal(t, []int{1, 10}, o.OutputShape, p)
		require.NotNil(t, o.TopClass, p)
		assert.Equal(t, 9, *o.TopClass, p)
	}

	zeros, _ := out.Get("zeros")
	assert.InDelta(t, 1.0, float64(*zeros.TopConfidence), 1e-6)
}

func TestVariationRankOneHasNoTopClass(t *testing.T) {
	f := classifier([]int{1, 4}, tensor.Float32, 3)
	f.OutputSpecs[0].Shape = []int{3}
	s := session(t, f)

	out := ProbeVariations(s, f.InputSpecs[0], synth.NewSeeded(1))
	zeros, ok := out.Get("zeros")
	require.True(t, ok)
	assert.True(t, zeros.Success)
	assert.Nil(t, zeros.TopClass)
	assert.Nil(t, zeros.TopConfidence)
}

func TestProfileMemory(t *testing.T) {
	f := classifier([]int{1, 4}, tensor.Float32, 3)
	s := session(t, f)
	input, err := synth.NewSeeded(1).Fixed(f.InputSpecs[0])
	require.NoError(t, err)

	reading := 100.0
	probe := memprobe.Func(func() (float64, error) {
		v := reading
		reading++
		return v, nil
	})

	trace, err := ProfileMemory(s, input, probe, 50, 10)
	require.NoError(t, err)
	assert.Equal(t, 50, f.Invokes())
	assert.Equal(t, model.Decimal(100), trace.BaselineMemoryMB)
	assert.Equal(t, []model.Decimal{101, 102, 103, 104, 105}, trace.MemorySamples)
	assert.Equal(t, model.Decimal(105), trace.PeakMemoryMB)
	assert.Equal(t, model.Decimal(5), trace.MemoryIncreaseMB)
}

func TestProfileMemoryUnavailable(t *testing.T) {
	f := classifier([]int{1, 4}, tensor.Float32, 3)
	s := session(t, f)
	input, err := synth.NewSeeded(1).Fixed(f.InputSpecs[0])
	require.NoError(t, err)

	_, err = ProfileMemory(s, input, memprobe.Noop{}, 50, 10)
	assert.True(t, errors.Is(err, model.ErrMemoryUnavailable))
	assert.Equal(t, 0, f.Invokes())

	_, err = ProfileMemory(s, input, memprobe.Noop{}, 50, 0)
	assert.Error(t, err)
}
