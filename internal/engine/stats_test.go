package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatencyOrdering(t *testing.T) {
	times := []time.Duration{
		3 * time.Millisecond, 1 * time.Millisecond, 5 * time.Millisecond,
		2 * time.Millisecond, 4 * time.Millisecond, 40 * time.Millisecond,
	}
	s := Latency(times, 2)

	assert.Equal(t, 6, s.NumIterations)
	assert.Equal(t, 2, s.WarmupIterations)
	assert.LessOrEqual(t, float64(s.MinTimeMS), float64(s.MeanTimeMS))
	assert.LessOrEqual(t, float64(s.MeanTimeMS), float64(s.MaxTimeMS))
	assert.LessOrEqual(t, float64(s.Percentile95MS), float64(s.Percentile99MS))
	assert.InDelta(t, 1000/float64(s.MeanTimeMS), float64(s.FPS), 1e-9)
	assert.InDelta(t, 3.5, float64(s.MedianTimeMS), 1e-9)
	assert.InDelta(t, 1.0, float64(s.MinTimeMS), 1e-9)
	assert.InDelta(t, 40.0, float64(s.MaxTimeMS), 1e-9)
}

func TestPercentileInterpolates(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 3.0, percentile(xs, 50), 1e-12)
	assert.InDelta(t, 4.8, percentile(xs, 95), 1e-12)
	assert.InDelta(t, 4.96, percentile(xs, 99), 1e-12)
	assert.InDelta(t, 7.0, percentile([]float64{7}, 99), 1e-12)
}

func TestAllClose(t *testing.T) {
	a := []float64{1, 0, -2}
	assert.True(t, allClose(a, []float64{1 + 1e-8, 5e-8, -2}, 1e-7, 1e-7))
	assert.False(t, allClose(a, []float64{1 + 1e-6, 0, -2}, 1e-7, 1e-7))
	assert.False(t, allClose(a, a[:2], 1e-7, 1e-7))
}

func TestElementVariance(t *testing.T) {
	v := elementVariance([][]float64{{1, 0.3}, {3, 0.3}})
	assert.InDelta(t, 1.0, v[0], 1e-12)
	assert.Equal(t, 0.0, v[1])
}
