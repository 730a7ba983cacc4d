package engine

import (
	"math"
	"slices"
	"time"

	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/tensor"
)

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Latency summarizes timed iterations. times must be non-empty.
func Latency(times []time.Duration, warmup int) model.LatencyStats {
	ms := make([]float64, len(times))
	for i, d := range times {
		ms[i] = durationMS(d)
	}
	s := tensor.Summarize(ms)
	slices.Sort(ms)

	var fps float64
	if s.Mean > 0 {
		fps = 1000 / s.Mean
	}
	return model.LatencyStats{
		NumIterations:    len(times),
		WarmupIterations: warmup,
		MeanTimeMS:       model.Decimal(s.Mean),
		StdTimeMS:        model.Decimal(s.Std),
		MinTimeMS:        model.Decimal(s.Min),
		MaxTimeMS:        model.Decimal(s.Max),
		MedianTimeMS:     model.Decimal(percentile(ms, 50)),
		FPS:              model.Decimal(fps),
		Percentile95MS:   model.Decimal(percentile(ms, 95)),
		Percentile99MS:   model.Decimal(percentile(ms, 99)),
	}
}

// allClose applies |a-b| <= atol + rtol*|b| elementwise; NaN never matches.
func allClose(a, b []float64, rtol, atol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			return false
		}
		if a[i] == b[i] {
			continue
		}
		if math.Abs(a[i]-b[i]) > atol+rtol*math.Abs(b[i]) {
			return false
		}
	}
	return true
}

// elementVariance returns the population variance of each column of runs.
func elementVariance(runs [][]float64) []float64 {
	if len(runs) == 0 {
		return nil
	}
	n := len(runs[0])
	out := make([]float64, n)
	col := make([]float64, len(runs))
	for j := 0; j < n; j++ {
		for k, r := range runs {
			col[k] = r[j]
		}
		s := tensor.Summarize(col)
		if s.Min == s.Max {
			continue
		}
		out[j] = s.Std * s.Std
	}
	return out
}
