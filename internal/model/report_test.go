package model

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDecimalNeverUsesExponent(t *testing.T) {
	b, err := json.Marshal(struct {
		V Decimal `json:"v"`
		W Decimal `json:"w"`
	}{V: 1e-9, W: 3e21})
	require.NoError(t, err)
	assert.Equal(t, `{"v":0.000000001,"w":3000000000000000000000}`, string(b))
	assert.NotContains(t, string(b), "e")

	y, err := yaml.Marshal(map[string]Decimal{"v": 1e-9, "i": 30})
	require.NoError(t, err)
	assert.Contains(t, string(y), "v: 0.000000001")
	assert.Contains(t, string(y), "i: 30")
	assert.NotContains(t, string(y), "!!")
}

func TestDecimalNonFiniteIsNull(t *testing.T) {
	b, err := json.Marshal([]Decimal{Decimal(math.Inf(1)), 2})
	require.NoError(t, err)
	assert.Equal(t, `[null,2]`, string(b))
}

func TestCheckEncodesErrorObject(t *testing.T) {
	c := Failed[LatencyStats](errors.New("boom"))
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"boom"}`, string(b))

	var back Check[LatencyStats]
	require.NoError(t, json.Unmarshal(b, &back))
	assert.False(t, back.OK())
	assert.Equal(t, "boom", back.Err)

	ok := Passed(LatencyStats{NumIterations: 3, FPS: 12.5})
	b, err = json.Marshal(ok)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &back))
	require.True(t, back.OK())
	assert.Equal(t, Decimal(12.5), back.Value.FPS)
}

func TestCheckYAMLRoundTrip(t *testing.T) {
	in := struct {
		A Check[MemoryTrace] `yaml:"a"`
		B Check[MemoryTrace] `yaml:"b"`
	}{
		A: Failed[MemoryTrace](ErrMemoryUnavailable),
		B: Passed(MemoryTrace{PeakMemoryMB: 41.5, MemorySamples: Decimals([]float64{40, 41.5})}),
	}
	b, err := yaml.Marshal(in)
	require.NoError(t, err)

	var out struct {
		A Check[MemoryTrace] `yaml:"a"`
		B Check[MemoryTrace] `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal(b, &out))
	assert.Equal(t, ErrMemoryUnavailable.Error(), out.A.Err)
	require.True(t, out.B.OK())
	assert.Equal(t, Decimal(41.5), out.B.Value.PeakMemoryMB)
	assert.Len(t, out.B.Value.MemorySamples, 2)
}

func TestVariationsPreserveOrder(t *testing.T) {
	cls := 3
	v := Variations{
		{Pattern: "zeros", Success: true, OutputShape: []int{1, 10}, OutputMean: DecimalPtr(0.1), TopClass: &cls, TopConfidence: DecimalPtr(0.9)},
		{Pattern: "ones", Success: false, Error: "bad input"},
		{Pattern: "max_values", Success: true},
	}

	b, err := json.Marshal(v)
	require.NoError(t, err)
	s := string(b)
	assert.Less(t, strings.Index(s, `"zeros"`), strings.Index(s, `"ones"`))
	assert.Less(t, strings.Index(s, `"ones"`), strings.Index(s, `"max_values"`))

	var back Variations
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back, 3)
	assert.Equal(t, "max_values", back[2].Pattern)
	assert.Equal(t, 3, *back[0].TopClass)
	assert.Equal(t, "bad input", back[1].Error)

	y, err := yaml.Marshal(v)
	require.NoError(t, err)
	var ybak Variations
	require.NoError(t, yaml.Unmarshal(y, &ybak))
	require.Len(t, ybak, 3)
	assert.Equal(t, []string{"zeros", "ones", "max_values"}, []string{ybak[0].Pattern, ybak[1].Pattern, ybak[2].Pattern})
	got, ok := ybak.Get("zeros")
	require.True(t, ok)
	assert.Equal(t, Decimal(0.9), *got.TopConfidence)
}

func TestModalityText(t *testing.T) {
	m, err := ParseModality("Audio")
	require.NoError(t, err)
	assert.Equal(t, Audio, m)

	b, err := json.Marshal(struct{ M Modality }{Image})
	require.NoError(t, err)
	assert.JSONEq(t, `{"M":"image"}`, string(b))

	_, err = ParseModality("video")
	assert.Error(t, err)
}
