package tensor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDtypeCast(t *testing.T) {
	assert.Equal(t, 0.0, Uint8.Cast(-3))
	assert.Equal(t, 255.0, Uint8.Cast(300))
	assert.Equal(t, 12.0, Uint8.Cast(12.9))
	assert.Equal(t, 0.0, Uint8.Cast(0.99))
	assert.InDelta(t, 0.1, Float32.Cast(0.1), 1e-7)
}

func TestParseDtype(t *testing.T) {
	d, err := ParseDtype("UINT8")
	require.NoError(t, err)
	assert.Equal(t, Uint8, d)

	_, err = ParseDtype("float16")
	assert.Error(t, err)
}

func TestNewRejectsNonPositiveDims(t *testing.T) {
	_, err := New([]int{1, 0, 3}, Float32)
	assert.Error(t, err)

	x, err := New([]int{2, 3}, Uint8)
	require.NoError(t, err)
	assert.Equal(t, 6, x.Len())
	assert.Nil(t, x.F32)
}

func TestSetCastsThroughDtype(t *testing.T) {
	x, err := New([]int{3}, Uint8)
	require.NoError(t, err)
	x.Set(0, 256)
	x.Set(1, -1)
	x.Set(2, 7.5)
	assert.Equal(t, []uint8{255, 0, 7}, x.U8)
}

func TestCastTo(t *testing.T) {
	x, err := FromFloat32([]int{1, 3}, []float32{0.5, 10.2, 300})
	require.NoError(t, err)
	x.Pattern = "ones"

	y, err := x.CastTo(Uint8)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 10, 255}, y.U8)
	assert.Equal(t, "ones", y.Pattern)

	same, err := x.CastTo(Float32)
	require.NoError(t, err)
	assert.Same(t, x, same)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4})
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, 1.118033988749895, s.Std, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestFirstRowAndArgMax(t *testing.T) {
	x, err := FromFloat32([]int{2, 3}, []float32{0.1, 0.7, 0.2, 0.9, 0.05, 0.05})
	require.NoError(t, err)

	row := x.FirstRow()
	require.Len(t, row, 3)
	idx, val := ArgMax(row)
	assert.Equal(t, 1, idx)
	assert.InDelta(t, 0.7, val, 1e-6)

	idx, _ = ArgMax(nil)
	assert.Equal(t, -1, idx)
}

func TestSpecJSONUsesDtypeNames(t *testing.T) {
	b, err := json.Marshal(Spec{Name: "input", Shape: []int{1, 10}, Dtype: Uint8})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"input","shape":[1,10],"dtype":"uint8"}`, string(b))

	var back Spec
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, Uint8, back.Dtype)
	assert.Equal(t, 10, back.NumElements())
}
