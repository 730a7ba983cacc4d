package runtime

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/model-harness/internal/artifact"
	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/tensor"
)

func TestSelectByExtension(t *testing.T) {
	rt, err := Select("models/bird.tflite", Options{})
	require.NoError(t, err)
	assert.Equal(t, "tflite", rt.Name())

	rt, err = Select("models/plant.ONNX", Options{})
	require.NoError(t, err)
	assert.Equal(t, "onnxruntime", rt.Name())
}

func TestSelectRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.bin")
	require.NoError(t, os.WriteFile(path, []byte("random bytes"), 0o644))

	assert.Equal(t, artifact.Unknown, FormatOf(path))
	_, err := Select(path, Options{})
	assert.True(t, errors.Is(err, model.ErrLoad))
}

func TestPinDims(t *testing.T) {
	assert.Equal(t, []int{1, 224, 224, 3}, pinDims([]int{-1, 224, 224, 3}))
}

func fakeModel() *Fake {
	return &Fake{
		InputSpecs:  []tensor.Spec{{Name: "in", Shape: []int{1, 4}, Dtype: tensor.Float32}},
		OutputSpecs: []tensor.Spec{{Name: "out", Shape: []int{1, 3}, Dtype: tensor.Float32}},
	}
}

func TestFakeDeterministicOutput(t *testing.T) {
	f := fakeModel()
	s, err := f.Load("m.tflite")
	require.NoError(t, err)
	defer s.Close()

	in, err := tensor.FromFloat32([]int{1, 4}, []float32{1, 1, 1, 1})
	require.NoError(t, err)
	require.NoError(t, s.SetInput(0, in))
	require.NoError(t, s.Invoke())
	out, err := s.Output(0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, out.Shape)
	assert.InDeltaSlice(t, []float64{2.0 / 3, 4.0 / 3, 2}, out.Float64s(), 1e-6)

	require.NoError(t, s.Invoke())
	again, err := s.Output(0)
	require.NoError(t, err)
	assert.Equal(t, out.F32, again.F32)
	assert.Equal(t, 2, f.Invokes())
	assert.Equal(t, 1, f.Loads())
}

func TestFakeScriptedFailures(t *testing.T) {
	f := fakeModel()
	f.FailPattern = "ones"
	s, err := f.Load("m.tflite")
	require.NoError(t, err)

	_, err = s.Output(0)
	assert.True(t, errors.Is(err, model.ErrInference))
	assert.True(t, errors.Is(s.Invoke(), model.ErrInference), "input not set")

	in, err := tensor.New([]int{1, 4}, tensor.Float32)
	require.NoError(t, err)
	in.Pattern = "ones"
	require.NoError(t, s.SetInput(0, in))
	assert.True(t, errors.Is(s.Invoke(), model.ErrInference))
	assert.Error(t, s.SetInput(3, in))

	f.LoadErr = errors.New("corrupt")
	_, err = f.Load("m.tflite")
	assert.True(t, errors.Is(err, model.ErrLoad))
}
