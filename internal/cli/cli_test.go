package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/model-harness/internal/model"
)

func TestInferModality(t *testing.T) {
	kw := []string{"bird", "audio"}
	assert.Equal(t, model.Audio, InferModality("assets/models/bird_classifier.tflite", kw))
	assert.Equal(t, model.Audio, InferModality("Models/AUDIO_net.onnx", kw))
	assert.Equal(t, model.Image, InferModality("assets/models/plant_classifier.tflite", kw))
	// Only the file name counts, not the directory.
	assert.Equal(t, model.Image, InferModality("bird_models/plant.onnx", kw))
	assert.Equal(t, model.Image, InferModality("bird.onnx", nil))
}

func TestResolveModality(t *testing.T) {
	m, err := resolveModality("audio", "plant.onnx", []string{"bird"})
	require.NoError(t, err)
	assert.Equal(t, model.Audio, m)

	m, err = resolveModality("", "bird.onnx", []string{"bird"})
	require.NoError(t, err)
	assert.Equal(t, model.Audio, m)

	_, err = resolveModality("video", "bird.onnx", nil)
	assert.Error(t, err)
}

func TestInspectUnknownArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.bin")
	require.NoError(t, os.WriteFile(path, []byte("just some bytes"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"inspect", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "format: unknown")
	assert.Contains(t, out.String(), "size_bytes: 15")
}
