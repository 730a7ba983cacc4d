package media

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/model-harness/internal/model"
)

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	in := []float64{0, 0.5, -0.5, 1, -1, 0.25}
	require.NoError(t, WriteWAV(path, in, 8000))

	out, err := Files{}.DecodeAudio(path, 8000)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.InDelta(t, in[i], out[i], 1e-4, "sample %d", i)
	}
}

func TestDecodeAudioResamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chirp.wav")
	rng := rand.New(rand.NewPCG(1, 2))
	require.NoError(t, WriteWAV(path, Chirp(rng, 0.5, 22050), 22050))

	out, err := Files{}.DecodeAudio(path, 11025)
	require.NoError(t, err)
	assert.InDelta(t, 5512, len(out), 1)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	require.NoError(t, os.WriteFile(path, []byte("not audio at all"), 0o644))

	_, err := Files{}.DecodeAudio(path, 22050)
	assert.True(t, errors.Is(err, model.ErrDecode))

	_, err = Files{}.DecodeImage(path)
	assert.True(t, errors.Is(err, model.ErrDecode))
}

func TestResample(t *testing.T) {
	y := []float64{0, 1, 2, 3}
	assert.Equal(t, y, Resample(y, 100, 100))
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3}, Resample(y, 100, 200))
	assert.Equal(t, []float64{0, 2}, Resample(y, 200, 100))
}

func TestChirpIsPeakNormalized(t *testing.T) {
	y := Chirp(rand.New(rand.NewPCG(3, 4)), 0.2, 22050)
	assert.Len(t, y, 4410)
	var peak float64
	for _, v := range y {
		peak = max(peak, v, -v)
	}
	assert.InDelta(t, 1.0, peak, 1e-12)
}

func TestSampleWritersAndDiscovery(t *testing.T) {
	dir := t.TempDir()
	rng := rand.New(rand.NewPCG(5, 6))

	images, err := WritePlantImages(filepath.Join(dir, "flora"), 2, rng)
	require.NoError(t, err)
	require.Len(t, images, 2)

	img, err := Files{}.DecodeImage(images[0])
	require.NoError(t, err)
	assert.Equal(t, SampleImageSize, img.Bounds().Dx())
	assert.Equal(t, SampleImageSize, img.Bounds().Dy())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "flora", "notes.txt"), nil, 0o644))
	found, err := SampleFiles(filepath.Join(dir, "flora"), model.Image)
	require.NoError(t, err)
	assert.Equal(t, images, found)

	clips, err := WriteChirps(filepath.Join(dir, "birds"), 1, rng)
	require.NoError(t, err)
	found, err = SampleFiles(filepath.Join(dir, "birds"), model.Audio)
	require.NoError(t, err)
	assert.Equal(t, clips, found)

	wave, err := Files{}.DecodeAudio(clips[0], SampleAudioRate)
	require.NoError(t, err)
	assert.Len(t, wave, int(SampleAudioSeconds*SampleAudioRate))
}

func TestSampleFilesMissingDir(t *testing.T) {
	files, err := SampleFiles(filepath.Join(t.TempDir(), "absent"), model.Image)
	require.NoError(t, err)
	assert.Empty(t, files)
}
