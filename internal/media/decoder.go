/*
PURPOSE:
  Media Decoder. Reads real sample files from disk: still images through
  imaging and PCM WAV audio through go-audio, returning data the
  preprocess package can shape for a model.

REQUIREMENTS:
  User-specified:
  - Images: .jpg, .jpeg, .png, decoded to RGB.
  - Audio: .wav, mixed down to mono floats in [-1,1] at a requested rate.

  Implementation-discovered:
  - 8-bit WAV samples are unsigned and centered on 128; wider depths are signed.
  - EXIF orientation is applied so phone photos are not fed sideways.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine (accuracy check)
  - Sample discovery: SampleFiles

ERROR HANDLING:
  - Every decode failure wraps model.ErrDecode with the file path.

IMPLEMENTATION RULES:
  - Decoder is an interface so tests can swap in in-memory media.

RELATED FILES:
  - internal/media/samples.go
  - internal/preprocess/image.go
  - internal/preprocess/audio.go

MAINTENANCE:
  - New sample formats need an extension entry in SampleFiles.
*/

package media

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-audio/wav"

	"github.com/daryltucker/model-harness/internal/model"
)

// Decoder turns media files into raw samples.
type Decoder interface {
	DecodeImage(path string) (image.Image, error)
	DecodeAudio(path string, sampleRate int) ([]float64, error)
}

// Files decodes media straight from the local filesystem.
type Files struct{}

// DecodeImage opens path and applies its EXIF orientation.
func (Files) DecodeImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrDecode, path, err)
	}
	return img, nil
}

// DecodeAudio reads a PCM WAV file, averages its channels to mono and
// resamples linearly to sampleRate.
func (Files) DecodeAudio(path string, sampleRate int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrDecode, path, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: %s: not a valid wav file", model.ErrDecode, path)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrDecode, path, err)
	}

	chans := int(d.NumChans)
	depth := int(d.BitDepth)
	frames := len(buf.Data) / chans
	if frames == 0 {
		return nil, fmt.Errorf("%w: %s: no audio frames", model.ErrDecode, path)
	}

	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < chans; c++ {
			sum += normalizeSample(buf.Data[i*chans+c], depth)
		}
		mono[i] = sum / float64(chans)
	}

	if sampleRate <= 0 {
		return mono, nil
	}
	return Resample(mono, int(d.SampleRate), sampleRate), nil
}

func normalizeSample(v, depth int) float64 {
	if depth == 8 {
		return float64(v-128) / 128
	}
	return float64(v) / math.Exp2(float64(depth-1))
}

// Resample converts y from rate `from` to rate `to` by linear interpolation.
func Resample(y []float64, from, to int) []float64 {
	if from == to || from <= 0 || to <= 0 || len(y) == 0 {
		return y
	}
	n := int(math.Round(float64(len(y)) * float64(to) / float64(from)))
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	step := float64(from) / float64(to)
	last := len(y) - 1
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			out[i] = y[last]
			continue
		}
		frac := pos - float64(j)
		out[i] = y[j]*(1-frac) + y[j+1]*frac
	}
	return out
}

// Extensions returns the sample file extensions read for a modality.
func Extensions(m model.Modality) []string {
	if m == model.Audio {
		return []string{".wav"}
	}
	return []string{".jpg", ".jpeg", ".png"}
}

// SampleFiles lists the sample files for m directly inside dir, sorted by
// name. A missing directory yields no files and no error.
func SampleFiles(dir string, m model.Modality) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading samples dir %s: %v", model.ErrIO, dir, err)
	}

	exts := Extensions(m)
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(exts, strings.ToLower(filepath.Ext(e.Name()))) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
