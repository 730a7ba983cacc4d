package media

import (
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/daryltucker/model-harness/internal/model"
)

// Synthetic sample dimensions.
const (
	SampleImageSize    = 224
	SampleAudioSeconds = 3.0
	SampleAudioRate    = 22050
	sampleBitDepth     = 16
)

// WritePlantImages writes n plant-like PNGs (noise, boosted green channel and
// a scatter of filled discs) into dir and returns their paths.
func WritePlantImages(dir string, n int, rng *rand.Rand) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		img := imaging.New(SampleImageSize, SampleImageSize, color.Black)
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p] = uint8(rng.IntN(255))
			img.Pix[p+1] = uint8(min(rng.IntN(255)+50, 255))
			img.Pix[p+2] = uint8(rng.IntN(255))
		}
		for d := 0; d < 10; d++ {
			cx, cy := rng.IntN(SampleImageSize), rng.IntN(SampleImageSize)
			r := 5 + rng.IntN(15)
			c := color.NRGBA{
				R: uint8(rng.IntN(100)),
				G: uint8(100 + rng.IntN(155)),
				B: uint8(rng.IntN(255)),
				A: 255,
			}
			for y := cy - r; y <= cy+r; y++ {
				for x := cx - r; x <= cx+r; x++ {
					if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
						img.Set(x, y, c)
					}
				}
			}
		}

		path := filepath.Join(dir, fmt.Sprintf("sample_plant_%d.png", i))
		if err := imaging.Save(img, path); err != nil {
			return paths, fmt.Errorf("%w: %s: %v", model.ErrIO, path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Chirp synthesizes one bird-like call: a sine between 1 and 4 kHz with
// 10 Hz amplitude modulation and gaussian noise, peak-normalized to 1.
func Chirp(rng *rand.Rand, seconds float64, rate int) []float64 {
	n := int(float64(rate) * seconds)
	freq := 1000 + rng.Float64()*3000
	y := make([]float64, n)
	var peak float64
	for i := range y {
		t := float64(i) / float64(rate)
		v := math.Sin(2*math.Pi*freq*t) * (0.5 + 0.5*math.Sin(2*math.Pi*10*t))
		v += rng.NormFloat64() * 0.1
		y[i] = v
		peak = math.Max(peak, math.Abs(v))
	}
	if peak > 0 {
		for i := range y {
			y[i] /= peak
		}
	}
	return y
}

// WriteWAV stores mono samples in [-1,1] as 16-bit PCM.
func WriteWAV(path string, samples []float64, rate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	defer f.Close()

	scale := math.Exp2(sampleBitDepth-1) - 1
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(math.Round(math.Max(-1, math.Min(1, s)) * scale))
	}
	enc := wav.NewEncoder(f, rate, sampleBitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: sampleBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrIO, path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrIO, path, err)
	}
	return nil
}

// WriteChirps writes n synthetic bird-call WAVs into dir and returns their paths.
func WriteChirps(dir string, n int, rng *rand.Rand) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("sample_bird_%d.wav", i))
		if err := WriteWAV(path, Chirp(rng, SampleAudioSeconds, SampleAudioRate), SampleAudioRate); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
