/*
PURPOSE:
  Audio half of the Real-Data Preprocessor. Turns a decoded mono waveform
  into a model-ready float32 tensor matching a target shape.

REQUIREMENTS:
  User-specified:
  - Rank 2 target [1, F]: F cepstral coefficients averaged over time.
  - Rank 3 target [1, T, M]: M-band mel spectrogram, zero-padded or truncated
    to exactly T frames, laid out time-major.
  - Any other rank fails with ErrUnsupportedShape.
  - Output is float32 with a leading batch dimension of 1.

  Implementation-discovered:
  - STFT defaults follow the common audio-ML convention: 2048-point FFT,
    hop 512, centered frames, Hann window, 128 mel bands for MFCC.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (accuracy check)
  - Input comes from: internal/media Decoder

ERROR HANDLING:
  - Shape problems wrap model.ErrUnsupportedShape.

IMPLEMENTATION RULES:
  - Deterministic: no randomness, no global state.

RELATED FILES:
  - internal/preprocess/features.go

MAINTENANCE:
  - Keep the pad/truncate rule exact; models depend on the time dimension.
*/

package preprocess

import (
	"fmt"

	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/tensor"
)

// DefaultSampleRate is the rate waveforms are decoded at unless configured.
const DefaultSampleRate = 22050

// AudioOptions tunes feature extraction.
type AudioOptions struct {
	SampleRate int
	NFFT       int
	HopLength  int
	NMels      int // mel bands feeding the MFCC DCT
}

// DefaultAudioOptions returns the standard extraction settings.
func DefaultAudioOptions() AudioOptions {
	return AudioOptions{
		SampleRate: DefaultSampleRate,
		NFFT:       2048,
		HopLength:  512,
		NMels:      128,
	}
}

// Audio converts wave (mono, at opts.SampleRate) into a tensor for target.
func Audio(wave []float64, target []int, opts AudioOptions) (*tensor.Tensor, error) {
	if opts.NFFT <= 0 || opts.HopLength <= 0 || opts.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid audio options %+v", opts)
	}
	for _, d := range target {
		if d <= 0 {
			return nil, fmt.Errorf("%w: audio target %v has a non-positive dimension", model.ErrUnsupportedShape, target)
		}
	}

	switch len(target) {
	case 2:
		nMFCC := target[1]
		if nMFCC > opts.NMels {
			return nil, fmt.Errorf("%w: %d cepstral coefficients exceed %d mel bands", model.ErrUnsupportedShape, nMFCC, opts.NMels)
		}
		coeffs := mfcc(wave, opts.SampleRate, opts, nMFCC)
		features := make([]float32, nMFCC)
		for k, row := range coeffs {
			var sum float64
			for _, v := range row {
				sum += v
			}
			if len(row) > 0 {
				features[k] = float32(sum / float64(len(row)))
			}
		}
		return tensor.FromFloat32([]int{1, nMFCC}, features)

	case 3:
		steps, nMels := target[1], target[2]
		mel := melSpectrogram(wave, opts.SampleRate, opts, nMels)
		data := make([]float32, steps*nMels)
		for m, row := range mel {
			for t := 0; t < steps && t < len(row); t++ {
				data[t*nMels+m] = float32(row[t])
			}
		}
		return tensor.FromFloat32([]int{1, steps, nMels}, data)

	default:
		return nil, fmt.Errorf("%w: audio target must be rank 2 or 3, got %v", model.ErrUnsupportedShape, target)
	}
}
