package preprocess

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// powerSpectrogram returns |STFT|^2 with shape [frames][nFFT/2+1].
// Frames are centered: the signal is zero-padded by nFFT/2 on both sides
// and windowed with a periodic Hann window.
func powerSpectrogram(y []float64, nFFT, hop int) [][]float64 {
	pad := nFFT / 2
	padded := make([]float64, len(y)+2*pad)
	copy(padded[pad:], y)

	window := make([]float64, nFFT)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(nFFT))
	}

	nFrames := 1 + (len(padded)-nFFT)/hop
	bins := nFFT/2 + 1
	spec := make([][]float64, nFrames)
	frame := make([]float64, nFFT)
	for f := 0; f < nFrames; f++ {
		start := f * hop
		for i := range frame {
			frame[i] = padded[start+i] * window[i]
		}
		coeffs := fft.FFTReal(frame)
		row := make([]float64, bins)
		for k := 0; k < bins; k++ {
			a := cmplx.Abs(coeffs[k])
			row[k] = a * a
		}
		spec[f] = row
	}
	return spec
}

const (
	melFSp       = 200.0 / 3
	melMinLogHz  = 1000.0
	melMinLogMel = melMinLogHz / melFSp
)

var melLogStep = math.Log(6.4) / 27

// hzToMel uses the Slaney scale: linear below 1 kHz, logarithmic above.
func hzToMel(f float64) float64 {
	if f < melMinLogHz {
		return f / melFSp
	}
	return melMinLogMel + math.Log(f/melMinLogHz)/melLogStep
}

func melToHz(m float64) float64 {
	if m < melMinLogMel {
		return m * melFSp
	}
	return melMinLogHz * math.Exp(melLogStep*(m-melMinLogMel))
}

// melFilterbank builds Slaney-normalised triangular filters covering
// 0 Hz to sr/2, shape [nMels][nFFT/2+1].
func melFilterbank(sr, nFFT, nMels int) [][]float64 {
	bins := nFFT/2 + 1
	fftFreqs := make([]float64, bins)
	for k := range fftFreqs {
		fftFreqs[k] = float64(k) * float64(sr) / float64(nFFT)
	}

	lo, hi := hzToMel(0), hzToMel(float64(sr)/2)
	melF := make([]float64, nMels+2)
	for i := range melF {
		melF[i] = melToHz(lo + (hi-lo)*float64(i)/float64(nMels+1))
	}

	weights := make([][]float64, nMels)
	for i := 0; i < nMels; i++ {
		row := make([]float64, bins)
		lowerW := melF[i+1] - melF[i]
		upperW := melF[i+2] - melF[i+1]
		enorm := 2 / (melF[i+2] - melF[i])
		for k, f := range fftFreqs {
			lower := (f - melF[i]) / lowerW
			upper := (melF[i+2] - f) / upperW
			row[k] = math.Max(0, math.Min(lower, upper)) * enorm
		}
		weights[i] = row
	}
	return weights
}

// melSpectrogram returns the mel power spectrogram, shape [nMels][frames].
func melSpectrogram(y []float64, sr int, opts AudioOptions, nMels int) [][]float64 {
	power := powerSpectrogram(y, opts.NFFT, opts.HopLength)
	bank := melFilterbank(sr, opts.NFFT, nMels)

	mel := make([][]float64, nMels)
	for m := range mel {
		mel[m] = make([]float64, len(power))
		w := bank[m]
		for t, frame := range power {
			var sum float64
			for k, p := range frame {
				if w[k] != 0 {
					sum += w[k] * p
				}
			}
			mel[m][t] = sum
		}
	}
	return mel
}

// powerToDB converts power to decibels relative to 1.0, floored at amin and
// clamped to topDB below the peak.
func powerToDB(s [][]float64) [][]float64 {
	const amin, topDB = 1e-10, 80.0
	maxDB := math.Inf(-1)
	out := make([][]float64, len(s))
	for i, row := range s {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			db := 10 * math.Log10(math.Max(amin, v))
			out[i][j] = db
			maxDB = math.Max(maxDB, db)
		}
	}
	for _, row := range out {
		for j := range row {
			row[j] = math.Max(row[j], maxDB-topDB)
		}
	}
	return out
}

// mfcc returns the first nMFCC orthonormal DCT-II coefficients of the
// log-mel spectrogram, shape [nMFCC][frames].
func mfcc(y []float64, sr int, opts AudioOptions, nMFCC int) [][]float64 {
	logMel := powerToDB(melSpectrogram(y, sr, opts, opts.NMels))
	n := len(logMel)
	frames := 0
	if n > 0 {
		frames = len(logMel[0])
	}

	out := make([][]float64, nMFCC)
	for k := 0; k < nMFCC; k++ {
		scale := math.Sqrt(2 / float64(n))
		if k == 0 {
			scale = math.Sqrt(1 / float64(n))
		}
		out[k] = make([]float64, frames)
		for t := 0; t < frames; t++ {
			var sum float64
			for m := 0; m < n; m++ {
				sum += logMel[m][t] * math.Cos(math.Pi*float64(k)*(2*float64(m)+1)/(2*float64(n)))
			}
			out[k][t] = scale * sum
		}
	}
	return out
}
