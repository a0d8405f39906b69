// ABOUTME: Dominant-frequency extraction from a magnitude spectrum
// ABOUTME: Pure forward scan with first-maximum tie-breaking
package analysis

import (
	"errors"
	"fmt"
)

// MaxMagnitude is the full-scale value of a byte magnitude spectrum
const MaxMagnitude = 255

var (
	// ErrEmptySpectrum is returned for a spectrum with no bins
	ErrEmptySpectrum = errors.New("empty spectrum")

	// ErrInvalidFFTSize is returned for a non-positive FFT size or sample rate
	ErrInvalidFFTSize = errors.New("invalid fft size")
)

// Result describes the dominant bin of one analysis frame
type Result struct {
	Index       int     // bin index of the first maximum
	FrequencyHz float64 // Index * sampleRate / fftSize
	Magnitude   float64 // max magnitude / 255, in [0, 1]
}

// Analyze returns the loudest bin of spectrum. Ties resolve to the lowest
// index. An all-zero spectrum yields the zero Result.
func Analyze(spectrum []uint8, sampleRate, fftSize int) (Result, error) {
	if len(spectrum) == 0 {
		return Result{}, ErrEmptySpectrum
	}
	if fftSize <= 0 || sampleRate <= 0 {
		return Result{}, fmt.Errorf("%w: fftSize=%d sampleRate=%d", ErrInvalidFFTSize, fftSize, sampleRate)
	}

	var maxVal uint8
	maxIdx := 0
	for i, v := range spectrum {
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}

	return Result{
		Index:       maxIdx,
		FrequencyHz: float64(maxIdx) * float64(sampleRate) / float64(fftSize),
		Magnitude:   float64(maxVal) / MaxMagnitude,
	}, nil
}
