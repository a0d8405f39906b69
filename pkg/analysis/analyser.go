// ABOUTME: Byte magnitude spectrum producer with analyser-node semantics
// ABOUTME: Blackman window, real FFT, exponential smoothing and dB-to-byte mapping
package analysis

import (
	"fmt"
	"math"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/dsp/window"
)

// Config holds analyser parameters
type Config struct {
	FFTSize     int     // power of two, 32..32768
	Smoothing   float64 // time constant in [0, 1)
	MinDecibels float64 // maps to byte 0
	MaxDecibels float64 // maps to byte 255
}

// DefaultConfig matches the live preview analyser
func DefaultConfig() Config {
	return Config{
		FFTSize:     2048,
		Smoothing:   0.8,
		MinDecibels: -100,
		MaxDecibels: -30,
	}
}

// Analyser produces byte magnitude spectra from time-domain audio.
// It carries smoothing state between calls and is not safe for concurrent use.
type Analyser struct {
	config   Config
	plan     *algofft.PlanRealT[float32, complex64]
	window   []float64
	frame    []float32
	spectrum []complex64
	smoothed []float64
}

// NewAnalyser creates an analyser
func NewAnalyser(config Config) (*Analyser, error) {
	n := config.FFTSize
	if n < 32 || n > 32768 || bits.OnesCount(uint(n)) != 1 {
		return nil, fmt.Errorf("%w: %d (must be a power of two in [32, 32768])", ErrInvalidFFTSize, n)
	}
	if config.Smoothing < 0 || config.Smoothing >= 1 {
		return nil, fmt.Errorf("smoothing %v out of range [0, 1)", config.Smoothing)
	}
	if config.MinDecibels >= config.MaxDecibels {
		return nil, fmt.Errorf("min decibels %v must be below max decibels %v", config.MinDecibels, config.MaxDecibels)
	}

	plan, err := algofft.NewPlanReal32(n)
	if err != nil {
		return nil, fmt.Errorf("failed to create FFT plan for size %d: %w", n, err)
	}

	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = 1
	}

	return &Analyser{
		config:   config,
		plan:     plan,
		window:   window.Blackman(coeffs),
		frame:    make([]float32, n),
		spectrum: make([]complex64, n/2+1),
		smoothed: make([]float64, n/2),
	}, nil
}

// FFTSize returns the transform length
func (a *Analyser) FFTSize() int {
	return a.config.FFTSize
}

// BinCount returns the spectrum length, FFTSize/2
func (a *Analyser) BinCount() int {
	return a.config.FFTSize / 2
}

// Reset clears the smoothing history
func (a *Analyser) Reset() {
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
}

// ByteFrequencyData analyses the FFTSize samples of mono ending at end
// (exclusive), zero-padding before the start of the signal, and writes
// BinCount bytes into dst. dst is allocated when too short.
func (a *Analyser) ByteFrequencyData(mono []float32, end int, dst []uint8) []uint8 {
	n := a.config.FFTSize
	if len(dst) < n/2 {
		dst = make([]uint8, n/2)
	}
	dst = dst[:n/2]

	if end > len(mono) {
		end = len(mono)
	}
	start := end - n
	for i := 0; i < n; i++ {
		idx := start + i
		if idx < 0 || idx >= end {
			a.frame[i] = 0
			continue
		}
		a.frame[i] = mono[idx] * float32(a.window[i])
	}

	if err := a.plan.Forward(a.spectrum, a.frame); err != nil {
		// Plan and buffers are sized together, so this is unreachable in practice
		for i := range dst {
			dst[i] = 0
		}
		return dst
	}

	tau := a.config.Smoothing
	rangeDB := a.config.MaxDecibels - a.config.MinDecibels
	scale := 1 / float64(n)

	for k := 0; k < n/2; k++ {
		c := a.spectrum[k]
		mag := math.Hypot(float64(real(c)), float64(imag(c))) * scale
		s := tau*a.smoothed[k] + (1-tau)*mag
		if math.IsNaN(s) || math.IsInf(s, 0) {
			s = 0
		}
		a.smoothed[k] = s

		db := math.Inf(-1)
		if s > 0 {
			db = 20 * math.Log10(s)
		}
		v := math.Floor(MaxMagnitude / rangeDB * (db - a.config.MinDecibels))
		switch {
		case v < 0 || math.IsNaN(v):
			dst[k] = 0
		case v > MaxMagnitude:
			dst[k] = MaxMagnitude
		default:
			dst[k] = uint8(v)
		}
	}

	return dst
}

// Analyze runs ByteFrequencyData and returns the dominant bin
func (a *Analyser) Analyze(mono []float32, end, sampleRate int, scratch []uint8) (Result, []uint8, error) {
	spectrum := a.ByteFrequencyData(mono, end, scratch)
	res, err := Analyze(spectrum, sampleRate, a.config.FFTSize)
	return res, spectrum, err
}
