// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Used to bring decoded audio to the render or device rate
package resample

import (
	"math"

	"github.com/Resonate-Protocol/orbit/pkg/audio"
)

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	ratio      float64 // input frames per output frame
}

// New creates a new resampler
func New(inputRate, outputRate int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// OutputFrames returns how many frames Resample produces for n input frames
func (r *Resampler) OutputFrames(inputFrames int) int {
	if inputFrames == 0 {
		return 0
	}
	return int(math.Round(float64(inputFrames) / r.ratio))
}

// Resample converts one channel of samples
func (r *Resampler) Resample(input []float32) []float32 {
	if r.inputRate == r.outputRate {
		return append([]float32(nil), input...)
	}

	n := r.OutputFrames(len(input))
	output := make([]float32, n)
	last := len(input) - 1

	for i := 0; i < n; i++ {
		pos := float64(i) * r.ratio
		idx := int(pos)
		if idx >= last {
			output[i] = input[last]
			continue
		}

		// Linear interpolation
		frac := float32(pos - float64(idx))
		output[i] = input[idx]*(1-frac) + input[idx+1]*frac
	}

	return output
}

// Buffer resamples every channel and returns a new buffer at the output rate
func (r *Resampler) Buffer(buf *audio.Buffer) *audio.Buffer {
	data := make([][]float32, buf.Channels())
	for ch, samples := range buf.Data {
		data[ch] = r.Resample(samples)
	}
	return &audio.Buffer{SampleRate: r.outputRate, Data: data}
}

// To resamples buf to rate, returning buf itself when no conversion is needed
func To(buf *audio.Buffer, rate int) *audio.Buffer {
	if buf.SampleRate == rate {
		return buf
	}
	return New(buf.SampleRate, rate).Buffer(buf)
}
