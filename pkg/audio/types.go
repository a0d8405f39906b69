// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats, decoded float buffers and sample conversions
package audio

import (
	"fmt"
	"math"
	"time"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23

	// MaxChannels is the largest channel count a RIFF/WAVE header can carry.
	MaxChannels = math.MaxUint16
)

// Format describes the shape of a decoded buffer
type Format struct {
	SampleRate int
	Channels   int
}

// Validate reports whether the format can be rendered and encoded
func (f Format) Validate() error {
	if f.SampleRate <= 0 || int64(f.SampleRate) > math.MaxUint32 {
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedFormat, f.SampleRate)
	}
	if f.Channels < 1 || f.Channels > MaxChannels {
		return fmt.Errorf("%w: channel count %d", ErrUnsupportedFormat, f.Channels)
	}
	return nil
}

// Buffer is decoded PCM audio stored planar, one slice per channel.
// Samples are nominally in [-1.0, 1.0]. Every channel has the same length.
// A Buffer is treated as read-only once it has been handed to a render or
// analysis pass.
type Buffer struct {
	SampleRate int
	Data       [][]float32
}

// NewBuffer allocates a silent buffer
func NewBuffer(sampleRate, channels, frames int) *Buffer {
	data := make([][]float32, channels)
	for ch := range data {
		data[ch] = make([]float32, frames)
	}
	return &Buffer{SampleRate: sampleRate, Data: data}
}

// Channels returns the number of channels
func (b *Buffer) Channels() int {
	return len(b.Data)
}

// Frames returns the number of samples per channel
func (b *Buffer) Frames() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Format returns the buffer's format
func (b *Buffer) Format() Format {
	return Format{SampleRate: b.SampleRate, Channels: b.Channels()}
}

// Duration returns the playback length of the buffer
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Seconds returns the playback length in seconds
func (b *Buffer) Seconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Validate checks the format and that every channel has the same frame count
func (b *Buffer) Validate() error {
	if err := b.Format().Validate(); err != nil {
		return err
	}
	frames := b.Frames()
	for ch, samples := range b.Data {
		if len(samples) != frames {
			return fmt.Errorf("channel %d has %d frames, expected %d", ch, len(samples), frames)
		}
	}
	return nil
}

// Clone returns an independent deep copy
func (b *Buffer) Clone() *Buffer {
	data := make([][]float32, len(b.Data))
	for ch, samples := range b.Data {
		data[ch] = append([]float32(nil), samples...)
	}
	return &Buffer{SampleRate: b.SampleRate, Data: data}
}

// Mono returns the average of all channels as a single-channel buffer
func (b *Buffer) Mono() *Buffer {
	if b.Channels() == 1 {
		return b.Clone()
	}
	frames := b.Frames()
	out := make([]float32, frames)
	if b.Channels() == 0 {
		return &Buffer{SampleRate: b.SampleRate, Data: [][]float32{out}}
	}
	scale := 1 / float32(b.Channels())
	for _, samples := range b.Data {
		for i, s := range samples {
			out[i] += s * scale
		}
	}
	return &Buffer{SampleRate: b.SampleRate, Data: [][]float32{out}}
}

// Deinterleave builds a planar buffer from interleaved samples.
// Trailing samples that do not fill a whole frame are dropped.
func Deinterleave(samples []float32, sampleRate, channels int) *Buffer {
	frames := len(samples) / channels
	buf := NewBuffer(sampleRate, channels, frames)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			buf.Data[ch][i] = samples[i*channels+ch]
		}
	}
	return buf
}

// Interleave writes frames [start, start+n) of the buffer into dst as
// interleaved samples and returns the number of frames written
func (b *Buffer) Interleave(dst []float32, start, n int) int {
	channels := b.Channels()
	if channels == 0 {
		return 0
	}
	if start+n > b.Frames() {
		n = b.Frames() - start
	}
	if n*channels > len(dst) {
		n = len(dst) / channels
	}
	for i := 0; i < n; i++ {
		for ch := 0; ch < channels; ch++ {
			dst[i*channels+ch] = b.Data[ch][start+i]
		}
	}
	return n
}

// SampleFromInt16 converts an int16 sample to float in [-1, 1)
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768
}

// SampleFrom24Bit converts a sign-extended 24-bit sample to float in [-1, 1)
func SampleFrom24Bit(sample int32) float32 {
	return float32(sample) / 8388608
}

// SampleFromBits converts a signed integer sample of the given bit depth to float
func SampleFromBits(sample int32, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	return float32(float64(sample) / float64(uint64(1)<<(bitDepth-1)))
}

// QuantizeInt16 clamps a float sample to [-1, 1] and converts it to 16-bit.
// Negative values scale by 32768, non-negative values by 32767, and the
// result is truncated toward zero. NaN maps to 0.
func QuantizeInt16(sample float32) int16 {
	s := float64(sample)
	if math.IsNaN(s) {
		return 0
	}
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	if s < 0 {
		return int16(s * 0x8000)
	}
	return int16(s * 0x7FFF)
}
