// ABOUTME: Raw 16-bit PCM conversion helpers
// ABOUTME: Converts little-endian interleaved int16 bytes to float samples
package decode

import (
	"encoding/binary"

	"github.com/Resonate-Protocol/orbit/pkg/audio"
)

// pcm16ToFloat converts little-endian interleaved 16-bit PCM bytes to floats.
// A trailing odd byte is ignored.
func pcm16ToFloat(data []byte) []float32 {
	numSamples := len(data) / 2
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}
	return samples
}
