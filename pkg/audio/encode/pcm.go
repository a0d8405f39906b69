// ABOUTME: PCM audio encoder
// ABOUTME: Encodes float buffers to interleaved little-endian 16-bit PCM bytes
package encode

import (
	"encoding/binary"
	"fmt"

	"github.com/Resonate-Protocol/orbit/pkg/audio"
)

// BytesPerSample is the width of one encoded 16-bit sample
const BytesPerSample = 2

// PCMEncoder encodes raw interleaved 16-bit PCM without a header
type PCMEncoder struct{}

// NewPCM creates a new PCM encoder
func NewPCM() Encoder {
	return &PCMEncoder{}
}

// Encode converts a buffer to interleaved PCM bytes
func (e *PCMEncoder) Encode(buf *audio.Buffer) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid buffer: %w", err)
	}
	output := make([]byte, buf.Frames()*buf.Channels()*BytesPerSample)
	PutPCM16(output, buf)
	return output, nil
}

// PutPCM16 writes the buffer frame by frame, channel by channel, into dst.
// dst must hold Frames*Channels*2 bytes. Returns the number of bytes written.
func PutPCM16(dst []byte, buf *audio.Buffer) int {
	offset := 0
	frames := buf.Frames()
	for i := 0; i < frames; i++ {
		for _, samples := range buf.Data {
			binary.LittleEndian.PutUint16(dst[offset:], uint16(audio.QuantizeInt16(samples[i])))
			offset += BytesPerSample
		}
	}
	return offset
}

// PutInterleavedPCM16 quantizes interleaved float samples into dst.
// dst must hold len(samples)*2 bytes.
func PutInterleavedPCM16(dst []byte, samples []float32) int {
	for i, s := range samples {
		binary.LittleEndian.PutUint16(dst[i*BytesPerSample:], uint16(audio.QuantizeInt16(s)))
	}
	return len(samples) * BytesPerSample
}
