// ABOUTME: RIFF/WAVE container encoder
// ABOUTME: Writes the 44-byte canonical header followed by 16-bit interleaved PCM
package encode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Resonate-Protocol/orbit/pkg/audio"
)

const (
	// HeaderSize is the size of the canonical PCM WAVE header
	HeaderSize = 44

	// FileName is the default name of an exported render
	FileName = "3d-audio.wav"

	// MIMEType is the media type of the exported artifact
	MIMEType = "audio/wav"

	fmtChunkSize   = 16
	formatPCM      = 1
	bitsPerSample  = 16
	riffHeaderSize = 8
)

// WAVEncoder encodes buffers into a PCM WAV container
type WAVEncoder struct{}

// NewWAV creates a new WAV encoder
func NewWAV() Encoder {
	return &WAVEncoder{}
}

// Encode validates the buffer and returns the WAV container bytes.
// Formats whose byte rate overflows the header field are unsupported;
// buffers whose data would not fit a 32-bit RIFF size are rejected.
func (e *WAVEncoder) Encode(buf *audio.Buffer) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid buffer: %w", err)
	}
	if byteRate := int64(buf.SampleRate) * int64(buf.Channels()) * BytesPerSample; byteRate > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %dHz x %d channels gives a byte rate of %d",
			audio.ErrUnsupportedFormat, buf.SampleRate, buf.Channels(), byteRate)
	}
	if Size(buf.Frames(), buf.Channels())-riffHeaderSize > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d frames x %d channels exceeds the WAV size field",
			audio.ErrResourceExhausted, buf.Frames(), buf.Channels())
	}
	return WAV(buf), nil
}

// Size returns the container length for the given shape
func Size(frames, channels int) int64 {
	return HeaderSize + int64(frames)*int64(channels)*BytesPerSample
}

// WAV serializes a well-formed buffer. It does not validate its input;
// callers that cannot guarantee equal channel lengths should use WAVEncoder.
func WAV(buf *audio.Buffer) []byte {
	channels := buf.Channels()
	sampleRate := buf.SampleRate
	dataSize := buf.Frames() * channels * BytesPerSample

	out := make([]byte, HeaderSize+dataSize)
	PutHeader(out, sampleRate, channels, dataSize)
	PutPCM16(out[HeaderSize:], buf)
	return out
}

// PutHeader writes the 44-byte little-endian WAVE header into dst
func PutHeader(dst []byte, sampleRate, channels, dataSize int) {
	le := binary.LittleEndian
	blockAlign := channels * BytesPerSample

	copy(dst[0:4], "RIFF")
	le.PutUint32(dst[4:8], uint32(HeaderSize-riffHeaderSize+dataSize))
	copy(dst[8:12], "WAVE")
	copy(dst[12:16], "fmt ")
	le.PutUint32(dst[16:20], fmtChunkSize)
	le.PutUint16(dst[20:22], formatPCM)
	le.PutUint16(dst[22:24], uint16(channels))
	le.PutUint32(dst[24:28], uint32(sampleRate))
	le.PutUint32(dst[28:32], uint32(sampleRate*blockAlign))
	le.PutUint16(dst[32:34], uint16(blockAlign))
	le.PutUint16(dst[34:36], bitsPerSample)
	copy(dst[36:40], "data")
	le.PutUint32(dst[40:44], uint32(dataSize))
}
