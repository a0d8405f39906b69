// ABOUTME: Ogg/Opus audio decoder
// ABOUTME: Decodes Ogg-encapsulated Opus files to float buffers via libopusfile
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/orbit/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

const (
	// Opus always decodes at 48kHz
	opusSampleRate = 48000

	// Max frame size per channel (120ms at 48kHz)
	opusMaxFrame = 5760
)

// OpusDecoder decodes Ogg/Opus files
type OpusDecoder struct{}

// NewOpus creates a new Opus decoder
func NewOpus() Decoder {
	return &OpusDecoder{}
}

// Decode converts Ogg/Opus bytes to a float buffer
func (d *OpusDecoder) Decode(data []byte) (*audio.Buffer, error) {
	// opusfile does not expose the channel count, so read it from the ID header
	channels, err := opusChannels(data)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open opus stream: %v", audio.ErrDecode, err)
	}
	defer stream.Close()

	var interleaved []float32
	pcm := make([]float32, opusMaxFrame*channels)
	for {
		n, err := stream.ReadFloat32(pcm)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: opus decode failed: %v", audio.ErrDecode, err)
		}
		interleaved = append(interleaved, pcm[:n*channels]...)
	}

	return audio.Deinterleave(interleaved, opusSampleRate, channels), nil
}

// opusChannels reads the output channel count from the OpusHead packet
func opusChannels(data []byte) (int, error) {
	idx := bytes.Index(data, []byte("OpusHead"))
	if idx < 0 || idx+9 >= len(data) {
		return 0, fmt.Errorf("%w: missing OpusHead", audio.ErrDecode)
	}
	channels := int(data[idx+9])
	if channels < 1 {
		return 0, fmt.Errorf("%w: opus channel count %d", audio.ErrUnsupportedFormat, channels)
	}
	return channels, nil
}
