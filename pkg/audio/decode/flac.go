// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC audio to float buffers frame by frame
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/orbit/pkg/audio"
	"github.com/mewkiz/flac"
)

const maxFLACPrealloc = 1 << 24

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

// NewFLAC creates a new FLAC decoder
func NewFLAC() Decoder {
	return &FLACDecoder{}
}

// Decode converts FLAC bytes to a float buffer
func (d *FLACDecoder) Decode(data []byte) (*audio.Buffer, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode FLAC: %v", audio.ErrDecode, err)
	}
	defer stream.Close()

	info := stream.Info
	sampleRate := int(info.SampleRate)
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)

	// NSamples comes from the header; only trust it up to a sane bound
	capacity := 0
	if info.NSamples > 0 && info.NSamples <= maxFLACPrealloc {
		capacity = int(info.NSamples)
	}
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, 0, capacity)
	}

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: flac frame: %v", audio.ErrDecode, err)
		}
		if len(frame.Subframes) != channels {
			return nil, fmt.Errorf("%w: flac frame has %d subframes, expected %d", audio.ErrDecode, len(frame.Subframes), channels)
		}

		for ch := 0; ch < channels; ch++ {
			for i := 0; i < int(frame.BlockSize); i++ {
				out[ch] = append(out[ch], audio.SampleFromBits(frame.Subframes[ch].Samples[i], bitDepth))
			}
		}
	}

	return &audio.Buffer{SampleRate: sampleRate, Data: out}, nil
}
