// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 audio to float buffers
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/orbit/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces interleaved 16-bit stereo
const mp3Channels = 2

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3() Decoder {
	return &MP3Decoder{}
}

// Decode converts MP3 bytes to a float buffer
func (d *MP3Decoder) Decode(data []byte) (*audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create mp3 decoder: %v", audio.ErrDecode, err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("%w: mp3 decode error: %v", audio.ErrDecode, err)
	}

	samples := pcm16ToFloat(pcm)
	return audio.Deinterleave(samples, decoder.SampleRate(), mp3Channels), nil
}
