// ABOUTME: WAV audio decoder
// ABOUTME: Decodes integer PCM RIFF/WAVE files to float buffers via go-audio/wav
package decode

import (
	"bytes"
	"fmt"

	"github.com/Resonate-Protocol/orbit/pkg/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// WAVDecoder decodes RIFF/WAVE files
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder
func NewWAV() Decoder {
	return &WAVDecoder{}
}

// Decode converts WAV bytes to a float buffer
func (d *WAVDecoder) Decode(data []byte) (*audio.Buffer, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV file", audio.ErrDecode)
	}

	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: WAV audio format %d (supported: 1/PCM)", audio.ErrUnsupportedFormat, decoder.WavAudioFormat)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return nil, fmt.Errorf("%w: WAV bit depth %d (supported: 16, 24, 32)", audio.ErrUnsupportedFormat, bitDepth)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", audio.ErrDecode, err)
	}

	channels := pcm.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("%w: WAV channel count %d", audio.ErrUnsupportedFormat, channels)
	}

	frames := len(pcm.Data) / channels
	buf := audio.NewBuffer(pcm.Format.SampleRate, channels, frames)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			buf.Data[ch][i] = audio.SampleFromBits(int32(pcm.Data[i*channels+ch]), bitDepth)
		}
	}

	return buf, nil
}
