// ABOUTME: Decoder interface definition and container sniffing
// ABOUTME: Routes encoded bytes to the matching decoder by magic number
package decode

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/orbit/pkg/audio"
)

// Container names returned by Detect
const (
	ContainerWAV     = "wav"
	ContainerMP3     = "mp3"
	ContainerFLAC    = "flac"
	ContainerOpus    = "opus"
	ContainerUnknown = ""
)

// Decoder decodes a whole encoded file into a float buffer
type Decoder interface {
	// Decode converts encoded audio data to planar float samples
	Decode(data []byte) (*audio.Buffer, error)
}

// Detect identifies the container from its leading bytes
func Detect(data []byte) string {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return ContainerWAV
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("fLaC")):
		return ContainerFLAC
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("OggS")) && bytes.Contains(data[:min(len(data), 512)], []byte("OpusHead")):
		return ContainerOpus
	case len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")):
		return ContainerMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return ContainerMP3
	}
	return ContainerUnknown
}

// New returns the decoder for a container name
func New(container string) (Decoder, error) {
	switch container {
	case ContainerWAV:
		return NewWAV(), nil
	case ContainerMP3:
		return NewMP3(), nil
	case ContainerFLAC:
		return NewFLAC(), nil
	case ContainerOpus:
		return NewOpus(), nil
	default:
		return nil, fmt.Errorf("%w: unrecognized container", audio.ErrDecode)
	}
}

// Decode sniffs the container and decodes the whole file
func Decode(data []byte) (*audio.Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", audio.ErrDecode)
	}

	dec, err := New(Detect(data))
	if err != nil {
		return nil, err
	}

	buf, err := dec.Decode(data)
	if err != nil {
		return nil, classify(err)
	}
	if buf.Frames() == 0 {
		return nil, fmt.Errorf("%w: no audio frames", audio.ErrDecode)
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	return buf, nil
}

// classify makes sure decoder failures carry one of the taxonomy sentinels
func classify(err error) error {
	if errors.Is(err, audio.ErrDecode) || errors.Is(err, audio.ErrUnsupportedFormat) {
		return err
	}
	return fmt.Errorf("%w: %v", audio.ErrDecode, err)
}
