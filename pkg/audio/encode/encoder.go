// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for all audio encoders
package encode

import "github.com/Resonate-Protocol/orbit/pkg/audio"

// Encoder encodes a float buffer to bytes
type Encoder interface {
	// Encode converts a buffer to encoded audio data
	Encode(buf *audio.Buffer) ([]byte, error)
}
