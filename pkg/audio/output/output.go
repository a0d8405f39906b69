// ABOUTME: Audio output interface definition
// ABOUTME: Common interface, backend selection and software volume
package output

import (
	"errors"
	"fmt"
)

const (
	BackendOto   = "oto"
	BackendMalgo = "malgo"
)

var (
	// ErrNotOpen is returned by Write before Open succeeds
	ErrNotOpen = errors.New("output not initialized")

	// ErrClosed is returned by a Write interrupted by Close
	ErrClosed = errors.New("output closed")
)

// Output represents an audio output device
type Output interface {
	// Open initializes the output device
	Open(sampleRate, channels int) error

	// Write outputs interleaved samples (blocks until queued)
	Write(samples []float32) error

	// Close releases output resources and unblocks a pending Write
	Close() error
}

// New returns the named backend
func New(backend string) (Output, error) {
	switch backend {
	case BackendOto, "":
		return NewOto(), nil
	case BackendMalgo:
		return NewMalgo(), nil
	default:
		return nil, fmt.Errorf("unknown output backend %q (supported: %s, %s)", backend, BackendOto, BackendMalgo)
	}
}

// ApplyVolume scales samples in place by volume (0-100), or silences them
// when muted
func ApplyVolume(samples []float32, volume int, muted bool) {
	multiplier := getVolumeMultiplier(volume, muted)
	if multiplier == 1 {
		return
	}
	for i, s := range samples {
		samples[i] = s * multiplier
	}
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float32 {
	if muted {
		return 0
	}
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	return float32(volume) / 100
}
