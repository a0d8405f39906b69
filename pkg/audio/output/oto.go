// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams float32 PCM to a persistent oto player through a pipe
package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"sync"

	"github.com/Resonate-Protocol/orbit/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// Oto output implementation using oto library
type Oto struct {
	mu         sync.Mutex
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	sampleRate int
	channels   int
	buf        []byte
}

// NewOto creates a new Oto output
func NewOto() Output {
	return &Oto{}
}

// Open initializes the output device. oto allows one context per process,
// so later opens must request the same format.
func (o *Oto) Open(sampleRate, channels int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx != nil && (o.sampleRate != sampleRate || o.channels != channels) {
		return fmt.Errorf("%w: oto context is %dHz/%dch, cannot reopen at %dHz/%dch",
			audio.ErrUnsupportedFormat, o.sampleRate, o.channels, sampleRate, channels)
	}

	if o.player != nil {
		log.Printf("Audio output already open, reusing player")
		return nil
	}

	if o.otoCtx == nil {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatFloat32LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			return fmt.Errorf("failed to create oto context: %w", err)
		}
		<-readyChan

		o.otoCtx = ctx
		o.sampleRate = sampleRate
		o.channels = channels
	} else if err := o.otoCtx.Resume(); err != nil {
		return fmt.Errorf("failed to resume oto context: %w", err)
	}

	// Create pipe for continuous streaming
	o.pipeReader, o.pipeWriter = io.Pipe()

	// Create persistent player that reads from the pipe
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()

	log.Printf("Audio output initialized: %dHz, %d channels (oto)", sampleRate, channels)

	return nil
}

// Write outputs audio samples (blocks until the player consumes them)
func (o *Oto) Write(samples []float32) error {
	o.mu.Lock()
	w := o.pipeWriter
	if w == nil {
		o.mu.Unlock()
		return ErrNotOpen
	}
	if cap(o.buf) < len(samples)*4 {
		o.buf = make([]byte, len(samples)*4)
	}
	out := o.buf[:len(samples)*4]
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	o.mu.Unlock()

	// Write to pipe (which feeds the persistent player)
	if _, err := w.Write(out); err != nil {
		if errors.Is(err, io.ErrClosedPipe) {
			return ErrClosed
		}
		return fmt.Errorf("pipe write failed: %w", err)
	}

	return nil
}

// Close releases the player. The oto context is suspended, not destroyed.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			log.Printf("Warning: oto player close error: %v", err)
		}
		o.player = nil
	}
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			log.Printf("Warning: oto suspend error: %v", err)
		}
	}
	return nil
}
