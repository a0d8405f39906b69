// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Feeds a miniaudio float32 playback device from a ring buffer
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

const (
	// malgoBufferMs is the ring buffer capacity
	malgoBufferMs = 200

	// malgoPollInterval is how long Write waits for room in a full buffer
	malgoPollInterval = 5 * time.Millisecond
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	mu         sync.Mutex
	malgoCtx   *malgo.AllocatedContext
	device     *malgo.Device
	sampleRate int
	channels   int
	ringBuffer *RingBuffer
	closed     chan struct{}
	scratch    []float32
}

// NewMalgo creates a new Malgo output
func NewMalgo() Output {
	return &Malgo{}
}

// Open initializes the output device with specified format
func (m *Malgo) Open(sampleRate, channels int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil && m.sampleRate == sampleRate && m.channels == channels {
		log.Printf("Audio output already initialized with same format, reusing device")
		return nil
	}

	if m.device != nil {
		log.Printf("Format change detected (%dHz/%dch -> %dHz/%dch), reinitializing device",
			m.sampleRate, m.channels, sampleRate, channels)
		m.closeDevice()
	}

	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}

	ring := NewRingBuffer(sampleRate * channels * malgoBufferMs / 1000)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		m.dataCallback(ring, pOutputSample, int(frameCount)*channels)
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device
	m.ringBuffer = ring
	m.sampleRate = sampleRate
	m.channels = channels
	m.closed = make(chan struct{})

	log.Printf("Audio output initialized: %dHz, %d channels (malgo/F32)", sampleRate, channels)

	return nil
}

// Write queues samples, waiting for the device to drain the ring buffer
// when it is full
func (m *Malgo) Write(samples []float32) error {
	m.mu.Lock()
	ring, closed := m.ringBuffer, m.closed
	m.mu.Unlock()

	if ring == nil || closed == nil {
		return ErrNotOpen
	}

	written := 0
	for written < len(samples) {
		n := ring.Write(samples[written:])
		written += n
		if n > 0 {
			continue
		}

		select {
		case <-closed:
			return ErrClosed
		case <-time.After(malgoPollInterval):
		}
	}

	return nil
}

// dataCallback is called by malgo to fill the audio output buffer
func (m *Malgo) dataCallback(ring *RingBuffer, pOutput []byte, totalSamples int) {
	if cap(m.scratch) < totalSamples {
		m.scratch = make([]float32, totalSamples)
	}
	samples := m.scratch[:totalSamples]

	ring.Read(samples)

	for i, s := range samples {
		binary.LittleEndian.PutUint32(pOutput[i*4:], math.Float32bits(s))
	}
}

// Close releases output resources
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeDevice()

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}

	return nil
}

// closeDevice stops and uninitializes the device (must hold m.mu)
func (m *Malgo) closeDevice() {
	if m.closed != nil {
		close(m.closed)
		m.closed = nil
	}
	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		m.device.Uninit()
		m.device = nil
	}
	m.ringBuffer = nil
}
