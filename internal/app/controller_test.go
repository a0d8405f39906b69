// ABOUTME: Tests for the playback and render control surface
// ABOUTME: Uses an in-memory output to check idempotence and isolation of live and offline paths
package app

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/orbit/internal/live"
	"github.com/Resonate-Protocol/orbit/internal/render"
	"github.com/Resonate-Protocol/orbit/pkg/audio"
	"github.com/Resonate-Protocol/orbit/pkg/audio/encode"
	"github.com/Resonate-Protocol/orbit/pkg/audio/output"
)

// memOutput accepts writes until closed; block makes Write wait for Close
type memOutput struct {
	mu      sync.Mutex
	block   bool
	closed  chan struct{}
	samples int
	once    sync.Once
}

func newMemOutput(block bool) *memOutput {
	return &memOutput{block: block, closed: make(chan struct{})}
}

func (m *memOutput) Open(sampleRate, channels int) error { return nil }

func (m *memOutput) Write(samples []float32) error {
	if m.block {
		<-m.closed
		return output.ErrClosed
	}
	m.mu.Lock()
	m.samples += len(samples)
	m.mu.Unlock()
	return nil
}

func (m *memOutput) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}

type factory struct {
	mu      sync.Mutex
	block   bool
	outputs []*memOutput
}

func (f *factory) new() (output.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := newMemOutput(f.block)
	f.outputs = append(f.outputs, out)
	return out, nil
}

func (f *factory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.outputs)
}

func toneBuffer(seconds float64) *audio.Buffer {
	buf := audio.NewBuffer(44100, 2, int(seconds*44100))
	for ch := range buf.Data {
		for i := range buf.Data[ch] {
			buf.Data[ch][i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/44100))
		}
	}
	return buf
}

func newTestController(block bool, callbacks Callbacks) (*Controller, *factory) {
	f := &factory{block: block}
	return NewController(live.DefaultConfig(), render.DefaultConfig(), f.new, callbacks), f
}

func TestStopLive_IdleIsNoop(t *testing.T) {
	c, f := newTestController(false, Callbacks{})

	c.StopLive()
	c.StopLive()

	if c.Playing() {
		t.Error("expected controller to be idle")
	}
	if f.count() != 0 {
		t.Errorf("expected no outputs created, got %d", f.count())
	}
}

func TestStartLive_NoAudio(t *testing.T) {
	c, _ := newTestController(false, Callbacks{})
	if err := c.StartLive(context.Background()); !errors.Is(err, ErrNoAudio) {
		t.Errorf("expected ErrNoAudio, got %v", err)
	}
	if _, err := c.RenderOffline(context.Background()); !errors.Is(err, ErrNoAudio) {
		t.Errorf("expected ErrNoAudio, got %v", err)
	}
}

func TestStartLive_Idempotent(t *testing.T) {
	c, f := newTestController(true, Callbacks{})
	if err := c.LoadBuffer(toneBuffer(2)); err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	if err := c.StartLive(context.Background()); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	first := c.Session()

	if err := c.StartLive(context.Background()); err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	if c.Session() != first {
		t.Error("expected second start to keep the running session")
	}
	if f.count() != 1 {
		t.Errorf("expected 1 output, got %d", f.count())
	}

	c.StopLive()
	c.StopLive()

	if c.Playing() {
		t.Error("expected idle after stop")
	}
	select {
	case <-first.Done():
	default:
		t.Error("expected session to be fully stopped")
	}

	// A new start builds a fresh session
	if err := c.StartLive(context.Background()); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if c.Session() == first {
		t.Error("expected a new session after restart")
	}
	c.StopLive()
}

func TestToggle(t *testing.T) {
	c, _ := newTestController(true, Callbacks{})
	if err := c.LoadBuffer(toneBuffer(1)); err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	if err := c.Toggle(context.Background()); err != nil || !c.Playing() {
		t.Fatalf("expected playing after toggle, err=%v", err)
	}
	if err := c.Toggle(context.Background()); err != nil || c.Playing() {
		t.Fatalf("expected idle after second toggle, err=%v", err)
	}
}

func TestSessionEndReturnsToIdle(t *testing.T) {
	events := make(chan bool, 4)
	c, _ := newTestController(false, Callbacks{
		OnSession: func(s *live.Session, playing bool) { events <- playing },
	})
	if err := c.LoadBuffer(toneBuffer(0.05)); err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if err := c.StartLive(context.Background()); err != nil {
		t.Fatalf("failed to start: %v", err)
	}

	sawStop := false
	deadline := time.After(5 * time.Second)
	for !sawStop {
		select {
		case playing := <-events:
			sawStop = !playing
		case <-deadline:
			t.Fatal("timed out waiting for session end")
		}
	}

	if c.Playing() {
		t.Error("expected controller idle after source ended")
	}
	c.StopLive()
}

func TestRenderOffline_IndependentOfLive(t *testing.T) {
	c, _ := newTestController(true, Callbacks{})
	buf := toneBuffer(0.5)
	if err := c.LoadBuffer(buf); err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	before, err := c.RenderOffline(context.Background())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(before) != encode.HeaderSize+buf.Frames()*2*2 {
		t.Errorf("expected %d bytes, got %d", encode.HeaderSize+buf.Frames()*4, len(before))
	}

	if err := c.StartLive(context.Background()); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	during, err := c.RenderOffline(context.Background())
	if err != nil {
		t.Fatalf("render during playback failed: %v", err)
	}
	if !c.Playing() {
		t.Error("expected render to leave playback running")
	}
	c.StopLive()

	if !bytes.Equal(before, during) {
		t.Error("expected identical renders regardless of live playback")
	}
}

func TestLoad(t *testing.T) {
	c, _ := newTestController(false, Callbacks{})

	if _, err := c.Load([]byte("definitely not audio")); !errors.Is(err, audio.ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
	if c.Buffer() != nil {
		t.Error("expected no buffer after failed load")
	}

	wav := encode.WAV(toneBuffer(0.1))
	buf, err := c.Load(wav)
	if err != nil {
		t.Fatalf("failed to load WAV: %v", err)
	}
	if buf.SampleRate != 44100 || buf.Channels() != 2 || buf.Frames() != 4410 {
		t.Errorf("expected 44100Hz/2ch/4410 frames, got %dHz/%dch/%d", buf.SampleRate, buf.Channels(), buf.Frames())
	}
}

func TestRenderToFile(t *testing.T) {
	c, _ := newTestController(false, Callbacks{})
	path := filepath.Join(t.TempDir(), encode.FileName)

	if err := c.RenderToFile(context.Background(), path); !errors.Is(err, ErrNoAudio) {
		t.Errorf("expected ErrNoAudio, got %v", err)
	}

	if err := c.LoadBuffer(toneBuffer(0.2)); err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if err := c.RenderToFile(context.Background(), path); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected file: %v", err)
	}
	if info.Size() != encode.Size(8820, 2) {
		t.Errorf("expected %d bytes, got %d", encode.Size(8820, 2), info.Size())
	}
}

func TestSetVolume(t *testing.T) {
	c, f := newTestController(false, Callbacks{})
	c.SetVolume(40, true)
	if err := c.LoadBuffer(toneBuffer(0.05)); err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if err := c.StartLive(context.Background()); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	s := c.Session()
	if s == nil {
		// The tiny source may already have finished
		return
	}
	<-s.Done()
	if f.count() != 1 {
		t.Errorf("expected 1 output, got %d", f.count())
	}
}
