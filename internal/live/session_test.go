// ABOUTME: Tests for live sessions with an in-memory output
// ABOUTME: Covers self-ending playback, idempotent stop and first-tick position
package live

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/orbit/pkg/audio"
)

func testBuffer(seconds float64) *audio.Buffer {
	buf := audio.NewBuffer(44100, 2, int(seconds*44100))
	for ch := range buf.Data {
		for i := range buf.Data[ch] {
			buf.Data[ch][i] = float32(0.25 * math.Sin(2*math.Pi*440*float64(i)/44100))
		}
	}
	return buf
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for session to stop")
	}
}

func TestSession_EndsWithSource(t *testing.T) {
	buf := testBuffer(0.1)
	out := newFakeOutput(false)

	ended := make(chan *Session, 1)
	s, err := NewSession(buf, out, DefaultConfig(), nil, func(s *Session) { ended <- s })
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	waitDone(t, s)

	select {
	case got := <-ended:
		if got != s {
			t.Error("expected onEnd to receive the ending session")
		}
	case <-time.After(time.Second):
		t.Fatal("expected onEnd to be called")
	}

	expected := buf.Frames() * 2
	if out.written() != expected {
		t.Errorf("expected %d samples written, got %d", expected, out.written())
	}
	if out.closeCount() != 1 {
		t.Errorf("expected output closed once, got %d", out.closeCount())
	}

	// Stopping an ended session is a no-op
	s.Stop()
	s.Stop()
	if out.closeCount() != 1 {
		t.Errorf("expected output still closed once, got %d", out.closeCount())
	}
}

func TestSession_StopIsIdempotent(t *testing.T) {
	out := newFakeOutput(true)

	var mu sync.Mutex
	ticks := 0
	s, err := NewSession(testBuffer(2), out, DefaultConfig(), func(Frame) {
		mu.Lock()
		ticks++
		mu.Unlock()
	}, nil)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	s.Stop()
	s.Stop()
	waitDone(t, s)

	mu.Lock()
	after := ticks
	mu.Unlock()

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if ticks != after {
		t.Errorf("expected no ticks after stop, got %d more", ticks-after)
	}
	if out.closeCount() != 1 {
		t.Errorf("expected output closed once, got %d", out.closeCount())
	}
}

func TestSession_FirstTickFromSilence(t *testing.T) {
	// A blocked output never advances the playhead, so the analyser only
	// sees an empty window
	out := newFakeOutput(true)
	frames := make(chan Frame, 16)

	s, err := NewSession(testBuffer(1), out, DefaultConfig(), func(f Frame) {
		select {
		case frames <- f:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	defer s.Stop()

	var first Frame
	select {
	case first = <-frames:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a tick")
	}

	if first.Tick != 0 {
		t.Errorf("expected tick 0, got %d", first.Tick)
	}
	if first.Session != s.ID {
		t.Errorf("expected session %s, got %s", s.ID, first.Session)
	}
	if first.Degraded {
		t.Error("expected analysis to succeed")
	}
	if math.Abs(first.Angle-0.01) > 1e-12 || first.Radius != 1 {
		t.Errorf("expected angle 0.01 radius 1, got %v, %v", first.Angle, first.Radius)
	}
	if math.Abs(first.Position.X-math.Cos(0.01)) > 1e-12 || math.Abs(first.Position.Z-math.Sin(0.01)) > 1e-12 || first.Position.Y != 0 {
		t.Errorf("expected (cos 0.01, 0, sin 0.01), got %+v", first.Position)
	}

	second := <-frames
	if second.Tick != 1 || second.Angle <= first.Angle {
		t.Errorf("expected tick 1 with larger angle, got tick %d angle %v", second.Tick, second.Angle)
	}
}

func TestSession_StartErrors(t *testing.T) {
	out := newFakeOutput(false)
	out.openErr = errOpen

	s, err := NewSession(testBuffer(0.1), out, DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, errOpen) {
		t.Errorf("expected open error, got %v", err)
	}
	// Stop on a session that never started must not hang
	s.Stop()
}

func TestNewSession_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		target error
	}{
		{"surround output", func(c *Config) { c.Channels = 6 }, audio.ErrUnsupportedFormat},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, audio.ErrUnsupportedFormat},
		{"zero tick rate", func(c *Config) { c.TickRate = 0 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)
			_, err := NewSession(testBuffer(0.1), newFakeOutput(false), config, nil, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}
