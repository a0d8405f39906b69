// ABOUTME: End-to-end telemetry tests over a real WebSocket
// ABOUTME: Uses httptest with the package client to verify hello, frames and session events
package telemetry

import (
	"context"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Resonate-Protocol/orbit/internal/live"
	"github.com/Resonate-Protocol/orbit/internal/version"
	"github.com/Resonate-Protocol/orbit/pkg/analysis"
	"github.com/Resonate-Protocol/orbit/pkg/spatial"
)

func startTestServer(t *testing.T) (*Server, *Client) {
	t.Helper()

	s := NewServer(Config{Name: "test-orbit", TickRate: 60})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Stop(context.Background())
		ts.Close()
	})

	c := NewClient(strings.TrimPrefix(ts.URL, "http://"), DefaultPath)
	if err := c.Connect(); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 1 registered client, got %d", s.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	return s, c
}

func TestServer_Hello(t *testing.T) {
	_, c := startTestServer(t)

	hello := c.Hello()
	if hello.Name != "test-orbit" {
		t.Errorf("expected name test-orbit, got %s", hello.Name)
	}
	if hello.SoftwareVersion != version.Version {
		t.Errorf("expected version %s, got %s", version.Version, hello.SoftwareVersion)
	}
	if hello.TickRate != 60 {
		t.Errorf("expected tick rate 60, got %d", hello.TickRate)
	}
}

func TestServer_PublishFrame(t *testing.T) {
	s, c := startTestServer(t)

	s.PublishFrame(live.Frame{
		Session:  "abc",
		Tick:     7,
		Time:     1500 * time.Millisecond,
		Angle:    0.12,
		Radius:   2.5,
		Position: spatial.Position{X: 2.5 * math.Cos(0.12), Z: 2.5 * math.Sin(0.12)},
		Result:   analysis.Result{Index: 371, FrequencyHz: 8000, Magnitude: 1},
	})

	select {
	case f := <-c.Frames:
		if f.Session != "abc" || f.Tick != 7 {
			t.Errorf("expected session abc tick 7, got %s tick %d", f.Session, f.Tick)
		}
		if f.PlayheadMs != 1500 {
			t.Errorf("expected playhead 1500ms, got %d", f.PlayheadMs)
		}
		if f.FrequencyHz != 8000 || f.Magnitude != 1 || f.Radius != 2.5 {
			t.Errorf("unexpected frame values: %+v", f)
		}
		if math.Abs(f.X-2.5*math.Cos(0.12)) > 1e-12 || f.Y != 0 {
			t.Errorf("unexpected position: %+v", f)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestServer_PublishSession(t *testing.T) {
	s, c := startTestServer(t)

	s.PublishSession("abc", StatePlaying, 3*time.Second)

	select {
	case st := <-c.Sessions:
		if st.Session != "abc" || st.State != StatePlaying || st.DurationMs != 3000 {
			t.Errorf("unexpected session state: %+v", st)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session state")
	}
}

func TestServer_StopDisconnectsClients(t *testing.T) {
	s, c := startTestServer(t)

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected client to be disconnected")
	}
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	h := NewHub()

	done := make(chan struct{})
	go func() {
		// Hub is not running, so the queue fills and later messages drop
		for i := 0; i < 1000; i++ {
			h.Broadcast([]byte("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked")
	}

	if h.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", h.ClientCount())
	}
	h.Stop()
	h.Stop()
}

func TestClient_ConnectFailure(t *testing.T) {
	c := NewClient("127.0.0.1:1", "")
	if err := c.Connect(); err == nil {
		c.Close()
		t.Fatal("expected dial error")
	}
}
