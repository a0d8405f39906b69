// ABOUTME: Control surface for live playback and offline rendering
// ABOUTME: Owns the decoded buffer and at most one live session at a time
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/orbit/internal/live"
	"github.com/Resonate-Protocol/orbit/internal/render"
	"github.com/Resonate-Protocol/orbit/pkg/audio"
	"github.com/Resonate-Protocol/orbit/pkg/audio/decode"
	"github.com/Resonate-Protocol/orbit/pkg/audio/output"
)

// ErrNoAudio is returned when playback or rendering is requested before
// anything has been loaded
var ErrNoAudio = errors.New("no audio loaded")

// OutputFactory opens a fresh output device for each live session
type OutputFactory func() (output.Output, error)

// Callbacks receive controller events. All fields are optional.
type Callbacks struct {
	// OnFrame runs on the tick goroutine and must not block
	OnFrame func(live.Frame)

	// OnSession reports a session starting (playing=true) or ending
	OnSession func(s *live.Session, playing bool)
}

// Controller starts and stops live sessions and runs offline renders.
// StartLive, StopLive and RenderOffline are idempotent in a given state.
type Controller struct {
	mu        sync.Mutex
	live      live.Config
	renderer  *render.Renderer
	newOutput OutputFactory
	callbacks Callbacks

	buf     *audio.Buffer
	session *live.Session
	volume  int
	muted   bool
}

// NewController creates a controller
func NewController(liveConfig live.Config, renderConfig render.Config, newOutput OutputFactory, callbacks Callbacks) *Controller {
	return &Controller{
		live:      liveConfig,
		renderer:  render.New(renderConfig),
		newOutput: newOutput,
		callbacks: callbacks,
		volume:    100,
	}
}

// Load decodes data and makes it the current source, stopping any live
// session first
func (c *Controller) Load(data []byte) (*audio.Buffer, error) {
	buf, err := decode.Decode(data)
	if err != nil {
		return nil, err
	}
	if err := c.LoadBuffer(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// LoadBuffer makes an already decoded buffer the current source. The
// buffer must not be modified afterwards.
func (c *Controller) LoadBuffer(buf *audio.Buffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}

	c.StopLive()

	c.mu.Lock()
	c.buf = buf
	c.mu.Unlock()

	log.Printf("Loaded %.1fs of audio: %dHz, %d channels", buf.Seconds(), buf.SampleRate, buf.Channels())
	return nil
}

// Buffer returns the current source, or nil
func (c *Controller) Buffer() *audio.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf
}

// Playing reports whether a live session is active
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Session returns the active live session, or nil
func (c *Controller) Session() *live.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// StartLive begins live playback. It does nothing if a session is
// already running.
func (c *Controller) StartLive(ctx context.Context) error {
	s, err := c.startLive(ctx)
	if err != nil || s == nil {
		return err
	}
	if c.callbacks.OnSession != nil {
		c.callbacks.OnSession(s, true)
	}
	return nil
}

// startLive creates and starts a session, returning nil when one is
// already running
func (c *Controller) startLive(ctx context.Context) (*live.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return nil, nil
	}
	if c.buf == nil {
		return nil, ErrNoAudio
	}

	out, err := c.newOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}

	s, err := live.NewSession(c.buf, out, c.live, c.callbacks.OnFrame, c.sessionEnded)
	if err != nil {
		return nil, err
	}
	s.SetVolume(c.volume)
	s.SetMuted(c.muted)

	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	c.session = s
	return s, nil
}

// StopLive stops the active session. Calling it when idle is a no-op.
func (c *Controller) StopLive() {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.mu.Unlock()

	if s == nil {
		return
	}
	s.Stop()
}

// Toggle starts playback when idle and stops it when playing
func (c *Controller) Toggle(ctx context.Context) error {
	if c.Playing() {
		c.StopLive()
		return nil
	}
	return c.StartLive(ctx)
}

// sessionEnded runs once per session after it has fully stopped
func (c *Controller) sessionEnded(s *live.Session) {
	c.mu.Lock()
	if c.session == s {
		c.session = nil
	}
	c.mu.Unlock()

	if c.callbacks.OnSession != nil {
		c.callbacks.OnSession(s, false)
	}
}

// SetVolume updates the software volume of current and future sessions
func (c *Controller) SetVolume(volume int, muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.volume = volume
	c.muted = muted
	if c.session != nil {
		c.session.SetVolume(volume)
		c.session.SetMuted(muted)
	}
}

// RenderOffline renders the current source to WAV bytes. It never touches
// the live session.
func (c *Controller) RenderOffline(ctx context.Context) ([]byte, error) {
	buf := c.Buffer()
	if buf == nil {
		return nil, ErrNoAudio
	}
	result, err := c.renderer.Render(ctx, buf)
	if err != nil {
		return nil, err
	}
	return result.WAV, nil
}

// RenderToFile renders the current source and writes it atomically to path
func (c *Controller) RenderToFile(ctx context.Context, path string) error {
	buf := c.Buffer()
	if buf == nil {
		return ErrNoAudio
	}
	_, err := c.renderer.RenderToFile(ctx, buf, path)
	return err
}
