// ABOUTME: One-shot offline render: schedule, spatialize, encode
// ABOUTME: Enforces the duration cap and writes files atomically
package render

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Resonate-Protocol/orbit/pkg/analysis"
	"github.com/Resonate-Protocol/orbit/pkg/audio"
	"github.com/Resonate-Protocol/orbit/pkg/audio/encode"
	"github.com/Resonate-Protocol/orbit/pkg/audio/resample"
	"github.com/Resonate-Protocol/orbit/pkg/spatial"
	"github.com/Resonate-Protocol/orbit/pkg/trajectory"
)

// Config holds offline render parameters
type Config struct {
	SampleRate  int
	Channels    int
	MaxDuration time.Duration
	Mode        trajectory.Mode
	Radius      float64 // orbit radius
	MaxSpeed    float64 // reactive speed cap, 0 = unbounded
	Analyser    analysis.Config
}

// DefaultConfig returns the standard offline render configuration
func DefaultConfig() Config {
	return Config{
		SampleRate:  44100,
		Channels:    2,
		MaxDuration: 5 * time.Minute,
		Mode:        trajectory.ModeOrbit,
		Radius:      trajectory.DefaultOrbitRadius,
		Analyser:    analysis.DefaultConfig(),
	}
}

// Result is a finished render
type Result struct {
	WAV      []byte
	Schedule *spatial.Schedule
	Frames   int
	Elapsed  time.Duration
}

// Renderer runs offline renders. It holds no state between renders.
type Renderer struct {
	config  Config
	spatial spatial.Renderer
}

// New creates a renderer using the built-in panner
func New(config Config) *Renderer {
	return NewWithRenderer(config, spatial.NewPanner())
}

// NewWithRenderer creates a renderer around any spatial renderer
func NewWithRenderer(config Config, r spatial.Renderer) *Renderer {
	return &Renderer{config: config, spatial: r}
}

// Config returns the render configuration
func (r *Renderer) Config() Config {
	return r.config
}

// Render spatializes a private copy of buf and encodes it as WAV
func (r *Renderer) Render(ctx context.Context, buf *audio.Buffer) (*Result, error) {
	start := time.Now()

	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if err := (audio.Format{SampleRate: r.config.SampleRate, Channels: r.config.Channels}).Validate(); err != nil {
		return nil, err
	}
	if r.config.Channels != 1 && r.config.Channels != 2 {
		return nil, fmt.Errorf("%w: %d output channels (supported: 1, 2)", audio.ErrUnsupportedFormat, r.config.Channels)
	}
	if r.config.MaxDuration > 0 && buf.Duration() > r.config.MaxDuration {
		return nil, fmt.Errorf("%w: input is %v, maximum is %v",
			audio.ErrResourceExhausted, buf.Duration().Round(time.Millisecond), r.config.MaxDuration)
	}

	// Take an independent copy so a live session can keep reading buf
	input := resample.To(buf.Clone(), r.config.SampleRate)

	schedule, err := trajectory.Build(ctx, r.config.Mode, input, r.config.Radius, r.config.Analyser, r.config.MaxSpeed)
	if err != nil {
		return nil, fmt.Errorf("failed to build %v schedule: %w", r.config.Mode, err)
	}

	rendered, err := r.spatial.Render(ctx, input, schedule, r.config.Channels)
	if err != nil {
		return nil, fmt.Errorf("spatial render failed: %w", err)
	}

	wav, err := encode.NewWAV().Encode(rendered)
	if err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %w", err)
	}

	result := &Result{
		WAV:      wav,
		Schedule: schedule,
		Frames:   rendered.Frames(),
		Elapsed:  time.Since(start),
	}

	log.Printf("Rendered %d frames (%v mode, %d automation points) in %v",
		result.Frames, r.config.Mode, schedule.Len(), result.Elapsed.Round(time.Millisecond))

	return result, nil
}

// WriteFile writes data to path atomically with mode 0644: a temp file in
// the same directory is renamed into place only after a successful write
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	// CreateTemp creates files with mode 0600
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set mode on %s: %w", tmpName, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move render into place: %w", err)
	}

	return nil
}

// RenderToFile renders buf and writes it to path. On any error no file
// is left at path.
func (r *Renderer) RenderToFile(ctx context.Context, buf *audio.Buffer, path string) (*Result, error) {
	result, err := r.Render(ctx, buf)
	if err != nil {
		return nil, err
	}
	if err := WriteFile(path, result.WAV); err != nil {
		return nil, err
	}
	log.Printf("Wrote %s (%d bytes)", path, len(result.WAV))
	return result, nil
}
