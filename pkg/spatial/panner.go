// ABOUTME: Built-in renderer with distance attenuation and equal-power panning
// ABOUTME: Downmixes to mono and positions the source per output frame
package spatial

import (
	"context"
	"fmt"
	"math"

	"github.com/Resonate-Protocol/orbit/pkg/audio"
)

// cancelCheckFrames is how often Render polls its context
const cancelCheckFrames = 4096

// Renderer positions an input stream along a schedule
type Renderer interface {
	Render(ctx context.Context, in *audio.Buffer, schedule *Schedule, channels int) (*audio.Buffer, error)
}

// Panner renders with the inverse distance model and an equal-power pan.
// It holds no per-render state and is safe for concurrent use.
type Panner struct {
	RefDistance   float64
	RolloffFactor float64
}

// NewPanner returns a panner with reference distance 1 and rolloff 1
func NewPanner() *Panner {
	return &Panner{RefDistance: 1, RolloffFactor: 1}
}

// DistanceGain applies the inverse distance model
func (p *Panner) DistanceGain(d float64) float64 {
	ref := p.RefDistance
	if ref <= 0 {
		ref = 1
	}
	if d < ref {
		d = ref
	}
	return ref / (ref + p.RolloffFactor*(d-ref))
}

// Gains returns the left and right channel gains for pos
func (p *Panner) Gains(pos Position) (left, right float32) {
	d := pos.Distance()
	pan := 0.0
	if d > 0 {
		pan = pos.X / d
	}
	theta := (pan + 1) * math.Pi / 4
	g := p.DistanceGain(d)
	return float32(g * math.Cos(theta)), float32(g * math.Sin(theta))
}

// Process writes len(mono) interleaved frames for a source fixed at pos
// into dst. dst must hold len(mono)*channels samples.
func (p *Panner) Process(dst, mono []float32, pos Position, channels int) error {
	if channels != 1 && channels != 2 {
		return fmt.Errorf("%w: %d output channels (supported: 1, 2)", audio.ErrUnsupportedFormat, channels)
	}
	if len(dst) < len(mono)*channels {
		return fmt.Errorf("destination holds %d samples, need %d", len(dst), len(mono)*channels)
	}

	if channels == 1 {
		g := float32(p.DistanceGain(pos.Distance()))
		for i, s := range mono {
			dst[i] = s * g
		}
		return nil
	}

	gl, gr := p.Gains(pos)
	for i, s := range mono {
		dst[2*i] = s * gl
		dst[2*i+1] = s * gr
	}
	return nil
}

// Render downmixes in to mono and positions it along schedule, sampling
// the schedule at each output frame's logical time
func (p *Panner) Render(ctx context.Context, in *audio.Buffer, schedule *Schedule, channels int) (*audio.Buffer, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d output channels (supported: 1, 2)", audio.ErrUnsupportedFormat, channels)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	mono := in.Mono().Data[0]
	out := audio.NewBuffer(in.SampleRate, channels, len(mono))
	rate := float64(in.SampleRate)

	next := 0
	pos := schedule.Initial
	gl, gr := p.Gains(pos)
	gm := float32(p.DistanceGain(pos.Distance()))

	for i, s := range mono {
		if i%cancelCheckFrames == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		t := float64(i) / rate
		changed := false
		for next < len(schedule.Points) && schedule.Points[next].Time <= t {
			pos = schedule.Points[next].Position
			next++
			changed = true
		}
		if changed {
			gl, gr = p.Gains(pos)
			gm = float32(p.DistanceGain(pos.Distance()))
		}

		if channels == 1 {
			out.Data[0][i] = s * gm
			continue
		}
		out.Data[0][i] = s * gl
		out.Data[1][i] = s * gr
	}

	return out, nil
}
