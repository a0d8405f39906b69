// ABOUTME: Trajectory strategies mapping time or spectrum results to positions
// ABOUTME: Orbit is a closed-form circle; Reactive accumulates angle from the spectrum
package trajectory

import (
	"fmt"
	"math"

	"github.com/Resonate-Protocol/orbit/pkg/analysis"
	"github.com/Resonate-Protocol/orbit/pkg/spatial"
)

const (
	// StepRate is the logical tick rate of both strategies, in Hz
	StepRate = 60

	// BaseSpeed is the reactive angular step for a 0 Hz dominant frequency
	BaseSpeed = 0.01

	// SpeedPerHz scales dominant frequency into extra angular step
	SpeedPerHz = 0.1 / 8000

	// MinRadius is the reactive radius at zero magnitude
	MinRadius = 1.0

	// RadiusRange is added to MinRadius at full magnitude
	RadiusRange = 1.5

	// OrbitSpeed is the orbit's angular step per tick, in radians
	OrbitSpeed = 0.03

	// OrbitRate is the orbit's angular rate, in radians per second
	OrbitRate = OrbitSpeed * StepRate

	// DefaultOrbitRadius is the orbit's fixed radius
	DefaultOrbitRadius = 1.5
)

// Strategy produces the position for one step. t is the logical time in
// seconds since the start; res is the latest analysis result or nil.
type Strategy interface {
	Step(t float64, res *analysis.Result) spatial.Position
}

// Mode selects how offline renders build their schedule
type Mode int

const (
	// ModeOrbit sweeps a fixed circle regardless of content
	ModeOrbit Mode = iota

	// ModeReactive replays the reactive strategy over the whole buffer
	ModeReactive
)

// String returns the flag spelling of the mode
func (m Mode) String() string {
	switch m {
	case ModeOrbit:
		return "orbit"
	case ModeReactive:
		return "reactive"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "orbit" or "reactive"
func ParseMode(s string) (Mode, error) {
	switch s {
	case "orbit", "":
		return ModeOrbit, nil
	case "reactive":
		return ModeReactive, nil
	default:
		return ModeOrbit, fmt.Errorf("unknown trajectory mode %q (expected orbit or reactive)", s)
	}
}

// Orbit traces a circle in the horizontal plane at OrbitRate
type Orbit struct {
	Radius float64
}

// NewOrbit creates an orbit at DefaultOrbitRadius
func NewOrbit() *Orbit {
	return &Orbit{Radius: DefaultOrbitRadius}
}

// Step ignores res; the position depends on t only
func (o *Orbit) Step(t float64, _ *analysis.Result) spatial.Position {
	return circle(o.Radius, t*OrbitRate)
}

// Reactive rotates faster for higher dominant frequencies and moves
// outward for louder frames. Not safe for concurrent use.
type Reactive struct {
	// MaxSpeed caps the angular step per tick. Zero leaves speed unbounded,
	// so dominant frequencies above 8 kHz keep accelerating the rotation.
	MaxSpeed float64

	angle  float64
	radius float64
}

// NewReactive creates a reactive strategy at angle 0
func NewReactive(maxSpeed float64) *Reactive {
	return &Reactive{MaxSpeed: maxSpeed, radius: MinRadius}
}

// Speed returns the angular step for a dominant frequency
func (r *Reactive) Speed(frequencyHz float64) float64 {
	speed := BaseSpeed + frequencyHz*SpeedPerHz
	if r.MaxSpeed > 0 && speed > r.MaxSpeed {
		speed = r.MaxSpeed
	}
	return speed
}

// Step advances the angle by one tick. A nil or non-finite result leaves
// the angle unchanged and puts the source at MinRadius.
func (r *Reactive) Step(_ float64, res *analysis.Result) spatial.Position {
	if res == nil || !finite(res.FrequencyHz) || !finite(res.Magnitude) {
		r.radius = MinRadius
		return circle(r.radius, r.angle)
	}

	r.angle += r.Speed(res.FrequencyHz)
	r.radius = MinRadius + res.Magnitude*RadiusRange
	return circle(r.radius, r.angle)
}

// Angle returns the accumulated angle in radians
func (r *Reactive) Angle() float64 {
	return r.angle
}

// Radius returns the radius of the last step
func (r *Reactive) Radius() float64 {
	return r.radius
}

// Reset returns the strategy to angle 0
func (r *Reactive) Reset() {
	r.angle = 0
	r.radius = MinRadius
}

func circle(radius, angle float64) spatial.Position {
	return spatial.Position{
		X: radius * math.Cos(angle),
		Y: 0,
		Z: radius * math.Sin(angle),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
