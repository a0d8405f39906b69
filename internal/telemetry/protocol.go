// ABOUTME: Telemetry message types sent over the WebSocket
// ABOUTME: JSON envelope with a type tag and a typed payload
package telemetry

import (
	"time"

	"github.com/Resonate-Protocol/orbit/internal/live"
)

// Message types
const (
	TypeServerHello     = "server/hello"
	TypeTrajectoryFrame = "trajectory/frame"
	TypeSessionState    = "session/state"
)

// Session states
const (
	StatePlaying = "playing"
	StateStopped = "stopped"
)

// Message is the top-level wrapper for all telemetry messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ServerHello is sent to every client right after it connects
type ServerHello struct {
	Name            string `json:"name"`
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
	TickRate        int    `json:"tick_rate"`
}

// TrajectoryFrame is the state after one live tick
type TrajectoryFrame struct {
	Session     string  `json:"session"`
	Tick        int64   `json:"tick"`
	PlayheadMs  int64   `json:"playhead_ms"`
	Angle       float64 `json:"angle"`
	Radius      float64 `json:"radius"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	FrequencyHz float64 `json:"frequency_hz"`
	Magnitude   float64 `json:"magnitude"`
	Degraded    bool    `json:"degraded,omitempty"`
}

// SessionState announces a live session starting or stopping
type SessionState struct {
	Session    string `json:"session"`
	State      string `json:"state"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// NewTrajectoryFrame converts a live tick into its wire form
func NewTrajectoryFrame(f live.Frame) TrajectoryFrame {
	return TrajectoryFrame{
		Session:     f.Session,
		Tick:        f.Tick,
		PlayheadMs:  f.Time.Milliseconds(),
		Angle:       f.Angle,
		Radius:      f.Radius,
		X:           f.Position.X,
		Y:           f.Position.Y,
		Z:           f.Position.Z,
		FrequencyHz: f.Result.FrequencyHz,
		Magnitude:   f.Result.Magnitude,
		Degraded:    f.Degraded,
	}
}

// NewSessionState builds a session state payload
func NewSessionState(session, state string, duration time.Duration) SessionState {
	return SessionState{Session: session, State: state, DurationMs: duration.Milliseconds()}
}
