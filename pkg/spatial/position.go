// ABOUTME: Position and automation schedule types
// ABOUTME: Schedule.At returns the last committed point at or before t
package spatial

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidPoint is returned when an automation point is not finite or
// goes back in time
var ErrInvalidPoint = errors.New("invalid automation point")

// Position is a source location relative to the listener
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DefaultPosition is where a source sits before any automation applies
var DefaultPosition = Position{X: 1, Y: 0, Z: 0}

// Distance returns the distance from the listener
func (p Position) Distance() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// IsFinite reports whether every coordinate is a finite number
func (p Position) IsFinite() bool {
	for _, v := range [...]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Point is a position committed at a logical time in seconds
type Point struct {
	Time     float64
	Position Position
}

// Schedule is an ordered list of automation points
type Schedule struct {
	Initial Position
	Points  []Point
}

// NewSchedule creates an empty schedule starting at DefaultPosition
func NewSchedule(capacity int) *Schedule {
	return &Schedule{
		Initial: DefaultPosition,
		Points:  make([]Point, 0, capacity),
	}
}

// Add appends a point. Times must be finite and non-decreasing.
func (s *Schedule) Add(t float64, pos Position) error {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 || !pos.IsFinite() {
		return fmt.Errorf("%w: t=%v pos=%+v", ErrInvalidPoint, t, pos)
	}
	if n := len(s.Points); n > 0 && t < s.Points[n-1].Time {
		return fmt.Errorf("%w: t=%v before previous point at %v", ErrInvalidPoint, t, s.Points[n-1].Time)
	}
	s.Points = append(s.Points, Point{Time: t, Position: pos})
	return nil
}

// Len returns the number of committed points
func (s *Schedule) Len() int {
	return len(s.Points)
}

// At returns the position in effect at time t: the last point whose Time
// is <= t, or Initial when t precedes every point
func (s *Schedule) At(t float64) Position {
	i := sort.Search(len(s.Points), func(i int) bool {
		return s.Points[i].Time > t
	})
	if i == 0 {
		return s.Initial
	}
	return s.Points[i-1].Position
}
