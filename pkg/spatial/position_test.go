// ABOUTME: Tests for positions and automation schedules
// ABOUTME: Verifies step/hold lookup and point validation
package spatial

import (
	"errors"
	"math"
	"testing"
)

func TestSchedule_At(t *testing.T) {
	s := NewSchedule(3)
	points := []Point{
		{Time: 0.5, Position: Position{X: 0, Y: 0, Z: -1}},
		{Time: 1.0, Position: Position{X: -1, Y: 0, Z: 0}},
		{Time: 1.0, Position: Position{X: 0, Y: 0, Z: 1}},
		{Time: 2.0, Position: Position{X: 2, Y: 0, Z: 0}},
	}
	for _, p := range points {
		if err := s.Add(p.Time, p.Position); err != nil {
			t.Fatalf("failed to add point: %v", err)
		}
	}

	tests := []struct {
		name     string
		t        float64
		expected Position
	}{
		{"before first point", 0.25, DefaultPosition},
		{"exactly first point", 0.5, points[0].Position},
		{"between points holds", 0.75, points[0].Position},
		{"duplicate time takes last", 1.0, points[2].Position},
		{"after last point holds", 10, points[3].Position},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.At(tt.t)
			if got != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestSchedule_AddRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		t    float64
		pos  Position
	}{
		{"NaN time", math.NaN(), Position{}},
		{"negative time", -1, Position{}},
		{"infinite coordinate", 1, Position{X: math.Inf(1)}},
		{"NaN coordinate", 1, Position{Z: math.NaN()}},
		{"time goes back", 0.5, Position{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSchedule(0)
			if err := s.Add(1, Position{}); err != nil {
				t.Fatalf("failed to add seed point: %v", err)
			}
			err := s.Add(tt.t, tt.pos)
			if !errors.Is(err, ErrInvalidPoint) {
				t.Errorf("expected ErrInvalidPoint, got %v", err)
			}
			if s.Len() != 1 {
				t.Errorf("expected 1 point after rejection, got %d", s.Len())
			}
		})
	}
}

func TestPosition_Distance(t *testing.T) {
	p := Position{X: 3, Y: 0, Z: 4}
	if p.Distance() != 5 {
		t.Errorf("expected distance 5, got %v", p.Distance())
	}
	if !p.IsFinite() {
		t.Error("expected finite position")
	}
}
