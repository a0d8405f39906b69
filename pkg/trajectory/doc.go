// ABOUTME: Trajectory strategies and offline schedule builders
// ABOUTME: Maps elapsed time or analysis results onto source positions
// Package trajectory turns time and spectrum analysis into positions.
//
// Two strategies share the Strategy contract:
//   - Orbit: x = r cos(1.8 t), z = r sin(1.8 t), independent of content
//   - Reactive: angle += 0.01 + f/8000*0.1 per tick, radius = 1 + 1.5*magnitude
//
// Offline renders commit a strategy's output as discrete automation points
// on a 60 Hz logical grid, so the result never depends on wall-clock time.
package trajectory
