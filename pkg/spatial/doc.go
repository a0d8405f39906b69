// ABOUTME: Spatial source positions, automation schedules and rendering
// ABOUTME: Positions, automation schedules and the built-in panning renderer
// Package spatial models a virtual sound source relative to a listener at
// the origin facing -Z with +X to the right.
//
// A Schedule is a list of time-stamped positions with step/hold semantics.
// A Renderer consumes an input buffer and a Schedule and produces the
// positioned output. Panner is the built-in Renderer: inverse distance
// attenuation plus an equal-power stereo pan.
package spatial
