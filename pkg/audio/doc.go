// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Buffer, Format, the error taxonomy and sample conversion functions
// Package audio provides the fundamental audio types shared by the decoders,
// the analyser, the spatial renderer and the WAV encoder.
//
// This package defines:
//   - Buffer: decoded, planar floating-point audio (one slice per channel)
//   - Format: sample rate and channel count of a Buffer
//   - ErrDecode, ErrUnsupportedFormat, ErrResourceExhausted: error taxonomy
//
// It also provides utilities for converting between sample formats:
//   - int16 / 24-bit ↔ float32 conversions
//   - float32 → 16-bit quantization used by the PCM container
//
// Example:
//
//	buf := audio.NewBuffer(44100, 2, 44100) // 1 second of stereo silence
//	mono := buf.Mono()
//	q := audio.QuantizeInt16(mono.Data[0][0])
package audio
