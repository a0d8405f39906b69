// ABOUTME: Audio output package for live playback
// ABOUTME: Provides the Output interface with oto and malgo backends
// Package output provides live audio playback devices.
//
// Backends accept interleaved float32 samples in [-1, 1]. Write blocks
// until the device has room, which paces the caller at the device rate.
//
// Example:
//
//	out, err := output.New(output.BackendOto)
//	err = out.Open(44100, 2)
//	err = out.Write(samples)
//	err = out.Close()
package output
