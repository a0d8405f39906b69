// ABOUTME: Audio encoder package for serializing float buffers
// ABOUTME: Provides Encoder interface and the 16-bit PCM / RIFF-WAVE encoders
// Package encode serializes rendered float buffers.
//
// Supports: raw interleaved 16-bit PCM, 16-bit PCM RIFF/WAVE container
//
// Samples are clamped to [-1, 1]; negative values scale by 32768 and
// non-negative values by 32767, truncated toward zero.
//
// Example:
//
//	data := encode.WAV(buf) // 44-byte header + interleaved samples
//	err := os.WriteFile(encode.FileName, data, 0o644)
package encode
