// ABOUTME: Audio decoder package for multiple container support
// ABOUTME: Provides Decoder interface and implementations for WAV, MP3, FLAC, Ogg/Opus
// Package decode turns encoded audio files into planar float buffers.
//
// Supports: WAV (16/24/32-bit integer PCM), MP3, FLAC, Ogg/Opus
//
// Decode sniffs the container from its magic bytes. Every failure is
// reported wrapped in audio.ErrDecode (or audio.ErrUnsupportedFormat for
// well-formed input the decoders cannot represent), and no partial buffer is
// ever returned.
//
// Example:
//
//	buf, err := decode.Decode(fileBytes)
//	if errors.Is(err, audio.ErrDecode) { ... }
package decode
