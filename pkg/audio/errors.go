// ABOUTME: Error taxonomy shared by decode, render and encode paths
// ABOUTME: Sentinel errors meant to be matched with errors.Is
package audio

import "errors"

var (
	// ErrDecode reports input bytes that are not a valid or supported audio encoding.
	ErrDecode = errors.New("audio decode failed")

	// ErrUnsupportedFormat reports a channel count or sample rate outside what the
	// encoder or renderer supports.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrResourceExhausted reports a render that would exceed the bounded maximum size.
	ErrResourceExhausted = errors.New("render exceeds size limit")
)
