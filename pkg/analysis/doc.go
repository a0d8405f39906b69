// ABOUTME: Frequency-domain analysis for driving spatial motion
// ABOUTME: Finds the dominant bin of byte magnitude spectra produced by Analyser
// Package analysis extracts the dominant frequency of an audio frame.
//
// Analyser turns the most recent FFTSize time-domain samples into a byte
// magnitude spectrum (Blackman window, real FFT, temporal smoothing, dB
// scaling onto [0, 255]). Analyze scans such a spectrum for its loudest bin.
//
// Example:
//
//	a, _ := analysis.NewAnalyser(analysis.DefaultConfig())
//	spectrum := a.ByteFrequencyData(mono, playhead, nil)
//	res, err := analysis.Analyze(spectrum, sampleRate, a.FFTSize())
package analysis
