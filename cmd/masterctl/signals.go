package main

import "math"

// SineConfig describes a stereo test tone, driving both channels of the
// chain at once since cmd/masterctl has no file decoder to source real
// program material from.
type SineConfig struct {
	Frequency  float64 // Hz
	Amplitude  float64 // linear, 0.0 to 1.0
	SampleRate float64 // Hz
	RightPhase float64 // radians, phase offset applied to the right channel only
}

// GenerateSineBlock fills left and right with a stereo sine tone starting
// at startSample (in samples since t=0), so successive calls continue the
// waveform phase-correctly across block boundaries.
func GenerateSineBlock(cfg SineConfig, startSample int, left, right []float64) {
	omega := 2 * math.Pi * cfg.Frequency / cfg.SampleRate
	for i := range left {
		t := float64(startSample + i)
		left[i] = cfg.Amplitude * math.Sin(omega*t)
		right[i] = cfg.Amplitude * math.Sin(omega*t+cfg.RightPhase)
	}
}

// GenerateImpulseBlock zeroes left/right except for a single sample at
// position, set to amplitude. Useful for exercising attack response.
func GenerateImpulseBlock(amplitude float64, position int, left, right []float64) {
	for i := range left {
		left[i], right[i] = 0, 0
	}
	if position >= 0 && position < len(left) {
		left[position] = amplitude
		right[position] = amplitude
	}
}
