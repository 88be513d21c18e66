package dsp

import "sync"

// EQ parameter ranges and defaults, per §6.
const (
	EQGainMinDB    = -12.0
	EQGainMaxDB    = 12.0
	EQGainDefault  = 0.0
	EQBassFreqMin  = 20.0
	EQBassFreqMax  = 500.0
	EQBassFreqDef  = 100.0
	EQTrebleFreqMin = 1000.0
	EQTrebleFreqMax = 20000.0
	EQTrebleFreqDef = 10000.0
)

// EQ is a two-band Baxandall shelving equaliser: a low shelf ("bass") and a
// high shelf ("treble"), each with independent gain and corner frequency,
// applied per channel with cascaded biquads (low-shelf then high-shelf).
// Parameters are mutex-guarded; metering, where applicable, is published
// separately through atomics, matching the compressor and limiter nodes.
type EQ struct {
	mu sync.Mutex

	bassGainDB    float64
	trebleGainDB  float64
	bassFreqHz    float64
	trebleFreqHz  float64
	bypass        bool
	sampleRate    float64

	bassL, bassR     biquad
	trebleL, trebleR biquad
}

// NewEQ creates an EQ at unity gain with the published default frequencies.
func NewEQ(sampleRate float64) *EQ {
	eq := &EQ{
		bassGainDB:   EQGainDefault,
		trebleGainDB: EQGainDefault,
		bassFreqHz:   EQBassFreqDef,
		trebleFreqHz: EQTrebleFreqDef,
		sampleRate:   sampleRate,
	}
	eq.recompute()
	return eq
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// SetBassGain sets the low-shelf gain in dB, clamped to [-12, +12].
func (eq *EQ) SetBassGain(db float64) {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	eq.bassGainDB = clamp(db, EQGainMinDB, EQGainMaxDB)
	eq.recompute()
}

// SetTrebleGain sets the high-shelf gain in dB, clamped to [-12, +12].
func (eq *EQ) SetTrebleGain(db float64) {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	eq.trebleGainDB = clamp(db, EQGainMinDB, EQGainMaxDB)
	eq.recompute()
}

// SetBassFreq sets the low-shelf corner frequency in Hz, clamped to [20, 500].
func (eq *EQ) SetBassFreq(hz float64) {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	eq.bassFreqHz = clamp(hz, EQBassFreqMin, EQBassFreqMax)
	eq.recompute()
}

// SetTrebleFreq sets the high-shelf corner frequency in Hz, clamped to [1000, 20000].
func (eq *EQ) SetTrebleFreq(hz float64) {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	eq.trebleFreqHz = clamp(hz, EQTrebleFreqMin, EQTrebleFreqMax)
	eq.recompute()
}

// SetSampleRate updates the sample rate and recomputes coefficients.
func (eq *EQ) SetSampleRate(rate float64) {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	if rate <= 0 || rate == eq.sampleRate {
		return
	}
	eq.sampleRate = rate
	eq.recompute()
}

// SetBypass toggles bypass.
func (eq *EQ) SetBypass(bypass bool) {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	eq.bypass = bypass
}

// Bypass reports the current bypass state.
func (eq *EQ) Bypass() bool {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	return eq.bypass
}

// BassGain, TrebleGain, BassFreq, TrebleFreq return the current effective
// (clamped) parameter values, reflecting what metering and downstream
// processors actually see.
func (eq *EQ) BassGain() float64 {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	return eq.bassGainDB
}

func (eq *EQ) TrebleGain() float64 {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	return eq.trebleGainDB
}

func (eq *EQ) BassFreq() float64 {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	return eq.bassFreqHz
}

func (eq *EQ) TrebleFreq() float64 {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	return eq.trebleFreqHz
}

// Reset clears all four shelf biquads' sample history without touching
// coefficients, for use between takes or after a transport seek.
func (eq *EQ) Reset() {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	eq.bassL.reset()
	eq.bassR.reset()
	eq.trebleL.reset()
	eq.trebleR.reset()
}

// recompute rebuilds all four biquads' coefficients from the current
// parameters. Assumes the caller holds eq.mu. Sample history is left
// untouched (§4.1: a coefficient change alone must not discontinuity the
// filter beyond what its existing history already represents).
func (eq *EQ) recompute() {
	eq.bassL.lowShelf(eq.bassFreqHz, eq.bassGainDB, eq.sampleRate)
	eq.bassR.lowShelf(eq.bassFreqHz, eq.bassGainDB, eq.sampleRate)
	eq.trebleL.highShelf(eq.trebleFreqHz, eq.trebleGainDB, eq.sampleRate)
	eq.trebleR.highShelf(eq.trebleFreqHz, eq.trebleGainDB, eq.sampleRate)
}

// ProcessBlock runs the cascaded low-shelf -> high-shelf per channel. When
// bypassed, copies input to output unchanged (bitwise identity per §3).
func (eq *EQ) ProcessBlock(in, out SampleBlock) {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	if eq.bypass {
		copy(out.Left, in.Left)
		copy(out.Right, in.Right)
		return
	}

	for i, x := range in.Left {
		out.Left[i] = eq.bassL.process(x)
		out.Left[i] = eq.trebleL.process(out.Left[i])
	}
	for i, x := range in.Right {
		out.Right[i] = eq.bassR.process(x)
		out.Right[i] = eq.trebleR.process(out.Right[i])
	}
}
