package dsp

import (
	"math"
	"sync"
	"sync/atomic"
)

// Compressor parameter ranges and defaults, per §6. The -20 dB / 100 ms
// values are the "production" defaults per spec §9's Open Question on
// conflicting defaults found in the source.
const (
	CompThresholdMinDB = -60.0
	CompThresholdMaxDB = 0.0
	CompThresholdDef   = -20.0

	CompRatioMin = 1.0
	CompRatioMax = 20.0
	CompRatioDef = 4.0

	CompAttackMinMs = 0.1
	CompAttackMaxMs = 100.0
	CompAttackDef   = 10.0

	CompReleaseMinMs = 10.0
	CompReleaseMaxMs = 1000.0
	CompReleaseDef   = 100.0

	CompMakeupMinDB = 0.0
	CompMakeupMaxDB = 20.0
	CompMakeupDef   = 0.0

	// compKneeWidthDB is the fixed soft-knee half-width W in §4.2's gain
	// computer (the knee spans [T-W, T+W]).
	compKneeWidthDB = 2.0

	// silenceFloorLinear is the 1e-10 floor used before taking log10 of
	// the side-chain level, per §4.2.
	silenceFloorLinear = 1e-10
)

// Compressor implements the SSL-style stereo-linked bus compressor of
// §4.2: a single side-chain level (max(|L|,|R|)) drives gain reduction
// applied equally to both channels, with a parabolic soft knee and a
// split attack/release one-pole envelope.
type Compressor struct {
	mu sync.Mutex

	thresholdDB  float64
	ratio        float64
	attackMs     float64
	releaseMs    float64
	makeupGainDB float64
	bypass       bool
	sampleRate   float64

	envelope float64 // linear gain envelope, 1.0 = no reduction

	attackCoef  float64
	releaseCoef float64

	// gainReductionDB is published once per block: -20*log10(envelope).
	gainReductionDB uint64 // atomic, float64 bits
	processedBlocks uint64 // atomic
}

// NewCompressor creates a compressor at the published defaults.
func NewCompressor(sampleRate float64) *Compressor {
	c := &Compressor{
		thresholdDB:  CompThresholdDef,
		ratio:        CompRatioDef,
		attackMs:     CompAttackDef,
		releaseMs:    CompReleaseDef,
		makeupGainDB: CompMakeupDef,
		sampleRate:   sampleRate,
		envelope:     1.0,
	}
	c.updateTimeConstants()
	return c
}

// SetThreshold sets the threshold in dB, clamped to [-60, 0].
func (c *Compressor) SetThreshold(db float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.thresholdDB = clamp(db, CompThresholdMinDB, CompThresholdMaxDB)
}

// SetRatio sets the compression ratio, clamped to [1, 20].
func (c *Compressor) SetRatio(ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ratio = clamp(ratio, CompRatioMin, CompRatioMax)
}

// SetAttack sets the attack time in ms, clamped to [0.1, 100].
func (c *Compressor) SetAttack(ms float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attackMs = clamp(ms, CompAttackMinMs, CompAttackMaxMs)
	c.updateTimeConstants()
}

// SetRelease sets the release time in ms, clamped to [10, 1000].
func (c *Compressor) SetRelease(ms float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseMs = clamp(ms, CompReleaseMinMs, CompReleaseMaxMs)
	c.updateTimeConstants()
}

// SetMakeupGain sets the makeup gain in dB, clamped to [0, 20].
func (c *Compressor) SetMakeupGain(db float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.makeupGainDB = clamp(db, CompMakeupMinDB, CompMakeupMaxDB)
}

// SetSampleRate updates the sample rate and recomputes time constants.
func (c *Compressor) SetSampleRate(rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rate <= 0 || rate == c.sampleRate {
		return
	}
	c.sampleRate = rate
	c.updateTimeConstants()
}

// SetBypass toggles bypass.
func (c *Compressor) SetBypass(bypass bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bypass = bypass
}

// Bypass reports the current bypass state.
func (c *Compressor) Bypass() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bypass
}

// Threshold, Ratio, Attack, Release, MakeupGain return the current
// effective (clamped) parameter values.
func (c *Compressor) Threshold() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.thresholdDB
}

func (c *Compressor) Ratio() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ratio
}

func (c *Compressor) Attack() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attackMs
}

func (c *Compressor) Release() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.releaseMs
}

func (c *Compressor) MakeupGain() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.makeupGainDB
}

// GainReductionDB returns the most recently published instantaneous gain
// reduction in dB (positive values mean more reduction; 0 means none).
func (c *Compressor) GainReductionDB() float64 {
	return math.Float64frombits(atomic.LoadUint64(&c.gainReductionDB))
}

// Reset clears the envelope follower back to unity gain.
func (c *Compressor) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.envelope = 1.0
}

func (c *Compressor) updateTimeConstants() {
	attackSec := c.attackMs * 0.001
	releaseSec := c.releaseMs * 0.001
	c.attackCoef = math.Exp(-1.0 / (c.sampleRate * attackSec))
	c.releaseCoef = math.Exp(-1.0 / (c.sampleRate * releaseSec))
}

// targetGain computes the gain-computer output for a single side-chain
// sample, per §4.2's soft-knee formula.
func (c *Compressor) targetGain(sideChain float64) float64 {
	level := sideChain
	if level < silenceFloorLinear {
		level = silenceFloorLinear
	}
	xDB := FastLog2(level) * 6.020599913

	t := c.thresholdDB
	w := compKneeWidthDB
	r := c.ratio

	switch {
	case xDB < t-w:
		return 1.0
	case xDB > t+w:
		compressed := t + (xDB-t)/r
		return DBToLinear(compressed - xDB)
	default:
		u := (xDB - (t - w)) / (2 * w)
		soft := 1 - (1-1/r)*u*u
		compressed := t + (xDB-t)*soft/r
		return DBToLinear(compressed - xDB)
	}
}

// ProcessBlock applies stereo-linked compression: the side-chain is
// max(|L|,|R|) per sample, and the resulting gain is applied to both
// channels identically. Publishes gain-reduction metering once per block.
func (c *Compressor) ProcessBlock(in, out SampleBlock) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bypass {
		copy(out.Left, in.Left)
		copy(out.Right, in.Right)
		return
	}

	makeupLin := DBToLinear(c.makeupGainDB)

	for i := range in.Left {
		l, _ := Sanitize(in.Left[i])
		r, _ := Sanitize(in.Right[i])

		sideChain := math.Abs(l)
		if absR := math.Abs(r); absR > sideChain {
			sideChain = absR
		}

		target := c.targetGain(sideChain)

		if target < c.envelope {
			c.envelope = c.attackCoef*c.envelope + (1-c.attackCoef)*target
		} else {
			c.envelope = c.releaseCoef*c.envelope + (1-c.releaseCoef)*target
		}

		gain := c.envelope * makeupLin
		out.Left[i] = l * gain
		out.Right[i] = r * gain
	}

	atomic.StoreUint64(&c.gainReductionDB, math.Float64bits(-LinearToDB(c.envelope)))
	atomic.AddUint64(&c.processedBlocks, 1)
}
