package dsp

import (
	"math"
	"sync"
	"sync/atomic"
)

// Limiter parameter ranges and defaults, per §6 (production values per §9's
// Open Question: release 50 ms, not 100 ms).
const (
	LimiterThresholdMinDB = -20.0
	LimiterThresholdMaxDB = 0.0
	LimiterThresholdDef   = -1.0

	LimiterReleaseMinMs = 10.0
	LimiterReleaseMaxMs = 1000.0
	LimiterReleaseDef   = 50.0

	LimiterCeilingMinDB = -1.0
	LimiterCeilingMaxDB = 0.0
	LimiterCeilingDef   = -0.3

	// limiterAttackMs is hard-coded per §4.3: fast enough that transients
	// are reliably brought under the ceiling before the hard-clip tail.
	limiterAttackMs = 0.1

	// limiterMinGain floors the computed gain to avoid numerical collapse
	// on extreme overshoot, per §4.3.
	limiterMinGain = 0.01
)

// Limiter is the final brick-wall peak limiter of §4.3: a fast-attack,
// configurable-release envelope computes a gain-reduction target from
// per-sample stereo peak, and a hard clip to the ceiling guarantees the
// brick-wall bound regardless of envelope lag.
type Limiter struct {
	mu sync.Mutex

	thresholdDB float64
	releaseMs   float64
	ceilingDB   float64
	bypass      bool
	sampleRate  float64

	envelope float64 // linear gain envelope, 1.0 = no reduction

	attackCoef  float64
	releaseCoef float64

	gainReductionDB    uint64 // atomic, float64 bits, current
	maxGainReductionDB uint64 // atomic, float64 bits, since last ResetMaxGainReduction
}

// NewLimiter creates a limiter at the published defaults.
func NewLimiter(sampleRate float64) *Limiter {
	l := &Limiter{
		thresholdDB: LimiterThresholdDef,
		releaseMs:   LimiterReleaseDef,
		ceilingDB:   LimiterCeilingDef,
		sampleRate:  sampleRate,
		envelope:    1.0,
	}
	l.updateTimeConstants()
	return l
}

// SetThreshold sets the activation threshold in dB, clamped to [-20, 0].
func (l *Limiter) SetThreshold(db float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.thresholdDB = clamp(db, LimiterThresholdMinDB, LimiterThresholdMaxDB)
}

// SetRelease sets the release time in ms, clamped to [10, 1000].
func (l *Limiter) SetRelease(ms float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releaseMs = clamp(ms, LimiterReleaseMinMs, LimiterReleaseMaxMs)
	l.updateTimeConstants()
}

// SetCeiling sets the hard ceiling in dB, clamped to [-1.0, 0].
func (l *Limiter) SetCeiling(db float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ceilingDB = clamp(db, LimiterCeilingMinDB, LimiterCeilingMaxDB)
}

// SetSampleRate updates the sample rate and recomputes time constants.
func (l *Limiter) SetSampleRate(rate float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rate <= 0 || rate == l.sampleRate {
		return
	}
	l.sampleRate = rate
	l.updateTimeConstants()
}

// SetBypass toggles bypass.
func (l *Limiter) SetBypass(bypass bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bypass = bypass
}

// Bypass reports the current bypass state.
func (l *Limiter) Bypass() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bypass
}

// Threshold, Release, Ceiling return the current effective (clamped)
// parameter values.
func (l *Limiter) Threshold() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.thresholdDB
}

func (l *Limiter) Release() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.releaseMs
}

func (l *Limiter) Ceiling() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ceilingDB
}

// GainReductionDB returns the most recently published instantaneous gain
// reduction, in dB (positive when reducing).
func (l *Limiter) GainReductionDB() float64 {
	return math.Float64frombits(atomic.LoadUint64(&l.gainReductionDB))
}

// MaxGainReductionDB returns the maximum gain reduction observed since the
// last call to ResetMaxGainReduction.
func (l *Limiter) MaxGainReductionDB() float64 {
	return math.Float64frombits(atomic.LoadUint64(&l.maxGainReductionDB))
}

// ResetMaxGainReduction clears the max-GR register, per §4.3's "reset on
// explicit request".
func (l *Limiter) ResetMaxGainReduction() {
	atomic.StoreUint64(&l.maxGainReductionDB, 0)
}

// Reset clears the envelope follower back to unity gain, for use between
// takes or after a transport seek. Coefficients and parameters are left
// untouched.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.envelope = 1.0
}

func (l *Limiter) updateTimeConstants() {
	l.attackCoef = math.Exp(-1.0 / (l.sampleRate * (limiterAttackMs * 0.001)))
	l.releaseCoef = math.Exp(-1.0 / (l.sampleRate * (l.releaseMs * 0.001)))
}

// ProcessBlock applies the brick-wall limiter: a fast envelope tracks
// peak(|L|,|R|), computes a target gain against the ceiling, and a final
// hard clip to ±linear(ceiling) guarantees the brick-wall bound.
func (l *Limiter) ProcessBlock(in, out SampleBlock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.bypass {
		copy(out.Left, in.Left)
		copy(out.Right, in.Right)
		return
	}

	ceilingLin := DBToLinear(l.ceilingDB)
	var blockMaxGR float64

	for i := range in.Left {
		ls, _ := Sanitize(in.Left[i])
		rs, _ := Sanitize(in.Right[i])

		peak := math.Abs(ls)
		if absR := math.Abs(rs); absR > peak {
			peak = absR
		}

		peakDB := LinearToDB(peak)

		var target float64
		if peakDB <= l.thresholdDB {
			target = 1.0
		} else {
			target = DBToLinear(l.ceilingDB - peakDB)
			if target < limiterMinGain {
				target = limiterMinGain
			}
		}

		if target < l.envelope {
			l.envelope = l.attackCoef*l.envelope + (1-l.attackCoef)*target
		} else {
			l.envelope = l.releaseCoef*l.envelope + (1-l.releaseCoef)*target
		}

		outL := ls * l.envelope
		outR := rs * l.envelope

		out.Left[i] = clamp(outL, -ceilingLin, ceilingLin)
		out.Right[i] = clamp(outR, -ceilingLin, ceilingLin)

		gr := -LinearToDB(l.envelope)
		if gr > blockMaxGR {
			blockMaxGR = gr
		}
	}

	atomic.StoreUint64(&l.gainReductionDB, math.Float64bits(-LinearToDB(l.envelope)))
	for {
		cur := math.Float64frombits(atomic.LoadUint64(&l.maxGainReductionDB))
		if blockMaxGR <= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.maxGainReductionDB, math.Float64bits(cur), math.Float64bits(blockMaxGR)) {
			break
		}
	}
}
