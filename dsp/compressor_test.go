package dsp

import (
	"math"
	"testing"
)

const testSampleRate = 48000.0

// TestNewCompressorDefaults verifies the compressor initialises with the
// published production defaults.
func TestNewCompressorDefaults(t *testing.T) {
	t.Parallel()

	c := NewCompressor(testSampleRate)

	if c.Threshold() != CompThresholdDef {
		t.Errorf("default threshold = %v, want %v", c.Threshold(), CompThresholdDef)
	}
	if c.Ratio() != CompRatioDef {
		t.Errorf("default ratio = %v, want %v", c.Ratio(), CompRatioDef)
	}
	if c.Attack() != CompAttackDef {
		t.Errorf("default attack = %v, want %v", c.Attack(), CompAttackDef)
	}
	if c.Release() != CompReleaseDef {
		t.Errorf("default release = %v, want %v", c.Release(), CompReleaseDef)
	}
	if c.MakeupGain() != CompMakeupDef {
		t.Errorf("default makeup = %v, want %v", c.MakeupGain(), CompMakeupDef)
	}
}

// TestCompressorParameterClamping verifies out-of-range parameters clamp
// silently to the published ranges, per §7's "out-of-range parameter" rule.
func TestCompressorParameterClamping(t *testing.T) {
	t.Parallel()

	c := NewCompressor(testSampleRate)

	c.SetThreshold(-1000)
	if c.Threshold() != CompThresholdMinDB {
		t.Errorf("threshold clamp low = %v, want %v", c.Threshold(), CompThresholdMinDB)
	}
	c.SetThreshold(1000)
	if c.Threshold() != CompThresholdMaxDB {
		t.Errorf("threshold clamp high = %v, want %v", c.Threshold(), CompThresholdMaxDB)
	}

	c.SetRatio(0.1)
	if c.Ratio() != CompRatioMin {
		t.Errorf("ratio clamp low = %v, want %v", c.Ratio(), CompRatioMin)
	}
	c.SetRatio(100)
	if c.Ratio() != CompRatioMax {
		t.Errorf("ratio clamp high = %v, want %v", c.Ratio(), CompRatioMax)
	}
}

// TestCompressorBypassIdentity verifies bypass produces bit-identical
// output, per §8's bypass-identity universal invariant.
func TestCompressorBypassIdentity(t *testing.T) {
	t.Parallel()

	c := NewCompressor(testSampleRate)
	c.SetBypass(true)

	in := NewSampleBlock(128)
	for i := range in.Left {
		in.Left[i] = math.Sin(float64(i) * 0.1)
		in.Right[i] = math.Cos(float64(i) * 0.1)
	}
	out := NewSampleBlock(128)
	c.ProcessBlock(in, out)

	for i := range in.Left {
		if out.Left[i] != in.Left[i] || out.Right[i] != in.Right[i] {
			t.Fatalf("bypass not identity at sample %d", i)
		}
	}
}

// TestCompressorBlockLengthPreservation verifies output length equals
// input length, per §8's block-length-preservation invariant.
func TestCompressorBlockLengthPreservation(t *testing.T) {
	t.Parallel()

	for _, n := range []int{64, 128, 256, 512} {
		c := NewCompressor(testSampleRate)
		in := NewSampleBlock(n)
		out := NewSampleBlock(n)
		c.ProcessBlock(in, out)
		if out.Len() != n {
			t.Errorf("n=%d: output length = %d", n, out.Len())
		}
	}
}

// TestCompressorKneeContinuity verifies the gain function is continuous
// across both knee boundaries, per §8's knee-continuity property.
func TestCompressorKneeContinuity(t *testing.T) {
	t.Parallel()

	c := NewCompressor(testSampleRate)
	c.SetThreshold(-20)
	c.SetRatio(4)

	const eps = 1e-6
	const tol = 1e-4

	lowerBoundary := c.thresholdDB - compKneeWidthDB
	upperBoundary := c.thresholdDB + compKneeWidthDB

	checkContinuous := func(boundaryDB float64) {
		level := DBToLinear(boundaryDB)
		below := c.targetGain(DBToLinear(boundaryDB - eps))
		at := c.targetGain(level)
		above := c.targetGain(DBToLinear(boundaryDB + eps))

		if math.Abs(below-at) > tol || math.Abs(above-at) > tol {
			t.Errorf("discontinuity at %.2f dB: below=%.6f at=%.6f above=%.6f", boundaryDB, below, at, above)
		}
	}

	checkContinuous(lowerBoundary)
	checkContinuous(upperBoundary)
}

// TestCompressorBelowThresholdNoReduction verifies signals well below
// threshold pass with unity gain.
func TestCompressorBelowThresholdNoReduction(t *testing.T) {
	t.Parallel()

	c := NewCompressor(testSampleRate)
	c.SetThreshold(-20)

	gain := c.targetGain(DBToLinear(-40))
	if math.Abs(gain-1.0) > 1e-9 {
		t.Errorf("gain below threshold = %v, want 1.0", gain)
	}
}

// TestCompressorStereoLink verifies the side-chain uses max(|L|,|R|): a
// loud transient on one channel reduces gain applied to both.
func TestCompressorStereoLink(t *testing.T) {
	t.Parallel()

	c := NewCompressor(testSampleRate)
	c.SetThreshold(-20)
	c.SetRatio(4)
	c.SetAttack(0.1)

	n := 64
	in := NewSampleBlock(n)
	for i := range in.Left {
		in.Left[i] = 0.9 // loud left
		in.Right[i] = 0.01
	}
	out := NewSampleBlock(n)
	c.ProcessBlock(in, out)

	lastL := out.Left[n-1] / in.Left[n-1]
	lastR := out.Right[n-1] / in.Right[n-1]

	if math.Abs(lastL-lastR) > 1e-9 {
		t.Errorf("stereo link broken: gain L=%v R=%v", lastL, lastR)
	}
}

// TestCompressorSilence verifies silence passes through as silence.
func TestCompressorSilence(t *testing.T) {
	t.Parallel()

	c := NewCompressor(testSampleRate)
	in := NewSampleBlock(256)
	out := NewSampleBlock(256)
	c.ProcessBlock(in, out)

	for i := range out.Left {
		if out.Left[i] != 0 || out.Right[i] != 0 {
			t.Fatalf("silence produced non-zero output at %d", i)
		}
	}
	if c.GainReductionDB() != 0 {
		t.Errorf("gain reduction on silence = %v, want 0", c.GainReductionDB())
	}
}
