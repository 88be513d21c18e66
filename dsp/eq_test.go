package dsp

import (
	"math"
	"testing"
)

// TestNewEQDefaults verifies construction-time defaults.
func TestNewEQDefaults(t *testing.T) {
	t.Parallel()

	eq := NewEQ(testSampleRate)

	if eq.BassGain() != EQGainDefault {
		t.Errorf("bass gain = %v, want %v", eq.BassGain(), EQGainDefault)
	}
	if eq.TrebleGain() != EQGainDefault {
		t.Errorf("treble gain = %v, want %v", eq.TrebleGain(), EQGainDefault)
	}
	if eq.BassFreq() != EQBassFreqDef {
		t.Errorf("bass freq = %v, want %v", eq.BassFreq(), EQBassFreqDef)
	}
	if eq.TrebleFreq() != EQTrebleFreqDef {
		t.Errorf("treble freq = %v, want %v", eq.TrebleFreq(), EQTrebleFreqDef)
	}
}

// TestEQUnityAtZeroGain verifies that with both bands at 0 dB the filter is
// effectively transparent: output tracks input within a tight tolerance.
func TestEQUnityAtZeroGain(t *testing.T) {
	t.Parallel()

	eq := NewEQ(testSampleRate)

	in := NewSampleBlock(512)
	for i := range in.Left {
		in.Left[i] = math.Sin(2 * math.Pi * 440 * float64(i) / testSampleRate)
		in.Right[i] = in.Left[i]
	}
	out := NewSampleBlock(512)
	eq.ProcessBlock(in, out)

	for i := 8; i < len(in.Left); i++ { // skip filter settling transient
		if math.Abs(out.Left[i]-in.Left[i]) > 1e-6 {
			t.Fatalf("unity EQ diverged at %d: in=%v out=%v", i, in.Left[i], out.Left[i])
		}
	}
}

// TestEQBypassIdentity verifies bypass produces bit-identical output.
func TestEQBypassIdentity(t *testing.T) {
	t.Parallel()

	eq := NewEQ(testSampleRate)
	eq.SetBassGain(6)
	eq.SetTrebleGain(-6)
	eq.SetBypass(true)

	in := NewSampleBlock(64)
	for i := range in.Left {
		in.Left[i] = math.Sin(float64(i) * 0.3)
		in.Right[i] = math.Cos(float64(i) * 0.3)
	}
	out := NewSampleBlock(64)
	eq.ProcessBlock(in, out)

	for i := range in.Left {
		if out.Left[i] != in.Left[i] || out.Right[i] != in.Right[i] {
			t.Fatalf("bypass not identity at sample %d", i)
		}
	}
}

// TestEQParameterClamping verifies gain and frequency parameters clamp to
// their published ranges.
func TestEQParameterClamping(t *testing.T) {
	t.Parallel()

	eq := NewEQ(testSampleRate)

	eq.SetBassGain(-1000)
	if eq.BassGain() != EQGainMinDB {
		t.Errorf("bass gain clamp low = %v, want %v", eq.BassGain(), EQGainMinDB)
	}
	eq.SetBassGain(1000)
	if eq.BassGain() != EQGainMaxDB {
		t.Errorf("bass gain clamp high = %v, want %v", eq.BassGain(), EQGainMaxDB)
	}

	eq.SetBassFreq(1)
	if eq.BassFreq() != EQBassFreqMin {
		t.Errorf("bass freq clamp low = %v, want %v", eq.BassFreq(), EQBassFreqMin)
	}
	eq.SetTrebleFreq(1e9)
	if eq.TrebleFreq() != EQTrebleFreqMax {
		t.Errorf("treble freq clamp high = %v, want %v", eq.TrebleFreq(), EQTrebleFreqMax)
	}
}

// TestEQRecomputePreservesHistory verifies a coefficient change alone does
// not reset filter history, per the biquad reset/recompute separation.
func TestEQRecomputePreservesHistory(t *testing.T) {
	t.Parallel()

	eq := NewEQ(testSampleRate)
	eq.SetBassGain(6)

	in := NewSampleBlock(4)
	in.Left[0], in.Left[1], in.Left[2], in.Left[3] = 1, 1, 1, 1
	out := NewSampleBlock(4)
	eq.ProcessBlock(in, out)

	preChangeX1 := eq.bassL.x1

	eq.SetTrebleGain(3) // recompute treble only; bass history untouched
	if eq.bassL.x1 != preChangeX1 {
		t.Errorf("bass filter history mutated by unrelated parameter change")
	}
}
