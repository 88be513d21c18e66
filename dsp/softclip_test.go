package dsp

import (
	"math"
	"testing"
)

// TestSoftClipTransparentBelowKnee verifies samples at or below the first
// region boundary pass through unshaped, per §4.5's identity region.
func TestSoftClipTransparentBelowKnee(t *testing.T) {
	t.Parallel()

	sc := NewSoftClip()

	for _, x := range []float64{0, 0.1, 0.5, 0.9} {
		got := sc.Process(x)
		if math.Abs(got-x) > 0.01 {
			t.Errorf("Process(%v) = %v, want ~%v", x, got, x)
		}
	}
}

// TestSoftClipBounded verifies the curve never exceeds the published bound
// of 1.3 regardless of input magnitude.
func TestSoftClipBounded(t *testing.T) {
	t.Parallel()

	sc := NewSoftClip()

	for _, x := range []float64{1.0, 1.5, 2.0, 10.0, 1e6} {
		got := sc.Process(x)
		if got > 1.3001 {
			t.Errorf("Process(%v) = %v, exceeds bound 1.3", x, got)
		}
		gotNeg := sc.Process(-x)
		if gotNeg < -1.3001 {
			t.Errorf("Process(%v) = %v, exceeds bound -1.3", -x, gotNeg)
		}
	}
}

// TestSoftClipOddSymmetry verifies the curve is odd-symmetric: f(-x) == -f(x).
func TestSoftClipOddSymmetry(t *testing.T) {
	t.Parallel()

	sc := NewSoftClip()

	for _, x := range []float64{0.2, 0.95, 1.2, 1.8, 2.0} {
		pos := sc.Process(x)
		neg := sc.Process(-x)
		if math.Abs(pos+neg) > 1e-9 {
			t.Errorf("asymmetry at x=%v: f(x)=%v f(-x)=%v", x, pos, neg)
		}
	}
}

// TestSoftClipMonotonic verifies the shaped output is non-decreasing as
// input increases across the sampled domain.
func TestSoftClipMonotonic(t *testing.T) {
	t.Parallel()

	sc := NewSoftClip()

	prev := sc.Process(-softClipRange)
	for x := -softClipRange; x <= softClipRange; x += 0.01 {
		cur := sc.Process(x)
		if cur < prev-1e-9 {
			t.Fatalf("non-monotonic at x=%v: prev=%v cur=%v", x, prev, cur)
		}
		prev = cur
	}
}

// TestSoftClipDegenerateInput verifies NaN/Inf samples are sanitised to 0.
func TestSoftClipDegenerateInput(t *testing.T) {
	t.Parallel()

	sc := NewSoftClip()

	if got := sc.Process(math.NaN()); got != 0 {
		t.Errorf("Process(NaN) = %v, want 0", got)
	}
	if got := sc.Process(math.Inf(1)); got != 0 {
		t.Errorf("Process(+Inf) = %v, want 0", got)
	}
}

// TestSoftClipProcessBlockMatchesProcess verifies ProcessBlock applies the
// same shaping as per-sample Process.
func TestSoftClipProcessBlockMatchesProcess(t *testing.T) {
	t.Parallel()

	sc := NewSoftClip()

	in := NewSampleBlock(16)
	for i := range in.Left {
		in.Left[i] = float64(i)*0.2 - 1.5
		in.Right[i] = -in.Left[i]
	}
	out := NewSampleBlock(16)
	sc.ProcessBlock(in, out)

	for i := range in.Left {
		if want := sc.Process(in.Left[i]); out.Left[i] != want {
			t.Errorf("left[%d] = %v, want %v", i, out.Left[i], want)
		}
		if want := sc.Process(in.Right[i]); out.Right[i] != want {
			t.Errorf("right[%d] = %v, want %v", i, out.Right[i], want)
		}
	}
}
