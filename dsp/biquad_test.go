package dsp

import (
	"math"
	"testing"
)

// TestBiquadIdentityPassesThrough verifies the identity configuration is a
// true pass-through.
func TestBiquadIdentityPassesThrough(t *testing.T) {
	t.Parallel()

	var bq biquad
	bq.identity()

	for _, x := range []float64{0, 0.5, -0.5, 1, -1} {
		if got := bq.process(x); got != x {
			t.Errorf("process(%v) = %v, want %v", x, got, x)
		}
	}
}

// TestBiquadZeroGainShelfCollapsesToIdentity verifies a shelf built with a
// gain within zeroGainTolerance of 0 dB behaves as identity.
func TestBiquadZeroGainShelfCollapsesToIdentity(t *testing.T) {
	t.Parallel()

	var bq biquad
	bq.lowShelf(100, 0.0, testSampleRate)

	if bq.b0 != 1 || bq.b1 != 0 || bq.b2 != 0 || bq.a1 != 0 || bq.a2 != 0 {
		t.Errorf("zero-gain low shelf did not collapse to identity: %+v", bq)
	}
}

// TestBiquadLowShelfBoostRaisesDCGain verifies a positive low-shelf gain
// raises the filter's response at DC (steady-state unit input).
func TestBiquadLowShelfBoostRaisesDCGain(t *testing.T) {
	t.Parallel()

	var bq biquad
	bq.lowShelf(200, 6.0, testSampleRate)

	var y float64
	for i := 0; i < 10000; i++ {
		y = bq.process(1.0)
	}

	if y <= 1.0 {
		t.Errorf("steady-state DC response = %v, want > 1.0 for +6dB low shelf", y)
	}
}

// TestBiquadHighShelfCutLowersNyquistGain verifies a negative high-shelf
// gain lowers the filter's response near Nyquist (alternating +1/-1 input).
func TestBiquadHighShelfCutLowersNyquistGain(t *testing.T) {
	t.Parallel()

	var bq biquad
	bq.highShelf(8000, -6.0, testSampleRate)

	var last float64
	sign := 1.0
	for i := 0; i < 10000; i++ {
		last = bq.process(sign)
		sign = -sign
	}

	if math.Abs(last) >= 1.0 {
		t.Errorf("steady-state Nyquist response magnitude = %v, want < 1.0 for -6dB high shelf", math.Abs(last))
	}
}

// TestBiquadResetClearsHistoryNotCoefficients verifies reset zeroes sample
// history while leaving coefficients untouched.
func TestBiquadResetClearsHistoryNotCoefficients(t *testing.T) {
	t.Parallel()

	var bq biquad
	bq.lowShelf(100, 6.0, testSampleRate)
	bq.process(1.0)
	bq.process(0.5)

	b0, b1, b2, a1, a2 := bq.b0, bq.b1, bq.b2, bq.a1, bq.a2
	bq.reset()

	if bq.x1 != 0 || bq.x2 != 0 || bq.y1 != 0 || bq.y2 != 0 {
		t.Errorf("reset did not clear history: %+v", bq)
	}
	if bq.b0 != b0 || bq.b1 != b1 || bq.b2 != b2 || bq.a1 != a1 || bq.a2 != a2 {
		t.Errorf("reset mutated coefficients")
	}
}
