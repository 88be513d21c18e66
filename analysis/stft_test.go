package analysis

import (
	"math"
	"testing"
)

// TestHannWindowEndpointsZero verifies the Hann window tapers to zero at
// both ends, per the standard definition.
func TestHannWindowEndpointsZero(t *testing.T) {
	t.Parallel()

	w := hannWindow(1024)
	if math.Abs(w[0]) > 1e-9 {
		t.Errorf("w[0] = %v, want 0", w[0])
	}
	if math.Abs(w[len(w)-1]) > 1e-9 {
		t.Errorf("w[last] = %v, want 0", w[len(w)-1])
	}
	mid := w[len(w)/2]
	if mid < 0.99 {
		t.Errorf("w[mid] = %v, want ~1.0", mid)
	}
}

// TestSTFTIteratorDetectsSineBin verifies a pure sine tone concentrates
// energy in the expected FFT bin.
func TestSTFTIteratorDetectsSineBin(t *testing.T) {
	t.Parallel()

	const sampleRate = 48000.0
	const frameSize = 4096
	const freq = 1000.0

	samples := make([]float64, frameSize*3)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}

	it := newSTFTIterator(samples, frameSize, frameSize, sampleRate)
	frame, ok := it.Next()
	if !ok {
		t.Fatal("expected a frame")
	}

	bh := binHz(frameSize, sampleRate)
	expectedBin := int(freq / bh)

	peakBin := 0
	peakMag := 0.0
	for i, m := range frame.Magnitude {
		if m > peakMag {
			peakMag = m
			peakBin = i
		}
	}

	if math.Abs(float64(peakBin-expectedBin)) > 1 {
		t.Errorf("peak bin = %d, want near %d", peakBin, expectedBin)
	}
}

// TestSTFTIteratorExhausts verifies Next returns false once no full frame
// remains.
func TestSTFTIteratorExhausts(t *testing.T) {
	t.Parallel()

	it := newSTFTIterator(make([]float64, 100), 64, 64, 48000)
	if _, ok := it.Next(); !ok {
		t.Fatal("expected first frame to succeed")
	}
	if _, ok := it.Next(); ok {
		t.Error("expected second frame to fail, buffer exhausted")
	}
}

// TestBandAverageDBEmptyRangeReturnsFloor verifies an inverted/empty bin
// range returns the -120dB floor rather than panicking or averaging zero
// elements.
func TestBandAverageDBEmptyRangeReturnsFloor(t *testing.T) {
	t.Parallel()

	magDB := []float64{-10, -20, -30}
	got := bandAverageDB(magDB, 1000, 10, 100) // startHz > endHz in bin terms
	if got != -120 {
		t.Errorf("bandAverageDB with empty range = %v, want -120", got)
	}
}
