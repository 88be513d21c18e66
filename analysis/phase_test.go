package analysis

import (
	"math"
	"testing"
)

// TestDetectPhaseOutOfPhaseMid reproduces the canonical "perfectly
// out-of-phase" scenario: a 1kHz sine on the left channel with its
// negation on the right. Overall correlation must land in [-1.0, -0.98],
// the mid band must report a critical issue, and that band must be
// flagged mono-incompatible.
func TestDetectPhaseOutOfPhaseMid(t *testing.T) {
	t.Parallel()

	const sampleRate = 48000.0
	const freq = 1000.0
	n := int(1.1 * sampleRate)

	left := make([]float64, n)
	right := make([]float64, n)
	for i := range left {
		left[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
		right[i] = -left[i]
	}

	cfg := DefaultConfig()
	issues, bands, overall := DetectPhase(left, right, sampleRate, cfg, nil)

	if overall < -1.0 || overall > -0.98 {
		t.Errorf("overall correlation = %v, want in [-1.0, -0.98]", overall)
	}

	var midBand *PhaseBandCorrelation
	for i := range bands {
		if bands[i].Name == "mid" {
			midBand = &bands[i]
		}
	}
	if midBand == nil {
		t.Fatal("no mid band reported")
	}
	if midBand.MonoCompatible {
		t.Error("mid band reported mono compatible, want false")
	}
	if midBand.Correlation > -0.5 {
		t.Errorf("mid band correlation = %v, want < -0.5", midBand.Correlation)
	}

	foundCritical := false
	for _, iss := range issues {
		if iss.Category == CategoryPhase && iss.Description != "" && iss.Severity == SeverityCritical {
			foundCritical = true
		}
	}
	if !foundCritical {
		t.Error("expected at least one critical phase issue")
	}
}

// TestPearsonCorrelationIdenticalSignals verifies a signal against itself
// has correlation 1.
func TestPearsonCorrelationIdenticalSignals(t *testing.T) {
	t.Parallel()

	sig := make([]float64, 1000)
	for i := range sig {
		sig[i] = math.Sin(2 * math.Pi * 200 * float64(i) / 48000)
	}

	corr := pearsonCorrelation(sig, sig)
	if math.Abs(corr-1.0) > 1e-9 {
		t.Errorf("correlation = %v, want 1.0", corr)
	}
}

// TestPearsonCorrelationSilence verifies the zero-variance guard returns 0
// rather than NaN.
func TestPearsonCorrelationSilence(t *testing.T) {
	t.Parallel()

	silence := make([]float64, 256)
	if corr := pearsonCorrelation(silence, silence); corr != 0 {
		t.Errorf("correlation = %v, want 0 for silence", corr)
	}
}

// TestSevenBandEdgesCoverFullRange verifies the derived band edges are
// contiguous and span from 0 to 24000 Hz.
func TestSevenBandEdgesCoverFullRange(t *testing.T) {
	t.Parallel()

	edges := sevenBandEdges()
	if edges[0].low != 0 {
		t.Errorf("first band low = %v, want 0", edges[0].low)
	}
	if edges[len(edges)-1].high != 24000 {
		t.Errorf("last band high = %v, want 24000", edges[len(edges)-1].high)
	}
	for i := 1; i < len(edges); i++ {
		if math.Abs(edges[i].low-edges[i-1].high) > 1e-9 {
			t.Errorf("band %d low %v does not match band %d high %v", i, edges[i].low, i-1, edges[i-1].high)
		}
	}
}
