package analysis

import (
	"math"
	"testing"
)

// TestBarkMappingMonotonicity verifies §8's bark-mapping-monotonicity
// property: strictly increasing over (0, 24000] Hz.
func TestBarkMappingMonotonicity(t *testing.T) {
	t.Parallel()

	prev := barkOf(1)
	for hz := 10.0; hz <= 24000; hz += 10 {
		cur := barkOf(hz)
		if cur <= prev {
			t.Fatalf("bark(%v) = %v not greater than previous %v", hz, cur, prev)
		}
		prev = cur
	}
}

// TestFindPeaksIgnoresQuietBins verifies the -60 dB absolute floor.
func TestFindPeaksIgnoresQuietBins(t *testing.T) {
	t.Parallel()

	magDB := make([]float64, 64)
	for i := range magDB {
		magDB[i] = -90
	}
	magDB[32] = -70 // prominent relative to neighbors, but below -60 absolute

	peaks := findPeaks(magDB, 10)
	if len(peaks) != 0 {
		t.Errorf("found %d peaks below -60dB absolute floor, want 0", len(peaks))
	}
}

// TestFindPeaksDetectsProminentBin verifies a bin well above its
// neighbours and above -60dB is detected.
func TestFindPeaksDetectsProminentBin(t *testing.T) {
	t.Parallel()

	magDB := make([]float64, 64)
	for i := range magDB {
		magDB[i] = -40
	}
	magDB[32] = -10

	peaks := findPeaks(magDB, 10)
	found := false
	for _, p := range peaks {
		if p.bin == 32 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected peak at bin 32, got %v", peaks)
	}
}

// TestMaskingConfidenceBounds verifies the confidence formula saturates at 1.
func TestMaskingConfidenceBounds(t *testing.T) {
	t.Parallel()

	c := maskingConfidence(100, 100)
	if math.Abs(c-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0 when both terms saturate", c)
	}
}

// TestMergeMaskingIssuesCombinesOverlapping verifies temporally adjacent,
// frequency-close candidates merge into one, keeping max severity.
func TestMergeMaskingIssuesCombinesOverlapping(t *testing.T) {
	t.Parallel()

	issues := []Issue{
		{MaskerHz: 1000, MaskedHz: 500, Severity: SeverityLow, Confidence: 0.6, Time: TimeRange{0, 0.1}},
		{MaskerHz: 1010, MaskedHz: 510, Severity: SeverityHigh, Confidence: 0.9, Time: TimeRange{0.05, 0.15}},
		{MaskerHz: 5000, MaskedHz: 200, Severity: SeverityLow, Confidence: 0.6, Time: TimeRange{0.05, 0.15}},
	}

	merged := mergeMaskingIssues(issues)
	if len(merged) != 2 {
		t.Fatalf("merged count = %d, want 2", len(merged))
	}

	var combined *Issue
	for i := range merged {
		if merged[i].MaskerHz == 1000 {
			combined = &merged[i]
		}
	}
	if combined == nil {
		t.Fatal("expected a merged entry near 1000 Hz")
	}
	if combined.Severity != SeverityHigh {
		t.Errorf("merged severity = %v, want high", combined.Severity)
	}
	if combined.Time.EndSec != 0.15 {
		t.Errorf("merged end time = %v, want 0.15", combined.Time.EndSec)
	}
}
