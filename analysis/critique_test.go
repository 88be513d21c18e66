package analysis

import (
	"strings"
	"testing"
)

// TestGenerateCritiqueScoresWithinBounds verifies every breakdown category
// and the overall score stay within [0,100] regardless of input.
func TestGenerateCritiqueScoresWithinBounds(t *testing.T) {
	t.Parallel()

	issues := []Issue{
		{Category: CategoryTonal, Severity: SeverityCritical, Confidence: 1, DeviationDB: 50},
		{Category: CategoryPhase, Severity: SeverityCritical, Confidence: 1},
		{Category: CategoryMasking, Severity: SeverityCritical, Confidence: 1, RatioDB: 100},
	}
	metrics := Metrics{
		Dynamics: DynamicsMetrics{CrestFactorDB: -5, IntegratedLUFS: -40, TruePeakDB: 5},
	}

	c := GenerateCritique(issues, metrics)

	for name, v := range map[string]float64{
		"Frequency": c.Breakdown.Frequency,
		"Dynamics":  c.Breakdown.Dynamics,
		"Stereo":    c.Breakdown.Stereo,
		"Clarity":   c.Breakdown.Clarity,
		"Loudness":  c.Breakdown.Loudness,
	} {
		if v < 0 || v > 100 {
			t.Errorf("%s score = %v, out of [0,100]", name, v)
		}
	}
	if c.Overall < 0 || c.Overall > 100 {
		t.Errorf("overall = %v, out of [0,100]", c.Overall)
	}
	if c.EstimatedImprovement < 0 || float64(c.Overall)+c.EstimatedImprovement > 100 {
		t.Errorf("estimated improvement %v pushes overall %v past 100", c.EstimatedImprovement, c.Overall)
	}
}

// TestGenerateCritiqueLimitedDynamicRangeMessage reproduces the
// over-compressed scenario: a low crest factor must surface the
// "dynamic range is very limited" improvement string.
func TestGenerateCritiqueLimitedDynamicRangeMessage(t *testing.T) {
	t.Parallel()

	metrics := Metrics{
		Dynamics: DynamicsMetrics{CrestFactorDB: 4, IntegratedLUFS: -14, TruePeakDB: -1},
	}
	c := GenerateCritique(nil, metrics)

	found := false
	for _, s := range c.Improvements {
		if strings.Contains(s, "dynamic range is very limited") {
			found = true
		}
	}
	if !found {
		t.Errorf("improvements = %v, want a mention of limited dynamic range", c.Improvements)
	}
}

// TestGenerateCritiquePriorityIssuesCappedAndOrdered verifies at most five
// priority issues are returned, ordered by severity weight then
// confidence descending.
func TestGenerateCritiquePriorityIssuesCappedAndOrdered(t *testing.T) {
	t.Parallel()

	issues := []Issue{
		{Category: CategoryTonal, Severity: SeverityLow, Confidence: 0.9},
		{Category: CategoryTonal, Severity: SeverityCritical, Confidence: 0.5},
		{Category: CategoryTonal, Severity: SeverityCritical, Confidence: 0.9},
		{Category: CategoryTonal, Severity: SeverityHigh, Confidence: 0.99},
		{Category: CategoryTonal, Severity: SeverityMedium, Confidence: 0.99},
		{Category: CategoryTonal, Severity: SeverityMedium, Confidence: 0.1},
	}

	c := GenerateCritique(issues, Metrics{})
	if len(c.PriorityIssues) > 5 {
		t.Fatalf("priority issues = %d, want at most 5", len(c.PriorityIssues))
	}
	if c.PriorityIssues[0].Severity != SeverityCritical || c.PriorityIssues[0].Confidence != 0.9 {
		t.Errorf("top priority issue = %+v, want critical/0.9 first", c.PriorityIssues[0])
	}
}

// TestGroupBySeverityPartitionsAll verifies every issue ends up in
// exactly one severity bucket.
func TestGroupBySeverityPartitionsAll(t *testing.T) {
	t.Parallel()

	issues := []Issue{
		{Severity: SeverityLow},
		{Severity: SeverityHigh},
		{Severity: SeverityHigh},
	}
	grouped := groupBySeverity(issues)
	if len(grouped[SeverityLow]) != 1 || len(grouped[SeverityHigh]) != 2 {
		t.Errorf("grouped = %+v, want 1 low, 2 high", grouped)
	}
}
