package analysis

import (
	"math"
	"sort"
)

func clampScore(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return x
}

// frequencyScore implements §4.7.5: 100 minus the weighted sum of tonal
// deviations.
func frequencyScore(tonalIssues []Issue) float64 {
	score := 100.0
	for _, iss := range tonalIssues {
		score -= iss.Severity.weight() * math.Abs(iss.DeviationDB) * 0.5
	}
	return clampScore(score)
}

// dynamicsScore implements §4.7.5's crest-factor-centred scoring.
func dynamicsScore(crestDB float64) float64 {
	score := 100.0
	switch {
	case crestDB < 8:
		score -= 8 * (8 - crestDB)
	case crestDB > 12:
		score -= 3 * (crestDB - 12)
	}
	return clampScore(score)
}

// stereoScore implements §4.7.5's correlation-baseline + phase-issue
// penalty scoring.
func stereoScore(overallCorrelation float64, phaseIssues []Issue) float64 {
	var baseline float64
	switch {
	case overallCorrelation < 0:
		baseline = 30 - 30*overallCorrelation
	case overallCorrelation < 0.5:
		baseline = 60 + 40*overallCorrelation
	default:
		baseline = 80 + 40*(overallCorrelation-0.5)
	}

	for _, iss := range phaseIssues {
		baseline -= 5 * iss.Severity.weight()
	}

	return clampScore(baseline)
}

// clarityScore implements §4.7.5: 100 minus the weighted sum of masking
// ratios.
func clarityScore(maskingIssues []Issue) float64 {
	score := 100.0
	for _, iss := range maskingIssues {
		score -= iss.Severity.weight() * iss.RatioDB * 0.3
	}
	return clampScore(score)
}

// loudnessScore implements §4.7.5's LUFS/true-peak penalty scoring.
func loudnessScore(lufs, truePeakDB float64) float64 {
	score := 100.0
	if lufs < -23 {
		score -= 2 * (math.Abs(lufs) - 23)
	}
	if lufs > -6 {
		score -= 3 * (lufs + 6)
	}
	if truePeakDB > -1 {
		score -= 10 * (truePeakDB + 1)
	}
	return clampScore(score)
}

// overallScore implements §4.7.5's fixed-weight rounding.
func overallScore(b ScoreBreakdown) int {
	raw := 0.25*b.Frequency + 0.20*b.Dynamics + 0.20*b.Stereo + 0.20*b.Clarity + 0.15*b.Loudness
	return int(math.Round(raw))
}

// sortIssuesBySeverityThenConfidence sorts issues first by severity
// weight descending, then by confidence descending, per §4.7.5's priority
// issue ordering.
func sortIssuesBySeverityThenConfidence(issues []Issue) []Issue {
	sorted := make([]Issue, len(issues))
	copy(sorted, issues)

	sort.SliceStable(sorted, func(i, j int) bool {
		wi, wj := sorted[i].Severity.weight(), sorted[j].Severity.weight()
		if wi != wj {
			return wi > wj
		}
		return sorted[i].Confidence > sorted[j].Confidence
	})

	return sorted
}

func groupBySeverity(issues []Issue) map[Severity][]Issue {
	grouped := make(map[Severity][]Issue)
	for _, iss := range issues {
		grouped[iss.Severity] = append(grouped[iss.Severity], iss)
	}
	return grouped
}

// strengthsAndImprovements implements §4.7.5's thresholded-rule strings.
func strengthsAndImprovements(b ScoreBreakdown, crestDB float64) (strengths, improvements []string) {
	if b.Frequency >= 80 {
		strengths = append(strengths, "well-balanced frequency response")
	} else if b.Frequency < 60 {
		improvements = append(improvements, "tonal balance deviates noticeably from the reference curve in several bands")
	}

	if b.Dynamics >= 80 {
		strengths = append(strengths, "healthy dynamic range")
	} else if crestDB < 6 {
		improvements = append(improvements, "dynamic range is very limited — the mix sounds over-compressed")
	} else if crestDB > 15 {
		improvements = append(improvements, "dynamic range is unusually wide — consider gentle bus compression")
	}

	if b.Stereo >= 80 {
		strengths = append(strengths, "solid stereo image with good mono compatibility")
	} else if b.Stereo < 50 {
		improvements = append(improvements, "stereo correlation is weak — check for phase issues or excessive widening")
	}

	if b.Clarity >= 80 {
		strengths = append(strengths, "clean separation between instruments with little frequency masking")
	} else if b.Clarity < 60 {
		improvements = append(improvements, "significant frequency masking is reducing mix clarity")
	}

	if b.Loudness >= 80 {
		strengths = append(strengths, "loudness is well within target range")
	} else if b.Loudness < 60 {
		improvements = append(improvements, "loudness is outside the targeted range for the intended platform")
	}

	return strengths, improvements
}

// estimatedImprovement implements §4.7.5: capped sum of
// severity_weight*confidence*2 across all issues, never exceeding the
// headroom to a perfect 100 score.
func estimatedImprovement(issues []Issue, overall int) float64 {
	var sum float64
	for _, iss := range issues {
		sum += iss.Severity.weight() * iss.Confidence * 2
	}
	headroom := float64(100 - overall)
	return math.Min(sum, headroom)
}

// GenerateCritique implements §4.7.5/§4.8: given every issue and the raw
// metrics, aggregate the five-category score breakdown, the overall
// score, strengths/improvements, top-5 priority issues, and the
// estimated-improvement figure.
func GenerateCritique(allIssues []Issue, metrics Metrics) MixCritique {
	var tonalIssues, phaseIssues, maskingIssues []Issue
	for _, iss := range allIssues {
		switch iss.Category {
		case CategoryTonal:
			tonalIssues = append(tonalIssues, iss)
		case CategoryPhase:
			phaseIssues = append(phaseIssues, iss)
		case CategoryMasking:
			maskingIssues = append(maskingIssues, iss)
		}
	}

	breakdown := ScoreBreakdown{
		Frequency: frequencyScore(tonalIssues),
		Dynamics:  dynamicsScore(metrics.Dynamics.CrestFactorDB),
		Stereo:    stereoScore(metrics.OverallCorrelation, phaseIssues),
		Clarity:   clarityScore(maskingIssues),
		Loudness:  loudnessScore(metrics.Dynamics.IntegratedLUFS, metrics.Dynamics.TruePeakDB),
	}

	overall := overallScore(breakdown)
	strengths, improvements := strengthsAndImprovements(breakdown, metrics.Dynamics.CrestFactorDB)

	sorted := sortIssuesBySeverityThenConfidence(allIssues)
	priority := sorted
	if len(priority) > 5 {
		priority = priority[:5]
	}

	return MixCritique{
		Overall:              overall,
		Breakdown:            breakdown,
		Strengths:            strengths,
		Improvements:         improvements,
		PriorityIssues:       priority,
		EstimatedImprovement: estimatedImprovement(allIssues, overall),
	}
}
