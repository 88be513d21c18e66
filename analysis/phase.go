package analysis

import "math"

const (
	phaseWindowSec     = 1.0
	phaseOverlapFrac   = 0.5
	phaseFFTSize       = 2048
)

// bandCorrelation computes §4.7.2's magnitude-weighted cosine of phase
// difference for one band across one stereo frame pair:
//
//	corr = sum(|L|*|R|*cos(angleL-angleR)) / sqrt(sum(|L|^2) * sum(|R|^2))
func bandCorrelation(left, right Frame, startBin, endBin int) float64 {
	var num, sumL2, sumR2 float64

	for k := startBin; k <= endBin && k < len(left.Magnitude) && k < len(right.Magnitude); k++ {
		magL, magR := left.Magnitude[k], right.Magnitude[k]
		num += magL * magR * math.Cos(left.Phase[k]-right.Phase[k])
		sumL2 += magL * magL
		sumR2 += magR * magR
	}

	denom := math.Sqrt(sumL2 * sumR2)
	if denom < 1e-20 {
		return 0
	}
	return num / denom
}

// phaseSeverity maps a band correlation value to a severity per §4.7.2.
func phaseSeverity(corr float64) Severity {
	switch {
	case corr < -0.5:
		return SeverityCritical
	case corr < -0.3:
		return SeverityHigh
	case corr < -0.1:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// bandBinRange converts a band's [lowHz, highHz) into an inclusive bin
// range for the given FFT size / sample rate.
func bandBinRange(lowHz, highHz, frameSize, sampleRate float64) (int, int) {
	bh := sampleRate / frameSize
	lo := int(lowHz / bh)
	hi := int(highHz / bh)
	if lo < 0 {
		lo = 0
	}
	return lo, hi
}

// sevenBandEdges derives half-open [low, high) Hz ranges around each of
// the seven published band centres, splitting the gaps between centres.
type bandEdge struct {
	name   string
	center float64
	low    float64
	high   float64
}

func sevenBandEdges() []bandEdge {
	edges := make([]bandEdge, len(sevenBands))

	for i, b := range sevenBands {
		var low, high float64
		if i == 0 {
			low = 0
		} else {
			low = math.Sqrt(sevenBands[i-1].hz * b.hz) // geometric mean: log-space midpoint
		}
		if i == len(sevenBands)-1 {
			high = 24000
		} else {
			high = math.Sqrt(b.hz * sevenBands[i+1].hz)
		}
		edges[i] = bandEdge{name: b.name, center: b.hz, low: low, high: high}
	}

	return edges
}

// pearsonCorrelation computes the time-domain Pearson correlation of two
// equal-length signals, per §4.7.2's "overall correlation" definition.
func pearsonCorrelation(left, right []float64) float64 {
	n := len(left)
	if n == 0 || n != len(right) {
		return 0
	}

	var meanL, meanR float64
	for i := 0; i < n; i++ {
		meanL += left[i]
		meanR += right[i]
	}
	meanL /= float64(n)
	meanR /= float64(n)

	var num, sumL2, sumR2 float64
	for i := 0; i < n; i++ {
		dl := left[i] - meanL
		dr := right[i] - meanR
		num += dl * dr
		sumL2 += dl * dl
		sumR2 += dr * dr
	}

	denom := math.Sqrt(sumL2 * sumR2)
	if denom < 1e-20 {
		return 0
	}
	return num / denom
}

// DetectPhase runs the stereo phase-correlation analyser of §4.7.2: per
// 1-second, 50%-overlap window, FFT both channels and compute per-band
// correlation; emit an issue when a band's correlation drops below 0.3.
func DetectPhase(left, right []float64, sampleRate float64, cfg Config, cancel func() bool) ([]Issue, []PhaseBandCorrelation, float64) {
	windowSize := int(phaseWindowSec * sampleRate)
	if windowSize > phaseFFTSize {
		// Use phaseFFTSize as the transform size (zero-padding is implicit
		// via frame truncation, matching §4.7's "N=2048... over 1-second
		// windows" phrasing: each 1s window supplies many 2048-sample FFT
		// frames, averaged per band below).
		windowSize = phaseFFTSize
	}
	hop := int(float64(windowSize) * phaseOverlapFrac)
	if hop <= 0 {
		hop = windowSize / 2
	}

	itL := newSTFTIterator(left, windowSize, hop, sampleRate)
	itR := newSTFTIterator(right, windowSize, hop, sampleRate)

	edges := sevenBandEdges()
	bandSums := make([]float64, len(edges))
	bandCounts := make([]int, len(edges))

	var issues []Issue

	for {
		if cancel != nil && cancel() {
			break
		}

		frameL, okL := itL.Next()
		frameR, okR := itR.Next()
		if !okL || !okR {
			break
		}

		for i, e := range edges {
			lo, hi := bandBinRange(e.low, e.high, float64(windowSize), sampleRate)
			corr := bandCorrelation(frameL, frameR, lo, hi)
			bandSums[i] += corr
			bandCounts[i]++

			if corr < 0.3 {
				avgEnergy := 0.0
				for k := lo; k <= hi && k < len(frameL.Magnitude); k++ {
					avgEnergy += frameL.Magnitude[k]
				}
				confidence := 0.7*math.Max(-math.Min(corr, 0), 0) + 0.3*math.Min(avgEnergy/1000, 1)
				if confidence < cfg.MinConfidence {
					continue
				}
				severity := phaseSeverity(corr)
				if severity < cfg.MinSeverity {
					continue
				}

				issues = append(issues, Issue{
					Category:       CategoryPhase,
					Severity:       severity,
					Confidence:     confidence,
					FrequencyLow:   e.low,
					FrequencyHigh:  e.high,
					Description:    "stereo image in the " + e.name + " band is poorly correlated",
					Suggestion:     "check for excessive stereo widening or out-of-phase content in this band",
					Time:           TimeRange{StartSec: frameL.StartSec, EndSec: frameL.StartSec + phaseWindowSec},
					Correlation:    corr,
					FrequencyHz:    e.center,
					MonoCompatible: corr >= 0.5,
				})
			}
		}
	}

	bands := make([]PhaseBandCorrelation, len(edges))
	for i, e := range edges {
		avg := 0.0
		if bandCounts[i] > 0 {
			avg = bandSums[i] / float64(bandCounts[i])
		}
		bands[i] = PhaseBandCorrelation{
			Name:           e.name,
			CenterHz:       e.center,
			Correlation:    avg,
			MonoCompatible: avg >= 0.5,
		}
	}

	overall := pearsonCorrelation(left, right)

	return issues, bands, overall
}
