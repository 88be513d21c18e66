package analysis

import "math"

// barkOf computes the Bark-scale value of a frequency per §4.7.1:
// 26.81*f/(1960+f) - 0.53. Strictly increasing over (0, 24000] Hz, per
// §8's bark-mapping-monotonicity property.
func barkOf(hz float64) float64 {
	return 26.81*hz/(1960+hz) - 0.53
}

// spectralPeak is a local maximum found in one frame's magnitude-dB
// spectrum, candidate for masker or maskee role.
type spectralPeak struct {
	bin      int
	hz       float64
	levelDB  float64
	bark     float64
}

// findPeaks locates local maxima at least 6 dB above the average of their
// four neighbouring bins and at least -60 dB absolute, per §4.7.1.
func findPeaks(magDB []float64, binHzVal float64) []spectralPeak {
	var peaks []spectralPeak

	for i := 2; i < len(magDB)-2; i++ {
		level := magDB[i]
		if level < -60 {
			continue
		}

		neighborAvg := (magDB[i-2] + magDB[i-1] + magDB[i+1] + magDB[i+2]) / 4
		if level-neighborAvg < 6 {
			continue
		}
		if level < magDB[i-1] || level < magDB[i+1] {
			continue
		}

		hz := float64(i) * binHzVal
		peaks = append(peaks, spectralPeak{
			bin:     i,
			hz:      hz,
			levelDB: level,
			bark:    barkOf(hz),
		})
	}

	return peaks
}

// maskingSeverity maps a masking ratio in dB to a severity per §4.7.1's
// threshold table.
func maskingSeverity(ratioDB float64) Severity {
	switch {
	case ratioDB >= 20:
		return SeverityCritical
	case ratioDB >= 15:
		return SeverityHigh
	case ratioDB >= 10:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// maskingConfidence implements §4.7.1's confidence formula:
// 0.7*min(ratio/20,1) + 0.3*min(prominence/12,1).
func maskingConfidence(ratioDB, prominenceDB float64) float64 {
	a := ratioDB / 20
	if a > 1 {
		a = 1
	}
	if a < 0 {
		a = 0
	}
	b := prominenceDB / 12
	if b > 1 {
		b = 1
	}
	if b < 0 {
		b = 0
	}
	return 0.7*a + 0.3*b
}

// detectMaskingInFrame finds candidate masking issues within a single
// frame's peak set, per §4.7.1's spreading-function rule.
func detectMaskingInFrame(peaks []spectralPeak, magDB []float64, binHzVal, startSec float64, minConfidence float64, minSeverity Severity) []Issue {
	var issues []Issue

	for _, masker := range peaks {
		for maskeeBin, maskeeLevel := range magDB {
			if maskeeBin == masker.bin {
				continue
			}
			maskeeHz := float64(maskeeBin) * binHzVal
			maskeeBark := barkOf(maskeeHz)

			deltaB := maskeeBark - masker.bark

			var threshold float64
			switch {
			case math.Abs(deltaB) < 0.1:
				threshold = masker.levelDB - 6
			case deltaB < 0:
				threshold = masker.levelDB + (-27.0)*math.Abs(deltaB)
			default:
				threshold = masker.levelDB + (-12.0)*deltaB
			}

			ratio := threshold - maskeeLevel
			if ratio <= 6 {
				continue
			}

			severity := maskingSeverity(ratio)
			if severity < minSeverity {
				continue
			}

			prominence := masker.levelDB - maskeeLevel
			confidence := maskingConfidence(ratio, prominence)
			if confidence < minConfidence {
				continue
			}

			issues = append(issues, Issue{
				Category:      CategoryMasking,
				Severity:      severity,
				Confidence:    confidence,
				FrequencyLow:  math.Min(masker.hz, maskeeHz),
				FrequencyHigh: math.Max(masker.hz, maskeeHz),
				Description:   "a loud tone is masking a quieter one nearby in frequency",
				Suggestion:    "consider a narrow cut near the masked frequency or separating the two sounds in the mix",
				Time:          TimeRange{StartSec: startSec, EndSec: startSec},
				MaskerHz:      masker.hz,
				MaskedHz:      maskeeHz,
				RatioDB:       ratio,
			})
		}
	}

	return issues
}

// mergeMaskingIssues merges temporally adjacent candidates whose time
// ranges overlap and whose masker/maskee frequencies are within 100 Hz,
// per §4.7.1, keeping the maximum severity/confidence and the extended
// time range.
func mergeMaskingIssues(issues []Issue) []Issue {
	merged := make([]Issue, 0, len(issues))

	for _, cand := range issues {
		mergedInto := false

		for i := range merged {
			existing := &merged[i]
			overlaps := cand.Time.StartSec <= existing.Time.EndSec && existing.Time.StartSec <= cand.Time.EndSec
			near := math.Abs(cand.MaskerHz-existing.MaskerHz) < 100 && math.Abs(cand.MaskedHz-existing.MaskedHz) < 100

			if overlaps && near {
				if cand.Severity > existing.Severity {
					existing.Severity = cand.Severity
				}
				if cand.Confidence > existing.Confidence {
					existing.Confidence = cand.Confidence
				}
				if cand.Time.StartSec < existing.Time.StartSec {
					existing.Time.StartSec = cand.Time.StartSec
				}
				if cand.Time.EndSec > existing.Time.EndSec {
					existing.Time.EndSec = cand.Time.EndSec
				}
				mergedInto = true
				break
			}
		}

		if !mergedInto {
			merged = append(merged, cand)
		}
	}

	return merged
}

// DetectMasking runs the frequency-masking detector of §4.7.1 over the
// mono-summed buffer's STFT, returning merged issues.
func DetectMasking(monoSamples []float64, sampleRate float64, cfg Config, cancel func() bool) []Issue {
	frameSize := cfg.FFTSize
	hop := int(float64(frameSize) * cfg.HopFraction)
	if hop <= 0 {
		hop = frameSize / 4
	}

	it := newSTFTIterator(monoSamples, frameSize, hop, sampleRate)
	bh := binHz(frameSize, sampleRate)

	var all []Issue

	for {
		if cancel != nil && cancel() {
			break
		}
		frame, ok := it.Next()
		if !ok {
			break
		}

		magDB := toDB(frame.Magnitude)
		peaks := findPeaks(magDB, bh)
		if len(peaks) == 0 {
			continue
		}

		issues := detectMaskingInFrame(peaks, magDB, bh, frame.StartSec, cfg.MinConfidence, cfg.MinSeverity)
		all = append(all, issues...)
	}

	return mergeMaskingIssues(all)
}
