package analysis

import "math"

// tonalSeverity maps an absolute deviation in dB to a severity per
// §4.7.3's threshold table.
func tonalSeverity(absDeviation float64) Severity {
	switch {
	case absDeviation >= 15:
		return SeverityCritical
	case absDeviation >= 10:
		return SeverityHigh
	case absDeviation >= 6:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// DetectTonal runs the tonal-balance analyser of §4.7.3: compute RMS
// magnitude in dB for each of the seven bands over the average spectrum
// of monoSamples, compare to the selected reference curve, and emit
// issues where |deviation| exceeds 3 dB.
func DetectTonal(monoSamples []float64, sampleRate float64, cfg Config, cancel func() bool) ([]Issue, []BandEnergy) {
	frameSize := cfg.FFTSize
	hop := int(float64(frameSize) * cfg.HopFraction)
	if hop <= 0 {
		hop = frameSize / 4
	}

	it := newSTFTIterator(monoSamples, frameSize, hop, sampleRate)
	avgMag, _, cancelled := averageMagnitudeSpectrum(it, cancel)
	if cancelled || avgMag == nil {
		return nil, nil
	}

	bh := binHz(frameSize, sampleRate)

	var issues []Issue
	bands := make([]BandEnergy, len(sevenBands))

	for i, b := range sevenBands {
		lowHz := b.hz / math.Sqrt2
		highHz := b.hz * math.Sqrt2
		lo, hi := int(lowHz/bh), int(highHz/bh)
		if hi > len(avgMag)-1 {
			hi = len(avgMag) - 1
		}
		energyDB := -120.0
		if lo <= hi {
			var sumSq float64
			for k := lo; k <= hi; k++ {
				sumSq += avgMag[k] * avgMag[k]
			}
			rms := math.Sqrt(sumSq / float64(hi-lo+1))
			energyDB = 20 * math.Log10(math.Max(rms, 1e-10))
		}
		refDB := ReferenceDB(cfg.ReferenceCurve, b.hz)
		deviation := energyDB - refDB

		bands[i] = BandEnergy{
			Name:       b.name,
			CenterHz:   b.hz,
			EnergyDB:   energyDB,
			ExpectedDB: refDB,
			Deviation:  deviation,
		}

		absDev := math.Abs(deviation)
		if absDev <= 3 {
			continue
		}

		severity := tonalSeverity(absDev)
		if severity < cfg.MinSeverity {
			continue
		}

		// Confidence scales with how far past the 3 dB threshold the
		// deviation sits, saturating at 1.0 by 15 dB past threshold.
		confidence := math.Min((absDev-3)/15, 1)
		if confidence < cfg.MinConfidence {
			continue
		}

		devType := TonalExcessive
		suggestion := "consider a cut around this band"
		if deviation < 0 {
			devType = TonalDeficient
			suggestion = "consider a boost around this band"
		}

		issues = append(issues, Issue{
			Category:      CategoryTonal,
			Severity:      severity,
			Confidence:    confidence,
			FrequencyLow:  lowHz,
			FrequencyHigh: highHz,
			Description:   b.name + " band deviates from the reference curve",
			Suggestion:    suggestion,
			Band:          b.name,
			EnergyDB:      energyDB,
			ExpectedDB:    refDB,
			DeviationDB:   deviation,
			Type:          devType,
		})
	}

	return issues, bands
}
