package analysis

import (
	"math"

	"github.com/soundforge/masterchain/dsp"
)

// crestRecommendation maps a crest factor in dB to the textual
// recommendation bands of §4.7.4.
func crestRecommendation(crestDB float64) string {
	switch {
	case crestDB < 6:
		return "over-compressed"
	case crestDB <= 10:
		return "modern"
	case crestDB <= 15:
		return "natural"
	default:
		return "wide — consider gentle compression"
	}
}

// AnalyzeDynamics computes §4.7.4's metrics over a mono-summed buffer:
// peak, RMS, crest factor, and the loudness/true-peak proxies reserved by
// §9's first two Open Questions. monoSamples is assumed non-empty.
func AnalyzeDynamics(monoSamples []float64) DynamicsMetrics {
	var peak, sumSq float64
	for _, s := range monoSamples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
		sumSq += s * s
	}
	rms := math.Sqrt(sumSq / float64(len(monoSamples)))

	var crestDB float64
	if rms > 1e-10 && peak > 1e-10 {
		// dsp.FastLog2's polynomial log2 approximation is accurate enough
		// for this coarse, once-per-track ratio, and keeps the dB-domain
		// math consistent with the real-time chain's conventions.
		crestDB = 20 * dsp.FastLog2(peak/rms) / dsp.FastLog2(10)
	}

	return DynamicsMetrics{
		PeakLinear:     peak,
		RMSLinear:      rms,
		CrestFactorDB:  crestDB,
		IntegratedLUFS: dsp.LinearToDBSafe(rms),
		TruePeakDB:     dsp.LinearToDBSafe(peak),
		Recommendation: crestRecommendation(crestDB),
	}
}
