package analysis

import "math"

// ReferenceCurveKind selects which tonal-balance reference curve §4.7.3
// compares the measured spectrum against.
type ReferenceCurveKind int

const (
	ReferenceKWeighting ReferenceCurveKind = iota
	ReferenceFletcherMunson
	ReferenceFlat
)

// curvePoint is one (frequency, level) anchor of a reference curve; levels
// are relative dB, interpolated linearly in log-frequency space.
type curvePoint struct {
	hz float64
	db float64
}

// kWeightingCurve approximates ITU-R BS.1770-4's K-weighting shelf: a
// ~+4 dB high-shelf above ~1.5 kHz (the "head" stage of the two-stage
// K filter) expressed as a handful of anchor points rather than the full
// biquad cascade, since tonal-balance comparison only needs the curve's
// shape at seven band centres.
var kWeightingCurve = []curvePoint{
	{40, 0}, {155, 0}, {375, 0}, {1000, 0.5},
	{2800, 3.0}, {5000, 4.0}, {10000, 4.0}, {20000, 4.0},
}

// fletcherMunsonCurve approximates the 80-phon equal-loudness contour,
// inverted so it represents the spectral tilt a "balanced to the ear"
// master should follow (bass and extreme highs need more energy to sound
// equally loud as the midrange).
var fletcherMunsonCurve = []curvePoint{
	{40, 6}, {155, 2}, {375, 0}, {1000, 0},
	{2800, -2}, {5000, 0}, {10000, 3}, {20000, 8},
}

var flatCurve = []curvePoint{
	{40, 0}, {20000, 0},
}

func curveFor(kind ReferenceCurveKind) []curvePoint {
	switch kind {
	case ReferenceFletcherMunson:
		return fletcherMunsonCurve
	case ReferenceFlat:
		return flatCurve
	default:
		return kWeightingCurve
	}
}

// ReferenceDB interpolates a reference curve linearly in log-frequency
// space at hz, per §4.7.3. Frequencies outside the curve's anchor range
// clamp to the nearest endpoint.
func ReferenceDB(kind ReferenceCurveKind, hz float64) float64 {
	curve := curveFor(kind)

	logHz := math.Log10(hz)

	if logHz <= math.Log10(curve[0].hz) {
		return curve[0].db
	}
	last := curve[len(curve)-1]
	if logHz >= math.Log10(last.hz) {
		return last.db
	}

	for i := 0; i < len(curve)-1; i++ {
		a, b := curve[i], curve[i+1]
		logA, logB := math.Log10(a.hz), math.Log10(b.hz)
		if logHz >= logA && logHz <= logB {
			if logB == logA {
				return a.db
			}
			t := (logHz - logA) / (logB - logA)
			return a.db + t*(b.db-a.db)
		}
	}

	return last.db
}
