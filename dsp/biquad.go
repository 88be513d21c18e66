package dsp

import "math"

// shelfQ is the Butterworth Q used for both EQ shelves, per §4.1.
const shelfQ = 1.0 / math.Sqrt2

// zeroGainTolerance is how close a shelf gain must be to 0 dB before the
// biquad collapses to the identity filter, per §4.1.
const zeroGainTolerance = 0.01

// biquad is a direct-form-I two-pole two-zero IIR filter:
//
//	y[n] = b0*x[n] + b1*x[n-1] + b2*x[n-2] - a1*y[n-1] - a2*y[n-2]
//
// Coefficients are pre-normalised by a0. Each instance owns its own
// two-sample input/output history and is not safe for concurrent use.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64
	y1, y2 float64
}

// identity configures the biquad as a pass-through filter. Like the shelf
// setters, it changes only coefficients and leaves sample history intact.
func (bq *biquad) identity() {
	bq.b0, bq.b1, bq.b2, bq.a1, bq.a2 = 1, 0, 0, 0, 0
}

// reset clears the filter's sample history without touching coefficients.
// Per §4.1's edge case note, a coefficient change alone does not introduce
// a discontinuity larger than the existing history; history is preserved
// across coefficient updates and only explicitly reset (e.g. on chain
// reset), not on every parameter change.
func (bq *biquad) reset() {
	bq.x1, bq.x2, bq.y1, bq.y2 = 0, 0, 0, 0
}

// process runs one sample through the recurrence.
func (bq *biquad) process(x float64) float64 {
	y := bq.b0*x + bq.b1*bq.x1 + bq.b2*bq.x2 - bq.a1*bq.y1 - bq.a2*bq.y2

	bq.x2, bq.x1 = bq.x1, x
	bq.y2, bq.y1 = bq.y1, y

	return y
}

// lowShelf configures bq as an RBJ low-shelf filter: gainDB boost/cut below
// freqHz, Q = shelfQ (Butterworth), at the given sample rate.
func (bq *biquad) lowShelf(freqHz, gainDB, sampleRate float64) {
	if math.Abs(gainDB) < zeroGainTolerance {
		bq.identity()
		return
	}

	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freqHz / sampleRate
	cosW0, sinW0 := math.Cos(w0), math.Sin(w0)
	alpha := sinW0 / (2 * shelfQ)
	twoSqrtAAlpha := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) - (a-1)*cosW0 + twoSqrtAAlpha)
	b1 := 2 * a * ((a - 1) - (a+1)*cosW0)
	b2 := a * ((a + 1) - (a-1)*cosW0 - twoSqrtAAlpha)
	a0 := (a + 1) + (a-1)*cosW0 + twoSqrtAAlpha
	a1 := -2 * ((a - 1) + (a+1)*cosW0)
	a2 := (a + 1) + (a-1)*cosW0 - twoSqrtAAlpha

	bq.normalize(b0, b1, b2, a0, a1, a2)
}

// highShelf configures bq as an RBJ high-shelf filter: gainDB boost/cut
// above freqHz, Q = shelfQ (Butterworth), at the given sample rate.
func (bq *biquad) highShelf(freqHz, gainDB, sampleRate float64) {
	if math.Abs(gainDB) < zeroGainTolerance {
		bq.identity()
		return
	}

	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freqHz / sampleRate
	cosW0, sinW0 := math.Cos(w0), math.Sin(w0)
	alpha := sinW0 / (2 * shelfQ)
	twoSqrtAAlpha := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cosW0 + twoSqrtAAlpha)
	b1 := -2 * a * ((a - 1) + (a+1)*cosW0)
	b2 := a * ((a + 1) + (a-1)*cosW0 - twoSqrtAAlpha)
	a0 := (a + 1) - (a-1)*cosW0 + twoSqrtAAlpha
	a1 := 2 * ((a - 1) - (a+1)*cosW0)
	a2 := (a + 1) - (a-1)*cosW0 - twoSqrtAAlpha

	bq.normalize(b0, b1, b2, a0, a1, a2)
}

// normalize divides all coefficients by a0 and stores them.
func (bq *biquad) normalize(b0, b1, b2, a0, a1, a2 float64) {
	bq.b0 = b0 / a0
	bq.b1 = b1 / a0
	bq.b2 = b2 / a0
	bq.a1 = a1 / a0
	bq.a2 = a2 / a0
}
