package dsp

import "math"

// softClipTableSize is the number of lookup-table entries, per §4.5's
// "≥1024 entries" requirement.
const softClipTableSize = 2048

// softClipRange is the input span the table covers: [-softClipRange, +softClipRange].
const softClipRange = 2.0

// shapeSample implements §4.5's three-region curve for a single (unsigned)
// magnitude, before the table is built.
func shapeSample(mag float64) float64 {
	switch {
	case mag <= 0.95:
		return mag
	case mag <= 1.5:
		return 0.95 + math.Tanh((mag-0.95)*2)*(1.5-0.95)/2
	default:
		return math.Tanh(mag) * 1.3
	}
}

// SoftClip is a transparent waveshaper backed by a precomputed lookup
// table with linear interpolation between grid points, per §4.5. The
// table is built once at construction and thereafter immutable, so a
// *SoftClip is safe for concurrent read-only use across goroutines. SoftClip
// has no bypass flag.
type SoftClip struct {
	table []float64 // softClipTableSize entries spanning [-softClipRange, +softClipRange]
	step  float64   // spacing between table entries
}

// NewSoftClip builds the lookup table.
func NewSoftClip() *SoftClip {
	sc := &SoftClip{
		table: make([]float64, softClipTableSize),
		step:  (2 * softClipRange) / float64(softClipTableSize-1),
	}

	for i := range sc.table {
		x := -softClipRange + float64(i)*sc.step
		sign := 1.0
		if x < 0 {
			sign = -1.0
		}
		sc.table[i] = sign * shapeSample(math.Abs(x))
	}

	return sc
}

// Process shapes a single sample via table lookup + linear interpolation.
// Inputs outside [-softClipRange, softClipRange] lie beyond the table and
// are shaped directly by the outer tanh region of the curve, which joins
// the table's edge values continuously and stays bounded by 1.3.
func (sc *SoftClip) Process(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}

	if x > softClipRange {
		return shapeSample(x)
	} else if x < -softClipRange {
		return -shapeSample(-x)
	}

	pos := (x + softClipRange) / sc.step
	idx := int(pos)
	if idx >= len(sc.table)-1 {
		return sc.table[len(sc.table)-1]
	}

	frac := pos - float64(idx)
	return sc.table[idx] + (sc.table[idx+1]-sc.table[idx])*frac
}

// ProcessBlock shapes every sample of a stereo block in place, treating
// both channels identically (soft-clip has no per-channel state).
func (sc *SoftClip) ProcessBlock(in, out SampleBlock) {
	for i := range in.Left {
		out.Left[i] = sc.Process(in.Left[i])
	}
	for i := range in.Right {
		out.Right[i] = sc.Process(in.Right[i])
	}
}
