package dsp

import "math"

// SampleBlock is a fixed-capacity stereo block of planar samples. The host
// allocates blocks; a processor borrows Left/Right for input, writes
// Left/Right for output, and never retains the slices. Invariant: every
// processor's output block has the same length as its input block.
type SampleBlock struct {
	Left  []float64
	Right []float64
}

// Len returns the block's sample count (0 if the channels disagree, which
// never happens for a block built by NewSampleBlock).
func (b SampleBlock) Len() int {
	if len(b.Left) != len(b.Right) {
		return 0
	}
	return len(b.Left)
}

// NewSampleBlock allocates a zeroed stereo block of the given length.
func NewSampleBlock(n int) SampleBlock {
	return SampleBlock{Left: make([]float64, n), Right: make([]float64, n)}
}

// CopyInto copies src into dst sample-for-sample.
func CopyInto(dst, src SampleBlock) {
	copy(dst.Left, src.Left)
	copy(dst.Right, src.Right)
}

// Sanitize replaces a NaN/Inf sample with 0, per the numerical-degenerate
// handling rule: division by zero cannot occur by construction, but a
// malformed input sample must not propagate through the chain.
func Sanitize(x float64) (value float64, replaced bool) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, true
	}
	return x, false
}

// SanitizeBlock scrubs NaN/Inf samples in place, returning true if any
// sample was replaced.
func SanitizeBlock(b SampleBlock) bool {
	dirty := false
	for i, v := range b.Left {
		if c, replaced := Sanitize(v); replaced {
			b.Left[i] = c
			dirty = true
		}
	}
	for i, v := range b.Right {
		if c, replaced := Sanitize(v); replaced {
			b.Right[i] = c
			dirty = true
		}
	}
	return dirty
}
