// Package mastering implements a real-time stereo mastering chain: input
// trim, tonal EQ, dynamics (compressor + limiter), safety ceiling, output
// trim and soft clipping, plus metering taps and an offline mix-critique
// analyser. See dsp/ for the individual processors and analysis/ for the
// offline pipeline.
package mastering

import "github.com/soundforge/masterchain/dsp"

// Supported sample rates, per the external interface contract.
var supportedSampleRates = map[int]bool{
	44100:  true,
	48000:  true,
	88200:  true,
	96000:  true,
	176400: true,
	192000: true,
}

// Supported block sizes, per the external interface contract.
var supportedBlockSizes = map[int]bool{
	64:  true,
	128: true,
	256: true,
}

// DefaultSampleRate and DefaultBlockSize are the nominal operating point.
const (
	DefaultSampleRate = 48000
	DefaultBlockSize  = 128
)

// SampleBlock is the stereo sample container shared across the real-time
// chain and its processors. See dsp.SampleBlock for the field contract.
type SampleBlock = dsp.SampleBlock

// NewSampleBlock allocates a zeroed stereo block of the given length.
func NewSampleBlock(n int) SampleBlock {
	return dsp.NewSampleBlock(n)
}
