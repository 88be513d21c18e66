package dsp

// Processor is the uniform contract of the chain's Trim, EQ, Compressor and
// Limiter nodes: process one block in place semantics (read in, write out,
// same length), and expose a bypass flag. SoftClip implements ProcessBlock
// only and has no bypass flag, so it does not satisfy this interface. New
// processors are added by writing a new type that satisfies this
// interface, not by subclassing a base processor.
type Processor interface {
	// ProcessBlock consumes in and writes to out. in and out may alias the
	// same underlying block (processors are written to tolerate that).
	// len(out.Left) == len(in.Left) is a hard invariant.
	ProcessBlock(in, out SampleBlock)

	// SetBypass toggles pass-through mode. While bypassed, ProcessBlock
	// must copy input to output unchanged.
	SetBypass(bypass bool)

	// Bypass reports the current bypass state.
	Bypass() bool
}
