package mastering

import (
	"log/slog"

	"github.com/soundforge/masterchain/dsp"
)

// Chain is the real-time mastering graph of §2: InputTrim -> PreComp -> EQ
// -> Compressor -> Limiter -> PostComp -> SafetyCeiling -> OutputTrim ->
// SoftClip, with metering taps fanned out on input, post-EQ, post-comp,
// post-limiter and output edges. At most one Chain exists per audio host,
// constructed at driver init and torn down at shutdown, per §9's
// "process-wide registry with explicit lifecycle" note.
type Chain struct {
	sampleRate int
	blockSize  int

	inputTrim     *dsp.Trim
	preComp       *dsp.Trim
	eq            *dsp.EQ
	comp          *dsp.Compressor
	limiter       *dsp.Limiter
	postComp      *dsp.Trim
	safetyCeiling *dsp.Trim
	outputTrim    *dsp.Trim
	softClip      *dsp.SoftClip

	taps []*Tap // arena of taps, referenced by index, per §9

	tapInput       int
	tapPostEQ      int
	tapPostComp    int
	tapPostLimiter int
	tapOutput      int

	params *ParamQueue

	scratch [4]dsp.SampleBlock // one per inter-stage hop, reused every block

	samplesProcessed uint64

	logger *slog.Logger

	nanWarned bool
}

// NewChain validates rate/blockSize/channels against the published sets and
// constructs the full processor graph plus its metering taps. Channels
// must be 2 (stereo); the real-time chain never handles mono directly (an
// upstream adapter is the host's concern per §1's scope).
func NewChain(sampleRate, blockSize, channels int, logger *slog.Logger) (*Chain, error) {
	if !supportedSampleRates[sampleRate] {
		return nil, unsupportedRate(sampleRate)
	}
	if !supportedBlockSizes[blockSize] {
		return nil, unsupportedBlockSize(blockSize)
	}
	if channels != 2 {
		return nil, unsupportedChannels(channels)
	}
	if logger == nil {
		logger = slog.Default()
	}

	sr := float64(sampleRate)

	c := &Chain{
		sampleRate:    sampleRate,
		blockSize:     blockSize,
		inputTrim:     dsp.NewInputTrim(),
		preComp:       dsp.NewCompensationNode(),
		eq:            dsp.NewEQ(sr),
		comp:          dsp.NewCompressor(sr),
		limiter:       dsp.NewLimiter(sr),
		postComp:      dsp.NewCompensationNode(),
		safetyCeiling: dsp.NewCompensationNode(),
		outputTrim:    dsp.NewOutputTrim(),
		softClip:      dsp.NewSoftClip(),
		params:        NewParamQueue(),
		logger:        logger,
	}

	for i := range c.scratch {
		c.scratch[i] = dsp.NewSampleBlock(blockSize)
	}

	c.tapInput = c.addTap("input", sr, blockSize, false)
	c.tapPostEQ = c.addTap("post-eq", sr, blockSize, false)
	c.tapPostComp = c.addTap("post-comp", sr, blockSize, true)
	c.tapPostLimiter = c.addTap("post-limiter", sr, blockSize, true)
	c.tapOutput = c.addTap("output", sr, blockSize, false)

	c.safetyCeiling.SetGainDB(0) // unity by default; host policy may pull it down

	return c, nil
}

func (c *Chain) addTap(name string, sampleRate float64, blockSize int, isDynamics bool) int {
	c.taps = append(c.taps, NewTap(name, sampleRate, blockSize, isDynamics))
	return len(c.taps) - 1
}

// Tap returns the named tap, or nil if no tap carries that name.
func (c *Chain) Tap(name string) *Tap {
	for _, t := range c.taps {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// Taps returns the full arena, in edge order (input first, output last).
func (c *Chain) Taps() []*Tap {
	return c.taps
}

// Params returns the chain's parameter-update submission queue: the
// controller's only way to reach the audio thread's processors.
func (c *Chain) Params() *ParamQueue {
	return c.params
}

// SampleRate and BlockSize report the chain's construction-time operating
// point.
func (c *Chain) SampleRate() int { return c.sampleRate }
func (c *Chain) BlockSize() int  { return c.blockSize }

// ApplyPendingParams drains the parameter queue and applies every update,
// recomputing derived coefficients. Call once per block, before
// ProcessBlock, from the audio callback — never concurrently with
// ProcessBlock. Per §5, a parameter change never takes effect inside a
// block, only at the following block boundary.
func (c *Chain) ApplyPendingParams() {
	for _, u := range c.params.drain() {
		c.applyParam(u)
	}
}

//nolint:gocyclo // flat dispatch table mirrors the parameter surface in §6
func (c *Chain) applyParam(u ParamUpdate) {
	switch u.Target {
	case TargetEQ:
		switch u.Field {
		case FieldBassGain:
			c.eq.SetBassGain(u.Value)
		case FieldTrebleGain:
			c.eq.SetTrebleGain(u.Value)
		case FieldBassFreq:
			c.eq.SetBassFreq(u.Value)
		case FieldTrebleFreq:
			c.eq.SetTrebleFreq(u.Value)
		case FieldBypass:
			c.eq.SetBypass(u.Bool)
		}
	case TargetCompressor:
		switch u.Field {
		case FieldThreshold:
			c.comp.SetThreshold(u.Value)
		case FieldRatio:
			c.comp.SetRatio(u.Value)
		case FieldAttack:
			c.comp.SetAttack(u.Value)
		case FieldRelease:
			c.comp.SetRelease(u.Value)
		case FieldMakeupGain:
			c.comp.SetMakeupGain(u.Value)
		case FieldBypass:
			c.comp.SetBypass(u.Bool)
		}
	case TargetLimiter:
		switch u.Field {
		case FieldThreshold:
			c.limiter.SetThreshold(u.Value)
		case FieldRelease:
			c.limiter.SetRelease(u.Value)
		case FieldCeiling:
			c.limiter.SetCeiling(u.Value)
		case FieldBypass:
			c.limiter.SetBypass(u.Bool)
		}
	case TargetInputTrim:
		switch u.Field {
		case FieldGain:
			c.inputTrim.SetGainDB(u.Value)
		case FieldBypass:
			c.inputTrim.SetBypass(u.Bool)
		}
	case TargetOutputTrim:
		switch u.Field {
		case FieldGain:
			c.outputTrim.SetGainDB(u.Value)
		case FieldBypass:
			c.outputTrim.SetBypass(u.Bool)
		}
	}
}

// ProcessBlock runs in and writes out through the full chain, observing
// every tap along the way. in and out must each have length equal to the
// chain's construction-time block size; out may alias in. Never allocates,
// never blocks, never returns an error — numerical degenerates are
// sanitised to 0 and logged once.
func (c *Chain) ProcessBlock(in, out SampleBlock) {
	if dsp.SanitizeBlock(in) && !c.nanWarned {
		c.nanWarned = true
		c.logger.Warn("non-finite sample replaced with 0", "stage", "chain-input")
	}

	stage0, stage1, stage2, stage3 := c.scratch[0], c.scratch[1], c.scratch[2], c.scratch[3]

	c.taps[c.tapInput].Observe(in, c.samplesProcessed)

	c.inputTrim.ProcessBlock(in, stage0)
	c.preComp.ProcessBlock(stage0, stage0)
	c.eq.ProcessBlock(stage0, stage1)

	c.taps[c.tapPostEQ].Observe(stage1, c.samplesProcessed)

	c.comp.ProcessBlock(stage1, stage2)
	c.taps[c.tapPostComp].PublishGainReduction(c.comp.GainReductionDB(), c.comp.GainReductionDB())
	c.taps[c.tapPostComp].Observe(stage2, c.samplesProcessed)

	c.limiter.ProcessBlock(stage2, stage3)
	c.taps[c.tapPostLimiter].PublishGainReduction(c.limiter.GainReductionDB(), c.limiter.MaxGainReductionDB())
	c.taps[c.tapPostLimiter].Observe(stage3, c.samplesProcessed)

	c.postComp.ProcessBlock(stage3, stage3)
	c.safetyCeiling.ProcessBlock(stage3, stage3)
	c.outputTrim.ProcessBlock(stage3, stage3)
	c.softClip.ProcessBlock(stage3, out)

	c.taps[c.tapOutput].Observe(out, c.samplesProcessed)

	c.samplesProcessed += uint64(in.Len())
}

// Reset clears dynamics envelopes and biquad sample histories, for use
// between takes or after a transport seek. Coefficients and parameters are
// left untouched.
func (c *Chain) Reset() {
	c.eq.Reset()
	c.comp.Reset()
	c.limiter.Reset()
	c.samplesProcessed = 0
	c.nanWarned = false
}
