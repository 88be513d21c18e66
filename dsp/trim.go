package dsp

import "sync"

// Trim gain ranges, per §6 (InputTrim/OutputTrim) and §4.4 (compensation
// and safety nodes, which are unity by default but may be driven below
// unity by host policy).
const (
	TrimGainMinDB = -12.0
	TrimGainMaxDB = 12.0
	TrimGainDef   = 0.0

	// compNodeGainMinDB bounds how far a host policy may pull PreComp,
	// PostComp or the safety ceiling below unity in response to sustained
	// overshoot, per §4.4.
	compNodeGainMinDB = -24.0
	compNodeGainMaxDB = 0.0
)

// Trim is a pure per-sample scalar-gain node: InputTrim, OutputTrim,
// PreComp, PostComp and the master safety ceiling are all instances of
// this same shape with different default ranges, per §4.4's "trim nodes
// implement bypass trivially" note.
type Trim struct {
	mu sync.Mutex

	gainDB  float64
	gainLin float64
	bypass  bool
	minDB   float64
	maxDB   float64
}

func newTrim(minDB, maxDB, defaultDB float64) *Trim {
	t := &Trim{minDB: minDB, maxDB: maxDB}
	t.SetGainDB(defaultDB)
	return t
}

// NewInputTrim creates a user-facing input trim node, range [-12, +12] dB.
func NewInputTrim() *Trim {
	return newTrim(TrimGainMinDB, TrimGainMaxDB, TrimGainDef)
}

// NewOutputTrim creates a user-facing output trim node, range [-12, +12] dB.
func NewOutputTrim() *Trim {
	return newTrim(TrimGainMinDB, TrimGainMaxDB, TrimGainDef)
}

// NewCompensationNode creates a PreComp/PostComp/safety-ceiling node: unity
// gain by default, but may be pulled down by host policy in response to
// sustained overshoot past the safety ceiling (§4.4).
func NewCompensationNode() *Trim {
	return newTrim(compNodeGainMinDB, compNodeGainMaxDB, 0.0)
}

// SetGainDB sets the node's gain in dB, clamped to its configured range.
func (t *Trim) SetGainDB(db float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gainDB = clamp(db, t.minDB, t.maxDB)
	t.gainLin = DBToLinear(t.gainDB)
}

// GainDB returns the current effective (clamped) gain in dB.
func (t *Trim) GainDB() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gainDB
}

// SetBypass toggles bypass.
func (t *Trim) SetBypass(bypass bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bypass = bypass
}

// Bypass reports the current bypass state.
func (t *Trim) Bypass() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bypass
}

// ProcessBlock multiplies every sample by the node's linear gain, or
// copies through unchanged when bypassed.
func (t *Trim) ProcessBlock(in, out SampleBlock) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bypass {
		copy(out.Left, in.Left)
		copy(out.Right, in.Right)
		return
	}

	for i, x := range in.Left {
		v, _ := Sanitize(x)
		out.Left[i] = v * t.gainLin
	}
	for i, x := range in.Right {
		v, _ := Sanitize(x)
		out.Right[i] = v * t.gainLin
	}
}

