package analysis

// CancelToken is the cooperative cancellation flag of §5: a boolean polled
// between frames and between analysers. The zero value never cancels.
type CancelToken struct {
	cancelled bool
}

// Cancel requests cancellation. Safe to call from another goroutine only
// if the caller does not also call Poll concurrently — Run is meant to be
// driven by a single controller goroutine, matching §5's "worker-like
// context, not the audio thread" model.
func (c *CancelToken) Cancel() { c.cancelled = true }

// Poll reports whether cancellation has been requested.
func (c *CancelToken) Poll() bool { return c.cancelled }

// Run executes the fixed offline pipeline of §2's cold path: mono-sum,
// framed STFT, the four detectors, then critique generation. left and
// right must be equal-length, non-empty slices of stereo PCM. Cancellation
// is polled between analysers (and, within each analyser, between STFT
// frames); a cancelled run returns Outcome{Cancelled: true} with no
// result, and any issues produced before cancellation are discarded. A
// cancelled run is never retried.
func Run(left, right []float64, sampleRate float64, cfg Config, token *CancelToken) Outcome {
	if len(left) == 0 || len(right) == 0 {
		return Outcome{InvalidInput: "empty buffer"}
	}
	if len(left) != len(right) {
		return Outcome{InvalidInput: "left/right channel length mismatch"}
	}
	if sampleRate <= 0 {
		return Outcome{InvalidInput: "non-positive sample rate"}
	}

	var cancel func() bool
	if token != nil {
		cancel = token.Poll
	}

	mono := make([]float64, len(left))
	for i := range mono {
		mono[i] = (left[i] + right[i]) / 2
	}

	var allIssues []Issue
	var tonalBands []BandEnergy
	var phaseBands []PhaseBandCorrelation
	var overallCorrelation float64

	if cfg.EnableMasking {
		allIssues = append(allIssues, DetectMasking(mono, sampleRate, cfg, cancel)...)
	}
	if cancel != nil && cancel() {
		return Outcome{Cancelled: true}
	}

	if cfg.EnableTonal {
		tonalIssues, bands := DetectTonal(mono, sampleRate, cfg, cancel)
		allIssues = append(allIssues, tonalIssues...)
		tonalBands = bands
	}
	if cancel != nil && cancel() {
		return Outcome{Cancelled: true}
	}

	if cfg.EnablePhase {
		phaseIssues, bands, corr := DetectPhase(left, right, sampleRate, cfg, cancel)
		allIssues = append(allIssues, phaseIssues...)
		phaseBands = bands
		overallCorrelation = corr
	}
	if cancel != nil && cancel() {
		return Outcome{Cancelled: true}
	}

	var dynamics DynamicsMetrics
	if cfg.EnableDynamics {
		dynamics = AnalyzeDynamics(mono)
	}

	metrics := Metrics{
		Dynamics:           dynamics,
		OverallCorrelation: overallCorrelation,
		TonalBands:         tonalBands,
		PhaseBands:         phaseBands,
	}

	critique := GenerateCritique(allIssues, metrics)

	result := &Result{
		IssuesBySeverity: groupBySeverity(allIssues),
		AllIssues:        sortIssuesBySeverityThenConfidence(allIssues),
		Critique:         critique,
		Metrics:          metrics,
	}

	return Outcome{Ok: result}
}
