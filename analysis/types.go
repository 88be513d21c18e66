// Package analysis implements the offline mix-critique pipeline: a fixed
// sequence of detectors (frequency masking, stereo phase correlation,
// tonal balance, dynamics/loudness) run over a decoded PCM buffer and feed
// a critique generator that produces a scored, human-readable report.
package analysis

// Severity is an ordered issue severity, low to critical.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// severityWeight implements §4.7.5's weight table: critical 4, high 3,
// medium 2, low 1. A detector-internal default of 0.5 ("other") is used
// only by aggregation code that may see a Severity outside this range.
func (s Severity) weight() float64 {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0.5
	}
}

// IssueCategory tags which detector produced an issue.
type IssueCategory int

const (
	CategoryMasking IssueCategory = iota
	CategoryPhase
	CategoryTonal
)

// TimeRange is a half-open span of seconds into the analysed buffer.
type TimeRange struct {
	StartSec float64
	EndSec   float64
}

// TonalDeviationType labels whether a tonal deviation is a surplus or a
// shortfall against the reference curve.
type TonalDeviationType int

const (
	TonalExcessive TonalDeviationType = iota
	TonalDeficient
)

// Issue is the tagged variant of §3's AnalysisIssue: shared fields plus a
// category tag, with category-specific fields populated only when that
// category applies (the zero value of the others is simply unused, the
// idiomatic Go rendition of the source's variant fields).
type Issue struct {
	Category      IssueCategory
	Severity      Severity
	Confidence    float64 // [0,1]
	FrequencyLow  float64
	FrequencyHigh float64
	Description   string
	Suggestion    string
	Time          TimeRange

	// Masking-specific.
	MaskerHz float64
	MaskedHz float64
	RatioDB  float64

	// Phase-specific.
	Correlation    float64 // [-1,1]
	FrequencyHz    float64
	MonoCompatible bool

	// Tonal-specific.
	Band        string
	EnergyDB    float64
	ExpectedDB  float64
	DeviationDB float64
	Type        TonalDeviationType
}

// DynamicsMetrics holds the raw numeric outputs of §4.7.4. IntegratedLUFS
// and TruePeakDB are coarse proxies per §9's Open Questions: IntegratedLUFS
// is raw RMS in dB (not BS.1770 K-weighted gated loudness) and TruePeakDB is
// sample-peak (not 4x oversampled inter-sample peak). Both proxies may be
// replaced by stricter measures without changing this type's shape.
type DynamicsMetrics struct {
	PeakLinear     float64
	RMSLinear      float64
	CrestFactorDB  float64
	IntegratedLUFS float64
	TruePeakDB     float64
	Recommendation string
}

// BandEnergy is one tonal or phase band's measurement.
type BandEnergy struct {
	Name       string
	CenterHz   float64
	EnergyDB   float64
	ExpectedDB float64
	Deviation  float64
}

// PhaseBandCorrelation is one of the seven phase-correlation bands.
type PhaseBandCorrelation struct {
	Name           string
	CenterHz       float64
	Correlation    float64
	MonoCompatible bool
}

// ScoreBreakdown is §3's five-category MixCritique breakdown, each
// independently clamped to [0,100].
type ScoreBreakdown struct {
	Frequency float64
	Dynamics  float64
	Stereo    float64
	Clarity   float64
	Loudness  float64
}

// MixCritique is the human-facing summary of §3/§4.7.5.
type MixCritique struct {
	Overall             int
	Breakdown           ScoreBreakdown
	Strengths           []string
	Improvements        []string
	PriorityIssues      []Issue
	EstimatedImprovement float64
}

// Metrics bundles the raw numeric outputs referenced by §3's
// AnalysisResult: crest factor, loudness proxy, true-peak proxy, overall
// stereo correlation and per-band energy.
type Metrics struct {
	Dynamics           DynamicsMetrics
	OverallCorrelation float64
	TonalBands         []BandEnergy
	PhaseBands         []PhaseBandCorrelation
}

// Result is the AnalysisResult of §3: issues grouped by severity, the
// critique, and the raw metrics.
type Result struct {
	IssuesBySeverity map[Severity][]Issue
	AllIssues        []Issue
	Critique         MixCritique
	Metrics          Metrics
}

// Outcome is the §7 offline-analyser Result variant: exactly one of Ok,
// Cancelled or InvalidInput is populated, mirroring a tagged union without
// needing a sum type.
type Outcome struct {
	Ok          *Result
	Cancelled   bool
	InvalidInput string
}

// Config is the offline analysis surface of §6.
type Config struct {
	FFTSize              int
	HopFraction          float64
	EnableMasking        bool
	EnablePhase          bool
	EnableTonal          bool
	EnableDynamics       bool
	MinConfidence        float64
	MinSeverity          Severity
	ReferenceCurve       ReferenceCurveKind
}

// DefaultConfig returns §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		FFTSize:        8192,
		HopFraction:    0.25,
		EnableMasking:  true,
		EnablePhase:    true,
		EnableTonal:    true,
		EnableDynamics: true,
		MinConfidence:  0.6,
		MinSeverity:    SeverityLow,
		ReferenceCurve: ReferenceKWeighting,
	}
}
