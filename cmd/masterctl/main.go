// Command masterctl hosts the masterchain mastering chain against a
// synthetic test tone (file decode and live device I/O are out of scope,
// per §1's Non-goals) and, optionally, runs the offline mix-critique
// analyser over the processed buffer once the run completes.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/alecthomas/kong"

	"github.com/soundforge/masterchain"
	"github.com/soundforge/masterchain/analysis"
)

// version is set via ldflags at build time; "dev" for local builds.
var version = "dev"

// CLI is a flag-per-parameter configuration surface, parsed with kong's
// struct-tag parsing since the full surface (chain parameters, analysis
// config, reference curve selection) is wide enough to earn it.
type CLI struct {
	Version bool `short:"v" help:"Show version information."`

	SampleRate int     `default:"48000" help:"Sample rate in Hz (44100, 48000, 88200, 96000, 176400, 192000)."`
	BlockSize  int     `default:"128" help:"Block size in samples (64, 128, 256)."`
	Duration   float64 `default:"5" help:"How many seconds of test tone to process."`
	Frequency  float64 `default:"220" help:"Test tone frequency in Hz."`
	Amplitude  float64 `default:"0.5" help:"Test tone amplitude, linear, 0 to 1."`
	RightPhase float64 `default:"0" help:"Phase offset applied to the right channel only, in radians."`

	Threshold  float64 `default:"-20" help:"Compressor threshold in dB."`
	Ratio      float64 `default:"4" help:"Compressor ratio, e.g. 4 for 4:1."`
	Attack     float64 `default:"10" help:"Compressor attack time in ms."`
	Release    float64 `default:"100" help:"Compressor release time in ms."`
	MakeupGain float64 `default:"0" help:"Compressor makeup gain in dB."`

	LimiterCeiling float64 `default:"-0.3" help:"Limiter ceiling in dBFS."`
	LimiterRelease float64 `default:"50" help:"Limiter release time in ms."`

	BassGain    float64 `default:"0" help:"EQ bass shelf gain in dB."`
	TrebleGain  float64 `default:"0" help:"EQ treble shelf gain in dB."`
	BassFreq    float64 `default:"100" help:"EQ bass shelf corner frequency in Hz."`
	TrebleFreq  float64 `default:"8000" help:"EQ treble shelf corner frequency in Hz."`

	NoTUI    bool   `help:"Disable the interactive meter TUI and run headless."`
	Analyze  bool   `help:"Run the offline mix-critique analyser once processing finishes and print a report."`
	RefCurve string `enum:"kweighting,fletchermunson,flat" default:"kweighting" help:"Tonal-balance reference curve for analysis."`

	LogFile string `default:"masterctl.log" help:"Log file path."`
}

func main() {
	cli := &CLI{}
	kong.Parse(cli,
		kong.Name("masterctl"),
		kong.Description("Real-time mastering chain host and offline mix-critique runner."),
		kong.UsageOnError(),
	)

	if cli.Version {
		fmt.Println("masterctl", version) //nolint:forbidigo // version output requires direct printing
		os.Exit(0)
	}

	logFile, err := os.OpenFile(cli.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		fmt.Printf("failed to open log file: %v\n", err) //nolint:forbidigo // error before logging is initialized
		os.Exit(1)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, nil))
	slog.SetDefault(logger)
	logger.Info("starting masterctl", "args", os.Args)

	chain, err := mastering.NewChain(cli.SampleRate, cli.BlockSize, 2, logger)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err) //nolint:forbidigo // critical error output to user
		os.Exit(1)
	}
	logger.Info("chain initialized", "sampleRate", cli.SampleRate, "blockSize", cli.BlockSize)

	submitInitialParams(chain, cli)
	chain.ApplyPendingParams()
	logger.Info("parameters configured")

	totalSamples := int(cli.Duration * float64(cli.SampleRate))
	rec := newRecorder(totalSamples, cli.Analyze)

	var waitGroup sync.WaitGroup
	waitGroup.Add(1)

	go func() {
		defer waitGroup.Done()
		runProcessingLoop(chain, cli, totalSamples, rec)
	}()

	if cli.NoTUI {
		fmt.Println("masterctl: running headless, log file:", cli.LogFile) //nolint:forbidigo // headless startup message
		waitGroup.Wait()
	} else {
		runTUI(chain)
		waitGroup.Wait()
	}

	logger.Info("processing complete", "samplesProcessed", totalSamples)

	if cli.Analyze {
		runAnalysis(logger, rec, cli)
	}
}

// submitInitialParams pushes every CLI-configured parameter onto the
// chain's parameter plane before the first block is processed.
func submitInitialParams(chain *mastering.Chain, cli *CLI) {
	params := chain.Params()

	params.Submit(mastering.ParamUpdate{Target: mastering.TargetEQ, Field: mastering.FieldBassGain, Value: cli.BassGain})
	params.Submit(mastering.ParamUpdate{Target: mastering.TargetEQ, Field: mastering.FieldTrebleGain, Value: cli.TrebleGain})
	params.Submit(mastering.ParamUpdate{Target: mastering.TargetEQ, Field: mastering.FieldBassFreq, Value: cli.BassFreq})
	params.Submit(mastering.ParamUpdate{Target: mastering.TargetEQ, Field: mastering.FieldTrebleFreq, Value: cli.TrebleFreq})

	params.Submit(mastering.ParamUpdate{Target: mastering.TargetCompressor, Field: mastering.FieldThreshold, Value: cli.Threshold})
	params.Submit(mastering.ParamUpdate{Target: mastering.TargetCompressor, Field: mastering.FieldRatio, Value: cli.Ratio})
	params.Submit(mastering.ParamUpdate{Target: mastering.TargetCompressor, Field: mastering.FieldAttack, Value: cli.Attack})
	params.Submit(mastering.ParamUpdate{Target: mastering.TargetCompressor, Field: mastering.FieldRelease, Value: cli.Release})
	params.Submit(mastering.ParamUpdate{Target: mastering.TargetCompressor, Field: mastering.FieldMakeupGain, Value: cli.MakeupGain})

	params.Submit(mastering.ParamUpdate{Target: mastering.TargetLimiter, Field: mastering.FieldCeiling, Value: cli.LimiterCeiling})
	params.Submit(mastering.ParamUpdate{Target: mastering.TargetLimiter, Field: mastering.FieldRelease, Value: cli.LimiterRelease})
}

// recorder optionally captures every processed block's output so Analyze
// can run the offline pipeline once the run completes.
type recorder struct {
	enabled bool
	left    []float64
	right   []float64
}

func newRecorder(totalSamples int, enabled bool) *recorder {
	r := &recorder{enabled: enabled}
	if enabled {
		r.left = make([]float64, 0, totalSamples)
		r.right = make([]float64, 0, totalSamples)
	}
	return r
}

func (r *recorder) append(left, right []float64) {
	if !r.enabled {
		return
	}
	r.left = append(r.left, left...)
	r.right = append(r.right, right...)
}

// runProcessingLoop feeds a continuous sine tone through the chain one
// block at a time, pacing itself to the block's real-time duration so the
// TUI's meters animate at a believable rate.
func runProcessingLoop(chain *mastering.Chain, cli *CLI, totalSamples int, rec *recorder) {
	blockSize := cli.BlockSize
	in := mastering.NewSampleBlock(blockSize)
	out := mastering.NewSampleBlock(blockSize)

	cfg := SineConfig{
		Frequency:  cli.Frequency,
		Amplitude:  cli.Amplitude,
		SampleRate: float64(cli.SampleRate),
		RightPhase: cli.RightPhase,
	}

	blockDuration := time.Duration(float64(blockSize) / float64(cli.SampleRate) * float64(time.Second))
	ticker := time.NewTicker(blockDuration)
	defer ticker.Stop()

	for sample := 0; sample < totalSamples; sample += blockSize {
		n := blockSize
		if sample+n > totalSamples {
			n = totalSamples - sample
		}

		GenerateSineBlock(cfg, sample, in.Left[:n], in.Right[:n])
		// The chain processes whole blocks only; zero-pad a short final block.
		for i := n; i < blockSize; i++ {
			in.Left[i], in.Right[i] = 0, 0
		}

		chain.ApplyPendingParams()
		chain.ProcessBlock(mastering.SampleBlock{Left: in.Left, Right: in.Right}, mastering.SampleBlock{Left: out.Left, Right: out.Right})

		rec.append(out.Left[:n], out.Right[:n])

		<-ticker.C
	}
}

// runAnalysis runs the offline mix-critique pipeline over the recorded
// output and prints the resulting critique.
func runAnalysis(logger *slog.Logger, rec *recorder, cli *CLI) {
	if !rec.enabled || len(rec.left) == 0 {
		return
	}

	cfg := analysis.DefaultConfig()
	cfg.ReferenceCurve = referenceCurveFromFlag(cli.RefCurve)

	outcome := analysis.Run(rec.left, rec.right, float64(cli.SampleRate), cfg, nil)
	switch {
	case outcome.InvalidInput != "":
		logger.Error("analysis rejected input", "reason", outcome.InvalidInput)
	case outcome.Cancelled:
		logger.Warn("analysis cancelled")
	default:
		printCritique(outcome.Ok.Critique)
	}
}

func referenceCurveFromFlag(name string) analysis.ReferenceCurveKind {
	switch name {
	case "fletchermunson":
		return analysis.ReferenceFletcherMunson
	case "flat":
		return analysis.ReferenceFlat
	default:
		return analysis.ReferenceKWeighting
	}
}

func printCritique(c analysis.MixCritique) {
	fmt.Println()                                  //nolint:forbidigo // report output
	fmt.Printf("Overall score: %d/100\n", c.Overall) //nolint:forbidigo // report output
	fmt.Printf("  Frequency: %.0f  Dynamics: %.0f  Stereo: %.0f  Clarity: %.0f  Loudness: %.0f\n", //nolint:forbidigo // report output
		c.Breakdown.Frequency, c.Breakdown.Dynamics, c.Breakdown.Stereo, c.Breakdown.Clarity, c.Breakdown.Loudness)

	for _, s := range c.Strengths {
		fmt.Println("  +", s) //nolint:forbidigo // report output
	}
	for _, s := range c.Improvements {
		fmt.Println("  -", s) //nolint:forbidigo // report output
	}
	if len(c.PriorityIssues) > 0 {
		fmt.Println("  Top issues:") //nolint:forbidigo // report output
		for _, iss := range c.PriorityIssues {
			fmt.Printf("    [%s] %s\n", iss.Severity, iss.Description) //nolint:forbidigo // report output
		}
	}
}
