package mastering

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/soundforge/masterchain/dsp"
)

// MeteringFrame is a single snapshot published by a Tap: peak and RMS per
// channel in both linear and dB, a gain-reduction reading (meaningful only
// for taps placed after a dynamics processor), and the host sample clock at
// capture time.
type MeteringFrame struct {
	TimestampSamples uint64

	PeakLeftLinear  float64
	PeakRightLinear float64
	RMSLeftLinear   float64
	RMSRightLinear  float64

	PeakLeftDB  float64
	PeakRightDB float64
	RMSLeftDB   float64
	RMSRightDB  float64

	GainReductionDB    float64
	MaxGainReductionDB float64
}

// ringSize is the tap's smoothing history depth: "~1 block of history" per
// §3, expressed in frames-of-history rather than samples since a tap
// observes one MeteringFrame per ProcessBlock call.
const ringSize = 8

// tapQueueDepth bounds the SPSC channel so a slow consumer cannot grow
// unbounded memory; overflow silently drops the oldest frame, per §4.6 and
// §9's "callback/event-loop metering -> SPSC channel" design note.
const tapQueueDepth = 64

// Tap is an observer placed on one edge of the chain. The audio callback is
// the sole producer (Observe); the control plane is the sole consumer
// (TryRead/Smoothed). A processor never owns its downstream tap directly — the
// chain holds taps in a flat slice and refers to them by index, per §9's
// "cyclic references -> arena + indices" note. The frames channel is a
// genuine lock-free SPSC path, but the smoothing ring is read by Smoothed
// from the control plane while Observe writes it from the audio callback,
// so ringMu guards it the same way dsp.Compressor guards its parameters.
type Tap struct {
	name string

	frames chan MeteringFrame

	ringMu    sync.Mutex
	ring      [ringSize]MeteringFrame
	ringNext  int
	ringCount int

	decimationHz   uint64
	sampleRate     float64
	blockSize      int
	samplesPerEmit uint64
	samplesSince   uint64

	isDynamics bool

	gainReductionDB    uint64 // atomic float64 bits
	maxGainReductionDB uint64 // atomic float64 bits

	lastBlockSamples uint64
}

// NewTap creates a tap named for the edge it observes (e.g. "input",
// "post-eq", "post-comp", "post-limiter", "output"). isDynamics marks taps
// that also report gain reduction (post-comp, post-limiter).
func NewTap(name string, sampleRate float64, blockSize int, isDynamics bool) *Tap {
	t := &Tap{
		name:       name,
		frames:     make(chan MeteringFrame, tapQueueDepth),
		sampleRate: sampleRate,
		blockSize:  blockSize,
		isDynamics: isDynamics,
	}
	t.SetDecimation(60)
	return t
}

// Name returns the tap's edge label.
func (t *Tap) Name() string {
	return t.name
}

// SetDecimation sets the publish rate in Hz, clamped to [10, 240] per §6.
func (t *Tap) SetDecimation(hz float64) {
	hz = clampFloat(hz, 10, 240)
	t.decimationHz = uint64(hz)
	if t.sampleRate > 0 && hz > 0 {
		t.samplesPerEmit = uint64(t.sampleRate / hz)
	}
	if t.samplesPerEmit == 0 {
		t.samplesPerEmit = 1
	}
}

// Observe computes peak/RMS for the block just produced on this edge and,
// subject to decimation, publishes a frame to the SPSC channel. Called once
// per block from the audio callback; never blocks.
func (t *Tap) Observe(block dsp.SampleBlock, timestampSamples uint64) {
	n := block.Len()
	if n == 0 {
		return
	}

	var peakL, peakR, sumSqL, sumSqR float64
	for i := 0; i < n; i++ {
		l, r := block.Left[i], block.Right[i]
		if a := math.Abs(l); a > peakL {
			peakL = a
		}
		if a := math.Abs(r); a > peakR {
			peakR = a
		}
		sumSqL += l * l
		sumSqR += r * r
	}
	rmsL := math.Sqrt(sumSqL / float64(n))
	rmsR := math.Sqrt(sumSqR / float64(n))

	frame := MeteringFrame{
		TimestampSamples: timestampSamples,
		PeakLeftLinear:   peakL,
		PeakRightLinear:  peakR,
		RMSLeftLinear:    rmsL,
		RMSRightLinear:   rmsR,
		PeakLeftDB:       dsp.LinearToDB(peakL),
		PeakRightDB:      dsp.LinearToDB(peakR),
		RMSLeftDB:        dsp.LinearToDB(rmsL),
		RMSRightDB:       dsp.LinearToDB(rmsR),
	}

	if t.isDynamics {
		frame.GainReductionDB = math.Float64frombits(atomic.LoadUint64(&t.gainReductionDB))
		frame.MaxGainReductionDB = math.Float64frombits(atomic.LoadUint64(&t.maxGainReductionDB))
	}

	t.ringMu.Lock()
	t.ring[t.ringNext] = frame
	t.ringNext = (t.ringNext + 1) % ringSize
	if t.ringCount < ringSize {
		t.ringCount++
	}
	t.ringMu.Unlock()

	t.samplesSince += uint64(n)
	t.lastBlockSamples = uint64(n)
	if t.samplesSince < t.samplesPerEmit {
		return
	}
	t.samplesSince = 0

	select {
	case t.frames <- frame:
	default:
		// Consumer is behind: drop the oldest queued frame and retry once,
		// per §4.6's "dropped frames are silently discarded" rule.
		select {
		case <-t.frames:
		default:
		}
		select {
		case t.frames <- frame:
		default:
		}
	}
}

// PublishGainReduction lets a dynamics processor (compressor, limiter)
// hand its current/instantaneous gain-reduction reading to the tap that
// watches its output edge, published once per block alongside the level
// metering in Observe.
func (t *Tap) PublishGainReduction(currentDB, maxDB float64) {
	atomic.StoreUint64(&t.gainReductionDB, math.Float64bits(currentDB))
	atomic.StoreUint64(&t.maxGainReductionDB, math.Float64bits(maxDB))
}

// TryRead returns the next queued frame without blocking, or false if none
// is queued. This is the control plane's consumer side of the SPSC channel.
func (t *Tap) TryRead() (MeteringFrame, bool) {
	select {
	case f := <-t.frames:
		return f, true
	default:
		return MeteringFrame{}, false
	}
}

// Smoothed averages the tap's short ring-buffer history (up to ringSize
// frames), giving the control plane a cheaper alternative to draining the
// channel for a momentary display value. Levels and GainReductionDB are
// averaged; MaxGainReductionDB is the largest value in the history.
func (t *Tap) Smoothed() MeteringFrame {
	t.ringMu.Lock()
	ring := t.ring
	ringNext := t.ringNext
	ringCount := t.ringCount
	t.ringMu.Unlock()

	if ringCount == 0 {
		return MeteringFrame{}
	}

	var acc MeteringFrame
	for i := 0; i < ringCount; i++ {
		f := ring[i]
		acc.PeakLeftLinear += f.PeakLeftLinear
		acc.PeakRightLinear += f.PeakRightLinear
		acc.RMSLeftLinear += f.RMSLeftLinear
		acc.RMSRightLinear += f.RMSRightLinear
		acc.GainReductionDB += f.GainReductionDB
		if f.MaxGainReductionDB > acc.MaxGainReductionDB {
			acc.MaxGainReductionDB = f.MaxGainReductionDB
		}
	}
	n := float64(ringCount)
	acc.PeakLeftLinear /= n
	acc.PeakRightLinear /= n
	acc.RMSLeftLinear /= n
	acc.RMSRightLinear /= n
	acc.GainReductionDB /= n
	acc.PeakLeftDB = dsp.LinearToDB(acc.PeakLeftLinear)
	acc.PeakRightDB = dsp.LinearToDB(acc.PeakRightLinear)
	acc.RMSLeftDB = dsp.LinearToDB(acc.RMSLeftLinear)
	acc.RMSRightDB = dsp.LinearToDB(acc.RMSRightLinear)
	acc.TimestampSamples = ring[(ringNext-1+ringSize)%ringSize].TimestampSamples

	return acc
}

func clampFloat(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
