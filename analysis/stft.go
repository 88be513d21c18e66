package analysis

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// sevenBands are the §4.7.3 tonal / §4.7.2 phase band centre frequencies,
// shared by both analysers.
var sevenBands = []struct {
	name string
	hz   float64
}{
	{"sub-bass", 40},
	{"bass", 155},
	{"low-mid", 375},
	{"mid", 1000},
	{"high-mid", 2800},
	{"presence", 5000},
	{"brilliance", 10000},
}

// Frame is one windowed, transformed STFT frame: magnitude and phase per
// bin (only the first N/2 bins, per §4.7; the Nyquist bin is dropped), plus the time offset of the
// frame's first sample.
type Frame struct {
	StartSec  float64
	Magnitude []float64
	Phase     []float64
}

// hannWindow builds a Hann window of the given size.
func hannWindow(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return w
}

// stftIterator is a lazy sequence of overlapping windowed frames over a
// single-channel buffer, per §4.7 and §9's "coroutine/async analysis
// pipeline -> lazy frame iterator" note. Cancellation is cooperative: the
// caller simply stops calling Next.
type stftIterator struct {
	samples    []float64
	window     []float64
	fft        *fourier.FFT
	frameSize  int
	hopSize    int
	sampleRate float64

	pos int

	scratch []float64
}

func newSTFTIterator(samples []float64, frameSize, hopSize int, sampleRate float64) *stftIterator {
	return &stftIterator{
		samples:    samples,
		window:     hannWindow(frameSize),
		fft:        fourier.NewFFT(frameSize),
		frameSize:  frameSize,
		hopSize:    hopSize,
		sampleRate: sampleRate,
		scratch:    make([]float64, frameSize),
	}
}

// Next produces the next frame, or false once the buffer is exhausted.
func (it *stftIterator) Next() (Frame, bool) {
	if it.pos+it.frameSize > len(it.samples) {
		return Frame{}, false
	}

	for i := 0; i < it.frameSize; i++ {
		it.scratch[i] = it.samples[it.pos+i] * it.window[i]
	}

	coeffs := it.fft.Coefficients(nil, it.scratch)
	binCount := it.frameSize / 2

	mag := make([]float64, binCount)
	phase := make([]float64, binCount)
	for i, c := range coeffs[:binCount] {
		mag[i] = math.Hypot(real(c), imag(c))
		phase[i] = math.Atan2(imag(c), real(c))
	}

	frame := Frame{
		StartSec:  float64(it.pos) / it.sampleRate,
		Magnitude: mag,
		Phase:     phase,
	}

	it.pos += it.hopSize
	return frame, true
}

// binHz returns the frequency spanned by one FFT bin for the given frame
// size and sample rate.
func binHz(frameSize int, sampleRate float64) float64 {
	return sampleRate / float64(frameSize)
}

// bandAverageDB averages a dB-converted magnitude spectrum over
// [startHz, endHz], clamping to the valid bin range.
func bandAverageDB(magDB []float64, startHz, endHz, binHzVal float64) float64 {
	startBin := int(startHz / binHzVal)
	endBin := int(endHz / binHzVal)

	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(magDB) {
		endBin = len(magDB) - 1
	}
	if startBin > endBin {
		return -120
	}

	var sum float64
	for i := startBin; i <= endBin; i++ {
		sum += magDB[i]
	}
	return sum / float64(endBin-startBin+1)
}

func toDB(magnitude []float64) []float64 {
	out := make([]float64, len(magnitude))
	for i, m := range magnitude {
		if m > 1e-10 {
			out[i] = 20 * math.Log10(m)
		} else {
			out[i] = -200
		}
	}
	return out
}

// averageMagnitudeSpectrum consumes every frame of it and returns the
// mean magnitude spectrum, honouring cooperative cancellation via cancel
// (polled between frames, per §5).
func averageMagnitudeSpectrum(it *stftIterator, cancel func() bool) ([]float64, int, bool) {
	var sum []float64
	var count int

	for {
		if cancel != nil && cancel() {
			return sum, count, true
		}

		frame, ok := it.Next()
		if !ok {
			break
		}
		if sum == nil {
			sum = make([]float64, len(frame.Magnitude))
		}
		for i, m := range frame.Magnitude {
			sum[i] += m
		}
		count++
	}

	if count == 0 {
		return sum, count, false
	}
	for i := range sum {
		sum[i] /= float64(count)
	}
	return sum, count, false
}
