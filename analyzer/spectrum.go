// Package analyzer provides a PCM ring buffer with an FFT front end that
// satisfies the chord detector's spectrum provider contract. Hosts push raw
// samples as they arrive; the analyzer serves Hann-windowed dB magnitude
// frames over the most recent window on demand.
package analyzer

import (
	"fmt"
	"math"
	"sync"

	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/sonido-chords/algorithms/filters"
	"github.com/RyanBlaney/sonido-chords/algorithms/windowing"
)

// minDB is the magnitude floor in decibels. Bins at or below this are
// reported as minDB rather than -Inf.
const minDB = -100.0

// SpectrumParams configures a SpectrumAnalyzer
type SpectrumParams struct {
	FFTSize    int `json:"fft_size"`    // Analysis window length, power of two (4096)
	SampleRate int `json:"sample_rate"` // Sample rate of the incoming PCM (44100)
}

// DefaultSpectrumParams returns parameters suited to chord analysis at CD
// rates: 4096 samples gives ~10.8 Hz bin spacing, enough to separate
// adjacent bass semitones above roughly 60 Hz.
func DefaultSpectrumParams() SpectrumParams {
	return SpectrumParams{
		FFTSize:    4096,
		SampleRate: 44100,
	}
}

// SpectrumAnalyzer buffers incoming PCM and computes dB magnitude spectra
// over the latest FFTSize samples. It implements chord.SpectrumProvider and
// its RMS method satisfies chord.RMSProvider.
//
// Write and the read methods may be called from different goroutines.
type SpectrumAnalyzer struct {
	mu      sync.Mutex
	params  SpectrumParams
	window  *windowing.Hann
	dcBlock *filters.DCRemoval

	ring   []float64
	head   int
	filled int

	frame []float64
}

// NewSpectrumAnalyzer creates an analyzer with default parameters
func NewSpectrumAnalyzer() *SpectrumAnalyzer {
	a, _ := NewSpectrumAnalyzerWithParams(DefaultSpectrumParams())
	return a
}

// NewSpectrumAnalyzerWithParams creates an analyzer with custom parameters
func NewSpectrumAnalyzerWithParams(params SpectrumParams) (*SpectrumAnalyzer, error) {
	if params.FFTSize <= 0 || params.FFTSize&(params.FFTSize-1) != 0 {
		return nil, fmt.Errorf("fft size must be a positive power of two, got %d", params.FFTSize)
	}
	if params.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", params.SampleRate)
	}
	return &SpectrumAnalyzer{
		params:  params,
		window:  windowing.NewHann(params.FFTSize, false),
		dcBlock: filters.NewDCRemoval(),
		ring:    make([]float64, params.FFTSize),
		frame:   make([]float64, params.FFTSize),
	}, nil
}

// GetParams returns the analyzer parameters
func (a *SpectrumAnalyzer) GetParams() SpectrumParams {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.params
}

// FFTSize returns the analysis window length in samples
func (a *SpectrumAnalyzer) FFTSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.params.FFTSize
}

// SampleRate returns the configured PCM sample rate
func (a *SpectrumAnalyzer) SampleRate() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.params.SampleRate
}

// Write appends PCM samples to the ring buffer, DC-blocked so offset in the
// capture chain cannot leak into the low bins. Samples beyond FFTSize
// overwrite the oldest data.
func (a *SpectrumAnalyzer) Write(samples []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, s := range samples {
		a.ring[a.head] = a.dcBlock.Process(s)
		a.head = (a.head + 1) % len(a.ring)
	}
	a.filled += len(samples)
	if a.filled > len(a.ring) {
		a.filled = len(a.ring)
	}
}

// FrequencyData fills buf with per-bin dB magnitudes of the latest window.
// buf must hold FFTSize/2 values; a mismatched buffer is left untouched.
// Before the ring has filled once, the missing history reads as zeros.
func (a *SpectrumAnalyzer) FrequencyData(buf []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.ring)
	if len(buf) != n/2 {
		return
	}

	// Unroll the ring into time order, oldest sample first
	for i := 0; i < n; i++ {
		a.frame[i] = a.ring[(a.head+i)%n]
	}
	a.window.ApplyInPlace(a.frame)

	spectrum := fft.FFTReal(a.frame)

	// One-sided magnitude normalized by the coherent gain of the Hann
	// window (sum of coefficients is N/2) so a full-scale sine reads
	// near 0 dB at its bin
	scale := 4.0 / float64(n)
	for i := range buf {
		mag := scale * math.Hypot(real(spectrum[i]), imag(spectrum[i]))
		if mag <= 0 {
			buf[i] = minDB
			continue
		}
		db := 20 * math.Log10(mag)
		if db < minDB {
			db = minDB
		}
		buf[i] = db
	}
}

// RMS returns the root mean square amplitude over the latest window
func (a *SpectrumAnalyzer) RMS() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.filled == 0 {
		return 0
	}
	sum := 0.0
	n := len(a.ring)
	count := a.filled
	for i := 0; i < count; i++ {
		v := a.ring[(a.head-1-i+2*n)%n]
		sum += v * v
	}
	return math.Sqrt(sum / float64(count))
}

// Reset clears the buffered PCM and the filter state
func (a *SpectrumAnalyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.ring {
		a.ring[i] = 0
	}
	a.head = 0
	a.filled = 0
	a.dcBlock.Reset()
}
