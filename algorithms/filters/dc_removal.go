package filters

import (
	"math"
)

// DCRemoval is a one-pole DC blocking filter:
//
//	y[n] = x[n] - x[n-1] + R * y[n-1]
//
// DC offset in captured PCM leaks into the lowest FFT bins and can pull the
// bass-region pitch class estimate toward C-1, so spectrum providers run
// incoming samples through this before buffering.
type DCRemoval struct {
	pole float64

	x1 float64
	y1 float64
}

// NewDCRemoval creates a DC blocker with the standard audio pole of 0.995
// (cutoff near 8 Hz at 44.1 kHz)
func NewDCRemoval() *DCRemoval {
	return &DCRemoval{pole: 0.995}
}

// NewDCRemovalWithCutoff creates a DC blocker for a -3 dB cutoff frequency.
// The pole follows the small-angle approximation R = 1 - 2*pi*fc/fs, valid
// for cutoffs far below Nyquist.
func NewDCRemovalWithCutoff(sampleRate int, cutoffFreq float64) *DCRemoval {
	pole := 0.995
	if sampleRate > 0 && cutoffFreq > 0 {
		pole = 1.0 - 2.0*math.Pi*cutoffFreq/float64(sampleRate)
		if pole >= 1.0 {
			pole = 0.999
		} else if pole <= 0.0 {
			pole = 0.001
		}
	}
	return &DCRemoval{pole: pole}
}

// Process filters a single sample
func (dc *DCRemoval) Process(input float64) float64 {
	output := input - dc.x1 + dc.pole*dc.y1
	dc.x1 = input
	dc.y1 = output
	return output
}

// ProcessInPlace filters a buffer of samples in place
func (dc *DCRemoval) ProcessInPlace(samples []float64) {
	for i, s := range samples {
		samples[i] = dc.Process(s)
	}
}

// Reset clears the filter state
func (dc *DCRemoval) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}
