package chord

import (
	"time"
)

// SpectrumProvider supplies frequency-domain magnitude frames. Implementors
// expose the current FFT size and fill a caller-supplied buffer of length
// FFTSize()/2 with per-bin magnitude in decibels, ordered low to high
// frequency. Bin spacing is sampleRate / (2 * numBins) Hz.
//
// The detector owns the buffer it passes in and refreshes it in place every
// update; providers must not retain the slice across calls.
type SpectrumProvider interface {
	FFTSize() int
	FrequencyData(buf []float64)
}

// RMSProvider reports instantaneous loudness as RMS amplitude in [0, 1].
// Optional; when configured it gates detection work during silence.
type RMSProvider func() float64

// Clock abstracts the monotonic time base used by the hold timers, so tests
// can control time deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall-clock default used outside of tests
var SystemClock Clock = systemClock{}
