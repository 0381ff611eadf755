package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineSamples(freq, amp float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestNewSpectrumAnalyzerValidation(t *testing.T) {
	_, err := NewSpectrumAnalyzerWithParams(SpectrumParams{FFTSize: 1000, SampleRate: 44100})
	assert.Error(t, err, "fft size must be a power of two")

	_, err = NewSpectrumAnalyzerWithParams(SpectrumParams{FFTSize: 2048, SampleRate: 0})
	assert.Error(t, err)

	a, err := NewSpectrumAnalyzerWithParams(SpectrumParams{FFTSize: 2048, SampleRate: 48000})
	require.NoError(t, err)
	assert.Equal(t, 2048, a.FFTSize())
	assert.Equal(t, 48000, a.SampleRate())
}

func TestFrequencyDataFindsSinePeak(t *testing.T) {
	a := NewSpectrumAnalyzer()
	params := a.GetParams()
	a.Write(sineSamples(440.0, 0.5, params.SampleRate, 2*params.FFTSize))

	buf := make([]float64, params.FFTSize/2)
	a.FrequencyData(buf)

	peakBin := 0
	for i, v := range buf {
		if v > buf[peakBin] {
			peakBin = i
		}
	}

	// 440 Hz lands at bin 40.87 for a 4096-point FFT at 44.1 kHz
	expected := 440.0 * float64(params.FFTSize) / float64(params.SampleRate)
	assert.InDelta(t, expected, float64(peakBin), 1.0)

	// Half-scale sine reads near -6 dB after window gain correction
	assert.InDelta(t, -6.0, buf[peakBin], 2.0)

	// Far from the peak the spectrum sits at the noise floor
	assert.Less(t, buf[1500], -80.0)
}

func TestFrequencyDataRejectsWrongBufferSize(t *testing.T) {
	a := NewSpectrumAnalyzer()
	a.Write(sineSamples(440.0, 0.5, 44100, 4096))

	buf := []float64{7, 7, 7}
	a.FrequencyData(buf)
	assert.Equal(t, []float64{7, 7, 7}, buf)
}

func TestRMS(t *testing.T) {
	a := NewSpectrumAnalyzer()
	assert.Zero(t, a.RMS())

	a.Write(sineSamples(440.0, 0.5, 44100, 8192))
	assert.InDelta(t, 0.5/math.Sqrt2, a.RMS(), 0.005)

	a.Reset()
	assert.Zero(t, a.RMS())
}

func TestRMSPartialFill(t *testing.T) {
	a := NewSpectrumAnalyzer()
	a.Write([]float64{0.5, -0.5, 0.5, -0.5})
	assert.InDelta(t, 0.5, a.RMS(), 0.01)
}

func TestDCOffsetIsBlocked(t *testing.T) {
	a := NewSpectrumAnalyzer()

	samples := sineSamples(440.0, 0.5, 44100, 8192)
	for i := range samples {
		samples[i] += 0.3
	}
	a.Write(samples)

	// The offset is filtered out before buffering, so loudness reflects
	// only the tone
	assert.InDelta(t, 0.5/math.Sqrt2, a.RMS(), 0.01)

	buf := make([]float64, a.FFTSize()/2)
	a.FrequencyData(buf)
	assert.Less(t, buf[0], -40.0, "no energy should remain at 0 Hz")
}

func TestWriteWrapsRing(t *testing.T) {
	a := NewSpectrumAnalyzer()

	// Quiet history followed by a louder recent window: RMS reflects only
	// what the ring still holds
	a.Write(sineSamples(440.0, 0.1, 44100, 4096))
	a.Write(sineSamples(440.0, 0.8, 44100, 4096))
	assert.InDelta(t, 0.8/math.Sqrt2, a.RMS(), 0.01)
}
