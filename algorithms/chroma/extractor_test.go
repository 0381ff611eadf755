package chroma

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSampleRate = 44100
	testNumBins    = 2048 // 4096-point FFT
)

func testExtractor() *Extractor {
	return NewExtractor(testSampleRate)
}

// toneBins places dB levels at the bins nearest the given frequencies over
// a floor deep enough to fall below the extractor's magnitude cutoff
func toneBins(numBins int, tones map[float64]float64) []float64 {
	bins := make([]float64, numBins)
	for i := range bins {
		bins[i] = -200.0
	}
	binWidth := float64(testSampleRate) / float64(2*numBins)
	for freq, db := range tones {
		bin := int(math.Round(freq / binWidth))
		if bin >= 0 && bin < numBins && db > bins[bin] {
			bins[bin] = db
		}
	}
	return bins
}

func TestComputeSingleTone(t *testing.T) {
	e := testExtractor()
	var out [12]float64
	total := e.Compute(toneBins(testNumBins, map[float64]float64{440.0: 0.0}), &out)

	require.Greater(t, total, 0.0)
	argmax := 0
	for pc, v := range out {
		if v > out[argmax] {
			argmax = pc
		}
	}
	assert.Equal(t, 9, argmax, "440 Hz should land on A")
	assert.Greater(t, out[9], 0.5*total, "most energy should stay on one class")
}

func TestComputeTriadClasses(t *testing.T) {
	e := testExtractor()
	var out [12]float64
	// C major voiced across two octaves
	e.Compute(toneBins(testNumBins, map[float64]float64{
		261.63: 0.0, 329.63: -2.0, 392.0: -3.0,
		523.25: -6.0, 659.26: -8.0, 784.0: -9.0,
	}), &out)

	Normalize(&out, 0.8)
	assert.InDelta(t, 1.0, out[0], 1e-9)
	assert.Greater(t, out[4], 0.5)
	assert.Greater(t, out[7], 0.5)

	for _, pc := range []int{1, 2, 3, 5, 6, 8, 9, 10, 11} {
		assert.Less(t, out[pc], 0.2, "pc %d should be near silent", pc)
	}
}

func TestComputeIgnoresOutOfRange(t *testing.T) {
	e := testExtractor()
	var out [12]float64
	total := e.Compute(toneBins(testNumBins, map[float64]float64{
		30.0:   0.0, // below MinFreq
		6000.0: 0.0, // above MaxFreq
	}), &out)

	assert.Zero(t, total)
}

func TestComputeResizesWithInput(t *testing.T) {
	e := testExtractor()
	var out [12]float64
	e.Compute(toneBins(2048, map[float64]float64{440.0: 0.0}), &out)
	assert.Equal(t, 2048, e.NumBins())

	e.Compute(toneBins(1024, map[float64]float64{440.0: 0.0}), &out)
	assert.Equal(t, 1024, e.NumBins())
	assert.Greater(t, out[9], 0.0)

	assert.Zero(t, e.Compute(nil, &out))
}

func TestComputeBand(t *testing.T) {
	e := testExtractor()
	bins := toneBins(testNumBins, map[float64]float64{
		196.0: 0.0,  // G3, in the bass region
		523.0: -3.0, // C5, above it
	})

	var out [12]float64
	total := e.ComputeBand(bins, 40.0, 250.0, &out)
	require.Greater(t, total, 0.0)
	assert.Greater(t, out[7], 0.0)
	assert.Zero(t, out[0], "C5 lies outside the band")

	total = e.ComputeBand(bins, 1000.0, 2000.0, &out)
	assert.Zero(t, total)
}

func TestEstimateTuningOffset(t *testing.T) {
	e := testExtractor()

	// The bin nearest 440 Hz is centered at 441.43 Hz, about +5.6 cents
	offset := e.EstimateTuningOffset(toneBins(testNumBins, map[float64]float64{440.0: 0.0}))
	assert.InDelta(t, 5.6, offset, 1.5)

	// Silence reads as in tune
	assert.Zero(t, e.EstimateTuningOffset(toneBins(testNumBins, nil)))
}

func TestNormalize(t *testing.T) {
	v := [12]float64{0: 2.0, 4: 1.0}
	Normalize(&v, 0.8)
	assert.InDelta(t, 1.0, v[0], 1e-9)
	assert.InDelta(t, math.Pow(0.5, 0.8), v[4], 1e-9)

	var zero [12]float64
	Normalize(&zero, 0.8)
	assert.Equal(t, [12]float64{}, zero)

	// Exponent 1 means plain peak normalization
	v = [12]float64{0: 4.0, 7: 1.0}
	Normalize(&v, 1.0)
	assert.InDelta(t, 0.25, v[7], 1e-9)
}

func TestExtractorNormalizeUsesConfiguredExponent(t *testing.T) {
	e := testExtractor()
	params := e.GetParams()
	params.CompressionExp = 0.5
	e.SetParams(params)

	v := [12]float64{0: 4.0, 7: 1.0}
	e.Normalize(&v)
	assert.InDelta(t, 1.0, v[0], 1e-9)
	assert.InDelta(t, 0.5, v[7], 1e-9)
}

func TestFrequencyWeight(t *testing.T) {
	assert.Greater(t, frequencyWeight(80.0), frequencyWeight(150.0))
	assert.InDelta(t, 1.0, frequencyWeight(800.0), 1e-9)
	assert.Less(t, frequencyWeight(3000.0), 1.0)
	assert.Less(t, frequencyWeight(4500.0), frequencyWeight(3000.0))
}
