package chroma

import (
	"math"

	"github.com/RyanBlaney/sonido-chords/algorithms/spectral"
)

// ExtractorParams holds parameters for chroma extraction
type ExtractorParams struct {
	SampleRate     int     `json:"sample_rate"`     // Sample rate of the analyzed signal
	MinFreq        float64 `json:"min_freq"`        // Lowest bin frequency considered (Hz)
	MaxFreq        float64 `json:"max_freq"`        // Highest bin frequency considered (Hz)
	TuningHz       float64 `json:"tuning_hz"`       // Reference frequency for A4 (440 Hz)
	SigmaCents     float64 `json:"sigma_cents"`     // Gaussian spreading width in cents (default 35)
	CompressionExp float64 `json:"compression_exp"` // Sub-linear compression exponent for Normalize
}

// Extractor builds a 12-element pitch class energy vector from a dB
// magnitude spectrum. Each bin's energy is spread across pitch classes with
// a Gaussian weight on cents distance from the class center, which keeps the
// mapping robust to mistuned sources. The bin-to-class weight table is
// precomputed and rebuilt on Resize.
type Extractor struct {
	params  ExtractorParams
	numBins int

	// weights[bin] is nil for out-of-range bins, otherwise 12 class weights
	// already scaled by the frequency weighting curve
	weights  [][12]float64
	active   []bool
	binFreqs []float64
}

// NewExtractor creates a chroma extractor with default parameters
func NewExtractor(sampleRate int) *Extractor {
	return NewExtractorWithParams(ExtractorParams{
		SampleRate:     sampleRate,
		MinFreq:        60.0,
		MaxFreq:        5000.0,
		TuningHz:       440.0,
		SigmaCents:     35.0,
		CompressionExp: 0.8,
	})
}

// NewExtractorWithParams creates a chroma extractor with custom parameters
func NewExtractorWithParams(params ExtractorParams) *Extractor {
	e := &Extractor{params: params}
	return e
}

// GetParams returns the current parameters
func (e *Extractor) GetParams() ExtractorParams {
	return e.params
}

// SetParams updates the parameters and invalidates the weight table
func (e *Extractor) SetParams(params ExtractorParams) {
	e.params = params
	e.numBins = 0
}

// NumBins returns the bin count of the current weight table
func (e *Extractor) NumBins() int {
	return e.numBins
}

// Resize rebuilds the bin-to-pitch-class weight table for a new bin count
func (e *Extractor) Resize(numBins int) {
	e.numBins = numBins
	e.weights = make([][12]float64, numBins)
	e.active = make([]bool, numBins)
	e.binFreqs = make([]float64, numBins)

	if numBins == 0 {
		return
	}

	binWidth := float64(e.params.SampleRate) / float64(2*numBins)
	sigma := e.params.SigmaCents
	if sigma <= 0 {
		sigma = 35.0
	}

	for i := 0; i < numBins; i++ {
		freq := float64(i) * binWidth
		e.binFreqs[i] = freq
		if freq < e.params.MinFreq || freq > e.params.MaxFreq {
			continue
		}

		midi := FreqToMIDI(freq, e.params.TuningHz)
		// Position within the octave in cents
		octaveCents := math.Mod(midi, 12.0) * 100.0
		if octaveCents < 0 {
			octaveCents += 1200.0
		}

		freqWeight := frequencyWeight(freq)
		for pc := 0; pc < 12; pc++ {
			// Circular cents distance to the class center
			diff := octaveCents - float64(pc)*100.0
			for diff > 600.0 {
				diff -= 1200.0
			}
			for diff < -600.0 {
				diff += 1200.0
			}

			w := math.Exp(-(diff * diff) / (2.0 * sigma * sigma))
			if w < 1e-3 {
				continue
			}
			e.weights[i][pc] = w * freqWeight
			e.active[i] = true
		}
	}
}

// frequencyWeight boosts sub-200 Hz content slightly and rolls off gently
// above 1.6 kHz, where upper partials stop contributing useful pitch class
// evidence.
func frequencyWeight(freq float64) float64 {
	w := 1.0
	if freq < 200.0 {
		w = 1.0 + 0.25*(200.0-freq)/200.0
	}
	if freq > 1600.0 {
		w = math.Exp(-(freq - 1600.0) / 2400.0)
	}
	return w
}

// Compute fills out with the raw pitch class energy of a dB spectrum and
// returns the total accumulated energy. The weight table is rebuilt when the
// bin count changes between calls.
func (e *Extractor) Compute(dbBins []float64, out *[12]float64) float64 {
	*out = [12]float64{}
	if len(dbBins) == 0 {
		return 0.0
	}
	if len(dbBins) != e.numBins {
		e.Resize(len(dbBins))
	}

	total := 0.0
	for i, db := range dbBins {
		if !e.active[i] {
			continue
		}
		mag := spectral.DBToLinear(db)
		if mag <= 1e-6 {
			continue
		}
		for pc := 0; pc < 12; pc++ {
			w := e.weights[i][pc]
			if w == 0 {
				continue
			}
			contribution := mag * w
			out[pc] += contribution
			total += contribution
		}
	}
	return total
}

// ComputeBand fills out with pitch class energy restricted to bins within
// [minFreq, maxFreq], using nearest-class mapping. Used for bass-region
// analysis where Gaussian spreading would smear the few available bins.
func (e *Extractor) ComputeBand(dbBins []float64, minFreq, maxFreq float64, out *[12]float64) float64 {
	*out = [12]float64{}
	if len(dbBins) == 0 {
		return 0.0
	}

	binWidth := float64(e.params.SampleRate) / float64(2*len(dbBins))
	total := 0.0
	for i, db := range dbBins {
		freq := float64(i) * binWidth
		if freq < minFreq || freq > maxFreq || freq <= 0 {
			continue
		}
		mag := spectral.DBToLinear(db)
		if mag <= 1e-6 {
			continue
		}
		pc := FreqToClass(freq, e.params.TuningHz)
		out[pc] += mag
		total += mag
	}
	return total
}

// EstimateTuningOffset estimates the deviation of strong spectral content
// from equal temperament at the configured reference, in cents. Returns 0
// for silent input.
func (e *Extractor) EstimateTuningOffset(dbBins []float64) float64 {
	if len(dbBins) == 0 {
		return 0.0
	}
	if len(dbBins) != e.numBins {
		e.Resize(len(dbBins))
	}

	peak := 0.0
	for i, db := range dbBins {
		if i >= len(e.active) || !e.active[i] {
			continue
		}
		if mag := spectral.DBToLinear(db); mag > peak {
			peak = mag
		}
	}
	if peak <= 1e-6 {
		return 0.0
	}

	var weightedSum, weightTotal float64
	for i, db := range dbBins {
		if !e.active[i] {
			continue
		}
		mag := spectral.DBToLinear(db)
		if mag < 0.2*peak {
			continue
		}
		midi := FreqToMIDI(e.binFreqs[i], e.params.TuningHz)
		deviation := (midi - math.Round(midi)) * 100.0
		weightedSum += deviation * mag
		weightTotal += mag
	}

	if weightTotal <= 0 {
		return 0.0
	}
	return weightedSum / weightTotal
}

// Normalize scales a pitch class vector by its maximum using the extractor's
// configured compression exponent
func (e *Extractor) Normalize(v *[12]float64) {
	Normalize(v, e.params.CompressionExp)
}

// Normalize scales a pitch class vector by its maximum and applies the
// sub-linear compression exponent. A zero vector stays zero.
func Normalize(v *[12]float64, compressionExp float64) {
	peak := 0.0
	for _, val := range v {
		if val > peak {
			peak = val
		}
	}
	if peak <= 0 {
		return
	}

	for i := range v {
		scaled := v[i] / peak
		if compressionExp > 0 && compressionExp != 1.0 {
			scaled = math.Pow(scaled, compressionExp)
		}
		v[i] = scaled
	}
}
