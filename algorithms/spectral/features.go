package spectral

import (
	"math"
)

// FrameFeaturesParams holds parameters for per-frame spectral feature extraction
type FrameFeaturesParams struct {
	SampleRate    int     `json:"sample_rate"`    // Sample rate of the analyzed signal
	MinFreq       float64 `json:"min_freq"`       // Lowest bin frequency considered (Hz)
	MaxFreq       float64 `json:"max_freq"`       // Highest bin frequency considered (Hz)
	TrackFlatness bool    `json:"track_flatness"` // Compute spectral flatness as noise indicator
}

// FrameFeatures contains features derived from a single magnitude spectrum
type FrameFeatures struct {
	Centroid    float64 `json:"centroid"`     // Energy-weighted mean frequency (Hz)
	Spread      float64 `json:"spread"`       // Energy-weighted std deviation around centroid (Hz)
	Clarity     float64 `json:"clarity"`      // min(1, clarityScale * energy / (spread + 100))
	Flatness    float64 `json:"flatness"`     // Geometric/arithmetic mean ratio (0-1), 0 when untracked
	TotalEnergy float64 `json:"total_energy"` // Sum of linear magnitudes in range
}

// clarityScale rescales the linear energy sum inside the clarity score.
// Input spectra are dB-referenced to full scale, so a strong frame sums to
// only a few units of linear magnitude; divided by a spread measured in
// hertz that would pin clarity near zero. Scaling by 255 puts a loud
// concentrated frame at the top of the range while quiet or smeared frames
// stay low.
const clarityScale = 255.0

// FrameAnalyzer computes spectral features from a dB magnitude spectrum.
// Input frames are per-bin magnitude in decibels, ordered low to high
// frequency, with bin spacing sampleRate / (2 * numBins) Hz.
type FrameAnalyzer struct {
	params FrameFeaturesParams
}

// NewFrameAnalyzer creates a frame analyzer with default parameters
func NewFrameAnalyzer(sampleRate int) *FrameAnalyzer {
	return NewFrameAnalyzerWithParams(FrameFeaturesParams{
		SampleRate:    sampleRate,
		MinFreq:       60.0,
		MaxFreq:       5000.0,
		TrackFlatness: true,
	})
}

// NewFrameAnalyzerWithParams creates a frame analyzer with custom parameters
func NewFrameAnalyzerWithParams(params FrameFeaturesParams) *FrameAnalyzer {
	return &FrameAnalyzer{params: params}
}

// DBToLinear converts a magnitude in decibels to linear magnitude
func DBToLinear(db float64) float64 {
	return math.Pow(10.0, db/20.0)
}

// Compute calculates spectral features for a single dB magnitude spectrum.
// An empty or silent spectrum yields zero features, which callers treat as
// silence rather than an error.
func (fa *FrameAnalyzer) Compute(dbBins []float64) FrameFeatures {
	if len(dbBins) == 0 {
		return FrameFeatures{}
	}

	binWidth := float64(fa.params.SampleRate) / float64(2*len(dbBins))

	var energy, freqSum, freqSqSum float64
	var logSum, linSum float64
	inRange := 0

	for i, db := range dbBins {
		freq := float64(i) * binWidth
		if freq < fa.params.MinFreq || freq > fa.params.MaxFreq {
			continue
		}

		mag := DBToLinear(db)
		energy += mag
		freqSum += freq * mag
		freqSqSum += freq * freq * mag

		if fa.params.TrackFlatness {
			// Log domain for numerical stability of the geometric mean
			if mag > 1e-10 {
				logSum += math.Log(mag)
			} else {
				logSum += math.Log(1e-10)
			}
			linSum += mag
			inRange++
		}
	}

	if energy <= 0 {
		return FrameFeatures{}
	}

	centroid := freqSum / energy
	variance := freqSqSum/energy - centroid*centroid
	if variance < 0 {
		variance = 0
	}
	spread := math.Sqrt(variance)

	features := FrameFeatures{
		Centroid:    centroid,
		Spread:      spread,
		Clarity:     math.Min(1.0, clarityScale*energy/(spread+100.0)),
		TotalEnergy: energy,
	}

	if fa.params.TrackFlatness && inRange > 0 {
		geometricMean := math.Exp(logSum / float64(inRange))
		arithmeticMean := linSum / float64(inRange)
		if arithmeticMean > 1e-10 {
			features.Flatness = math.Min(1.0, geometricMean/arithmeticMean)
		}
	}

	return features
}

// GetParams returns the current parameters
func (fa *FrameAnalyzer) GetParams() FrameFeaturesParams {
	return fa.params
}

// SetParams updates the parameters
func (fa *FrameAnalyzer) SetParams(params FrameFeaturesParams) {
	fa.params = params
}
