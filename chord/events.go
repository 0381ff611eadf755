package chord

// ChordEvent is the payload delivered to the chord callback on every state
// transition of the hysteresis machine. A release (Holding -> Silent) is
// signalled by an empty Name with zero Confidence.
type ChordEvent struct {
	Name             string  `json:"name"`              // Full chord name, e.g. "Am7" or "C/E"; "" on release
	Confidence       float64 `json:"confidence"`        // Detection confidence (0-1)
	Quality          string  `json:"quality"`           // Quality suffix, e.g. "", "m", "7", "dim"
	Root             int     `json:"root"`              // Root pitch class (0=C ... 11=B)
	Bass             int     `json:"bass"`              // Bass pitch class; equals Root unless inverted
	Inversion        bool    `json:"inversion"`         // True when the bass note is a non-root chord tone
	HarmonicStrength float64 `json:"harmonic_strength"` // Harmonic-series alignment score (0-1)
	SpectralClarity  float64 `json:"spectral_clarity"`  // Clarity of the frame that locked the chord
}

// Diagnostics is a read-only snapshot of the detector internals, for
// monitoring and UI. It is not used for control flow.
type Diagnostics struct {
	NoiseFloor        float64 `json:"noise_floor"`         // Current chroma-energy noise floor
	ActiveClasses     int     `json:"active_classes"`      // Pitch classes above the harmonic threshold
	Confidence        float64 `json:"confidence"`          // Confidence of the latest candidate
	SpectralClarity   float64 `json:"spectral_clarity"`    // Latest clarity score
	HarmonicStrength  float64 `json:"harmonic_strength"`   // Latest harmonic alignment score
	BassStrength      float64 `json:"bass_strength"`       // Relative dominance of the bass pitch class
	AdaptiveThreshold float64 `json:"adaptive_threshold"`  // Entry threshold currently in effect
	DynamicGate       float64 `json:"dynamic_gate"`        // Energy gate currently in effect
	TuningOffsetCents float64 `json:"tuning_offset_cents"` // Estimated deviation from equal temperament
	Stability         float64 `json:"stability"`           // Chroma stability score (0-1)
	CurrentChord      string  `json:"current_chord"`       // Name of the held chord, "" when silent
}
