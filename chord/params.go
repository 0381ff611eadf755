package chord

// Params contains all detector configuration. Every field has a usable
// default from DefaultParams. Out-of-range values are a caller error and
// are not validated, but nothing panics on degenerate input.
type Params struct {
	SampleRate int     `json:"sample_rate"` // Sample rate of the analyzed signal (44100)
	MinFreq    float64 `json:"min_freq"`    // Lowest frequency considered for chroma (60 Hz)
	MaxFreq    float64 `json:"max_freq"`    // Highest frequency considered for chroma (5000 Hz)

	// Hysteresis timing and stability
	HoldMsEnter          float64 `json:"hold_ms_enter"`          // Minimum ms between chord changes (250)
	HoldMsExit           float64 `json:"hold_ms_exit"`           // Ms of weak confidence before release (400)
	RequiredStableFrames int     `json:"required_stable_frames"` // Qualifying frames before a change (4)
	ConfEnter            float64 `json:"conf_enter"`             // Base entry confidence threshold (0.5)
	ConfExit             float64 `json:"conf_exit"`              // Exit confidence threshold (0.3)

	// Activity gating
	HarmonicThreshold  float64 `json:"harmonic_threshold"`   // Active-class fraction of total energy (0.12)
	NoiseFloorAlpha    float64 `json:"noise_floor_alpha"`    // Upward noise floor tracking rate (0.005)
	DisableEnergyGate  bool    `json:"disable_energy_gate"`  // Skip the dynamic energy gate
	MinSpectralClarity float64 `json:"min_spectral_clarity"` // Clarity below this is inactive (0.1)
	MaxFlatness        float64 `json:"max_flatness"`         // Flatness above this is noise (0.6)
	RMSGate            float64 `json:"rms_gate"`             // Loudness below this counts as quiet (0.01)
	QuietFramesMax     int     `json:"quiet_frames_max"`     // Consecutive quiet frames before silence (8)

	// Chroma construction and smoothing
	ChromaAlphaFast  float64 `json:"chroma_alpha_fast"`  // Fast chroma EMA coefficient (0.55)
	ChromaAlphaSlow  float64 `json:"chroma_alpha_slow"`  // Slow chroma EMA coefficient (0.15)
	ChromaSigmaCents float64 `json:"chroma_sigma_cents"` // Gaussian bin spreading width (35 cents)
	CompressionExp   float64 `json:"compression_exp"`    // Sub-linear chroma compression (0.8)
	TuningHz         float64 `json:"tuning_hz"`          // Reference frequency for A4 (440)

	// Bass analysis
	EnableBassBias bool    `json:"enable_bass_bias"` // Bias chroma toward the dominant bass class (true)
	BassMaxFreq    float64 `json:"bass_max_freq"`    // Upper bound of the bass region (250 Hz)
	BassBias       float64 `json:"bass_bias"`        // Fraction of the chroma peak added (0.35)

	// Matching features
	EnableHarmonicAnalysis  bool `json:"enable_harmonic_analysis"`  // Include harmonic alignment in scores (true)
	EnableAdvancedQualities bool `json:"enable_advanced_qualities"` // Add dim7/m7b5/mMaj7 templates (false)
	InversionDetection      bool `json:"inversion_detection"`       // Detect slash-chord inversions (true)

	// Self-driving loop
	MaxFPS float64 `json:"max_fps"` // Update rate cap for Start (30)
}

// DefaultParams returns the documented default configuration
func DefaultParams() Params {
	return Params{
		SampleRate:              44100,
		MinFreq:                 60.0,
		MaxFreq:                 5000.0,
		HoldMsEnter:             250.0,
		HoldMsExit:              400.0,
		RequiredStableFrames:    4,
		ConfEnter:               0.5,
		ConfExit:                0.3,
		HarmonicThreshold:       0.12,
		NoiseFloorAlpha:         0.005,
		DisableEnergyGate:       false,
		MinSpectralClarity:      0.1,
		MaxFlatness:             0.6,
		RMSGate:                 0.01,
		QuietFramesMax:          8,
		ChromaAlphaFast:         0.55,
		ChromaAlphaSlow:         0.15,
		ChromaSigmaCents:        35.0,
		CompressionExp:          0.8,
		TuningHz:                440.0,
		EnableBassBias:          true,
		BassMaxFreq:             250.0,
		BassBias:                0.35,
		EnableHarmonicAnalysis:  true,
		EnableAdvancedQualities: false,
		InversionDetection:      true,
		MaxFPS:                  30.0,
	}
}
