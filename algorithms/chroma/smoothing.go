package chroma

import (
	"github.com/RyanBlaney/sonido-chords/algorithms/common"
)

// SmootherParams holds parameters for temporal chroma smoothing
type SmootherParams struct {
	AlphaFast          float64 `json:"alpha_fast"`          // Fast EMA coefficient (default 0.55)
	AlphaSlow          float64 `json:"alpha_slow"`          // Slow EMA coefficient (default 0.15)
	HistoryDepth       int     `json:"history_depth"`       // Frames kept for stability measurement
	StabilityThreshold float64 `json:"stability_threshold"` // Stability above which the slow EMA dominates
}

// Smoother maintains fast and slow exponential moving averages of the
// normalized chroma vector and blends them by signal stability. When the
// signal is steady the slow average is the trustworthy estimate; the fast
// average is only needed to track chord transitions.
type Smoother struct {
	params SmootherParams

	fast [12]float64
	slow [12]float64

	// Positional ring of recent normalized vectors, reused in place
	history   [][12]float64
	histHead  int
	histCount int

	stability float64
	primed    bool
	scratch   []float64
}

// NewSmoother creates a chroma smoother with default parameters
func NewSmoother() *Smoother {
	return NewSmootherWithParams(SmootherParams{
		AlphaFast:          0.55,
		AlphaSlow:          0.15,
		HistoryDepth:       5,
		StabilityThreshold: 0.7,
	})
}

// NewSmootherWithParams creates a chroma smoother with custom parameters
func NewSmootherWithParams(params SmootherParams) *Smoother {
	if params.HistoryDepth < 2 {
		params.HistoryDepth = 2
	}
	return &Smoother{
		params:  params,
		history: make([][12]float64, params.HistoryDepth),
		scratch: make([]float64, 0, params.HistoryDepth),
	}
}

// GetParams returns the current parameters
func (s *Smoother) GetParams() SmootherParams {
	return s.params
}

// Update pushes a normalized chroma frame, refreshes both EMAs, and returns
// the stability-blended vector together with the stability score in [0, 1].
func (s *Smoother) Update(raw *[12]float64) ([12]float64, float64) {
	s.history[s.histHead] = *raw
	s.histHead = (s.histHead + 1) % len(s.history)
	if s.histCount < len(s.history) {
		s.histCount++
	}

	s.stability = s.measureStability()

	if !s.primed {
		s.fast = *raw
		s.slow = *raw
		s.primed = true
	} else {
		for i := 0; i < 12; i++ {
			s.fast[i] += s.params.AlphaFast * (raw[i] - s.fast[i])
			s.slow[i] += s.params.AlphaSlow * (raw[i] - s.slow[i])
		}
	}

	// Stable signal: lean on the slow average. Changing signal: follow the
	// fast one so transitions are not lagged away.
	fastWeight := 0.7
	if s.stability > s.params.StabilityThreshold {
		fastWeight = 0.3
	}

	var blended [12]float64
	for i := 0; i < 12; i++ {
		blended[i] = fastWeight*s.fast[i] + (1.0-fastWeight)*s.slow[i]
	}
	return blended, s.stability
}

// measureStability derives a [0, 1] score from the per-class variance of the
// recent history. Identical consecutive frames score 1.
func (s *Smoother) measureStability() float64 {
	if s.histCount < 2 {
		return 0.5
	}

	varianceSum := 0.0
	for pc := 0; pc < 12; pc++ {
		s.scratch = s.scratch[:0]
		for f := 0; f < s.histCount; f++ {
			s.scratch = append(s.scratch, s.history[f][pc])
		}
		varianceSum += common.Variance(s.scratch)
	}

	return common.Clamp(1.0-(varianceSum/12.0)*10.0, 0.0, 1.0)
}

// Stability returns the most recent stability score
func (s *Smoother) Stability() float64 {
	return s.stability
}

// Reset clears the EMAs and history
func (s *Smoother) Reset() {
	s.fast = [12]float64{}
	s.slow = [12]float64{}
	s.histHead = 0
	s.histCount = 0
	s.stability = 0
	s.primed = false
}
