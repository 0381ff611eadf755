package chord

import (
	"math"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/algorithms/spectral"
	"github.com/RyanBlaney/sonido-chords/logging"
)

// bassMinFreq is the lower bound of the bass analysis region. Content below
// this is rumble, not pitch evidence.
const bassMinFreq = 40.0

const confHistoryDepth = 8

// Detector converts a stream of frequency-domain magnitude frames into
// stabilized chord-change events. Each Update pulls one spectral frame from
// the provider, runs the chroma and matching pipeline, and feeds the result
// through consensus voting and the hysteresis state machine. The chord
// callback fires synchronously from Update, at most once per call, only on
// a state transition.
//
// A mutex serializes Update, SetParams and Diagnostics so the self-driving
// loop can coexist with host calls, but the detector performs no internal
// parallelism.
type Detector struct {
	mu       sync.Mutex
	params   Params
	provider SpectrumProvider
	rms      RMSProvider
	clock    Clock
	logger   logging.Logger
	onChord  func(ChordEvent)

	spectrum  []float64
	features  *spectral.FrameAnalyzer
	extractor *chroma.Extractor
	smoother  *chroma.Smoother
	templates []Template

	noiseFloor  float64
	quietFrames int
	bassChroma  [12]float64
	bassPrimed  bool

	consensus   consensusBuffer
	confHistory *common.Ring
	state       emissionState
	diag        Diagnostics

	running  bool
	loopStop chan struct{}
	loopDone chan struct{}
}

// NewDetector creates a chord detector with default parameters. onChord may
// be nil; events are then dropped.
func NewDetector(provider SpectrumProvider, onChord func(ChordEvent)) *Detector {
	return NewDetectorWithParams(provider, onChord, DefaultParams())
}

// NewDetectorWithParams creates a chord detector with custom parameters
func NewDetectorWithParams(provider SpectrumProvider, onChord func(ChordEvent), params Params) *Detector {
	d := &Detector{
		provider:    provider,
		onChord:     onChord,
		clock:       SystemClock,
		logger:      logging.GetGlobalLogger().WithFields(logging.Fields{"component": "chord_detector"}),
		confHistory: common.NewRing(confHistoryDepth),
	}
	d.applyParams(params)

	if provider != nil {
		if numBins := provider.FFTSize() / 2; numBins > 0 {
			d.spectrum = make([]float64, numBins)
			d.extractor.Resize(numBins)
		}
	}
	return d
}

// applyParams rebuilds the pipeline components for a configuration snapshot
func (d *Detector) applyParams(params Params) {
	d.params = params

	d.features = spectral.NewFrameAnalyzerWithParams(spectral.FrameFeaturesParams{
		SampleRate:    params.SampleRate,
		MinFreq:       params.MinFreq,
		MaxFreq:       params.MaxFreq,
		TrackFlatness: params.MaxFlatness > 0,
	})
	d.extractor = chroma.NewExtractorWithParams(chroma.ExtractorParams{
		SampleRate:     params.SampleRate,
		MinFreq:        params.MinFreq,
		MaxFreq:        params.MaxFreq,
		TuningHz:       params.TuningHz,
		SigmaCents:     params.ChromaSigmaCents,
		CompressionExp: params.CompressionExp,
	})
	d.smoother = chroma.NewSmootherWithParams(chroma.SmootherParams{
		AlphaFast:          params.ChromaAlphaFast,
		AlphaSlow:          params.ChromaAlphaSlow,
		HistoryDepth:       5,
		StabilityThreshold: 0.7,
	})
	d.templates = templateBank(params.EnableAdvancedQualities)

	if len(d.spectrum) > 0 {
		d.extractor.Resize(len(d.spectrum))
	}
}

// SetRMSProvider configures the optional loudness gate input
func (d *Detector) SetRMSProvider(fn RMSProvider) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rms = fn
}

// SetClock replaces the time base. Intended for tests.
func (d *Detector) SetClock(c Clock) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c != nil {
		d.clock = c
	}
}

// SetLogger replaces the detector's logger
func (d *Detector) SetLogger(l logging.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if l != nil {
		d.logger = l
	}
}

// GetParams returns a copy of the current configuration snapshot
func (d *Detector) GetParams() Params {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.params
}

// SetParams atomically swaps the configuration snapshot and rebuilds the
// affected pipeline stages. Emission state survives a reconfigure; smoothed
// chroma state is rebuilt and re-primes on the next frame.
func (d *Detector) SetParams(params Params) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applyParams(params)
}

// Diagnostics returns a read-only snapshot of the detector internals
func (d *Detector) Diagnostics() Diagnostics {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.diag
}

// Update processes one spectral frame. Call it once per audio/UI tick, or
// use Start for a self-driven capped-rate loop. Degenerate input (missing
// provider, silent spectrum) is treated as silence, never as an error.
func (d *Detector) Update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.provider == nil {
		return
	}
	now := d.clock.Now()

	// Loudness gate. A short run of quiet frames is a dropout and skips
	// the pipeline without touching the release timers; a sustained run
	// counts as silence.
	if d.rms != nil {
		if d.rms() < d.params.RMSGate {
			d.quietFrames++
			if d.quietFrames >= d.params.QuietFramesMax {
				d.observeSilence(now)
				d.resetFrameDiagnostics(0)
			}
			return
		}
		d.quietFrames = 0
	}

	// Resize before anything reads the buffer; the provider's FFT size can
	// change between calls
	numBins := d.provider.FFTSize() / 2
	if numBins <= 0 {
		return
	}
	if len(d.spectrum) != numBins {
		d.spectrum = make([]float64, numBins)
		d.extractor.Resize(numBins)
		d.logger.Debug("spectral buffer resized", logging.Fields{"bins": numBins})
	}
	d.provider.FrequencyData(d.spectrum)

	feats := d.features.Compute(d.spectrum)

	var raw [12]float64
	rawTotal := d.extractor.Compute(d.spectrum, &raw)
	if rawTotal <= 1e-9 {
		d.observeSilence(now)
		d.resetFrameDiagnostics(feats.Clarity)
		return
	}

	d.extractor.Normalize(&raw)
	blended, stability := d.smoother.Update(&raw)

	chromaEnergy := 0.0
	for _, v := range blended {
		chromaEnergy += v
	}

	// Noise floor rises slowly and falls fast, so it tracks the floor of
	// the signal rather than the signal itself
	if chromaEnergy < d.noiseFloor {
		d.noiseFloor += 0.3 * (chromaEnergy - d.noiseFloor)
	} else {
		d.noiseFloor += d.params.NoiseFloorAlpha * (chromaEnergy - d.noiseFloor)
	}

	gate := math.Max(0.03, d.noiseFloor*1.5) / math.Max(0.5, feats.Clarity)
	inactive := (!d.params.DisableEnergyGate && chromaEnergy < gate) ||
		feats.Clarity < d.params.MinSpectralClarity ||
		(d.params.MaxFlatness > 0 && feats.Flatness > d.params.MaxFlatness)
	if inactive {
		d.observeSilence(now)
		d.resetFrameDiagnostics(feats.Clarity)
		d.diag.DynamicGate = gate
		d.diag.Stability = stability
		return
	}

	active := 0
	for _, v := range blended {
		if v > d.params.HarmonicThreshold*chromaEnergy {
			active++
		}
	}
	if active < 2 {
		// Single note or residue: no detection attempt
		d.decayCounters()
		d.resetFrameDiagnostics(feats.Clarity)
		d.diag.ActiveClasses = active
		d.diag.DynamicGate = gate
		d.diag.Stability = stability
		return
	}

	biased := blended
	bassClass := -1
	bassStrength := 0.0
	if d.params.EnableBassBias || d.params.InversionDetection {
		bassClass, bassStrength = d.updateBassEstimate()
		if d.params.EnableBassBias && bassClass >= 0 {
			chromaPeak := 0.0
			for _, v := range blended {
				if v > chromaPeak {
					chromaPeak = v
				}
			}
			biased[bassClass] += d.params.BassBias * chromaPeak
		}
	}

	best, ok := d.matchTemplates(&biased, feats.Clarity)
	if !ok {
		d.decayCounters()
		return
	}

	quality := best.template.Suffix
	if quality == "" || quality == "m" {
		quality = extendQuality(&biased, best.root, quality)
	}

	ev := ChordEvent{
		Name:             chroma.NoteName(best.root) + quality,
		Confidence:       best.confidence,
		Quality:          quality,
		Root:             best.root,
		Bass:             best.root,
		HarmonicStrength: best.harmonic,
		SpectralClarity:  feats.Clarity,
	}

	if d.params.InversionDetection && bassClass >= 0 && bassClass != best.root &&
		isChordTone(best.template, best.root, bassClass) &&
		d.bassChroma[bassClass] > 1.3*d.bassChroma[best.root] {
		ev.Bass = bassClass
		ev.Inversion = true
		ev.Name += "/" + chroma.NoteName(bassClass)
		ev.Confidence *= 0.95
	}

	d.consensus.push(best.root, quality, ev.Confidence)
	if root, q, avgConf, ok := d.consensus.vote(); ok {
		if (root != ev.Root || q != ev.Quality) && avgConf > ev.Confidence+consensusMargin {
			ev.Root = root
			ev.Quality = q
			ev.Name = chroma.NoteName(root) + q
			ev.Bass = root
			ev.Inversion = false
			ev.Confidence = avgConf
		}
	}

	threshold := d.adaptiveThreshold(active, feats.Clarity, best.harmonic)

	d.diag = Diagnostics{
		NoiseFloor:        d.noiseFloor,
		ActiveClasses:     active,
		Confidence:        ev.Confidence,
		SpectralClarity:   feats.Clarity,
		HarmonicStrength:  best.harmonic,
		BassStrength:      bassStrength,
		AdaptiveThreshold: threshold,
		DynamicGate:       gate,
		TuningOffsetCents: d.extractor.EstimateTuningOffset(d.spectrum),
		Stability:         stability,
	}

	key := chroma.NoteName(ev.Root) + ev.Quality
	switch {
	case ev.Confidence >= threshold:
		d.observeCandidate(ev, key, now)
	case ev.Confidence < d.params.ConfExit:
		d.observeWeak(now)
	default:
		d.observeNeutral()
	}
	d.diag.CurrentChord = d.state.heldEvent.Name
}

// updateBassEstimate refreshes the smoothed bass-region chroma and returns
// the dominant bass pitch class with its relative strength
func (d *Detector) updateBassEstimate() (int, float64) {
	var bassRaw [12]float64
	total := d.extractor.ComputeBand(d.spectrum, bassMinFreq, d.params.BassMaxFreq, &bassRaw)
	if total > 0 {
		if !d.bassPrimed {
			d.bassChroma = bassRaw
			d.bassPrimed = true
		} else {
			for i := range d.bassChroma {
				d.bassChroma[i] += 0.3 * (bassRaw[i] - d.bassChroma[i])
			}
		}
	}

	bassClass := -1
	peak := 0.0
	sum := 0.0
	for i, v := range d.bassChroma {
		sum += v
		if v > peak {
			peak = v
			bassClass = i
		}
	}
	if bassClass < 0 || peak <= 0 {
		return -1, 0.0
	}
	return bassClass, peak / (sum + 1e-12)
}

// adaptiveThreshold nudges the entry threshold: up when many classes are
// active (ambiguous signal), down when the evidence is clean, and down
// again when recent confidence has been consistently strong
func (d *Detector) adaptiveThreshold(active int, clarity, harmonic float64) float64 {
	threshold := d.params.ConfEnter
	if active > 4 {
		threshold += 0.05 * float64(active-4)
	}
	if clarity > 0.6 && harmonic > 0.7 {
		threshold -= 0.08
	}
	if d.confHistory.Full() && d.confHistory.Mean() > 0.7 {
		threshold -= 0.05
	}

	hi := math.Max(0.65, d.params.ConfEnter)
	return common.Clamp(threshold, 0.25, hi)
}

// resetFrameDiagnostics clears the per-frame diagnostic values while
// keeping the slow-moving ones
func (d *Detector) resetFrameDiagnostics(clarity float64) {
	d.diag.ActiveClasses = 0
	d.diag.Confidence = 0
	d.diag.HarmonicStrength = 0
	d.diag.BassStrength = 0
	d.diag.SpectralClarity = clarity
	d.diag.NoiseFloor = d.noiseFloor
	d.diag.CurrentChord = d.state.heldEvent.Name
}

// Start begins a self-driven update loop capped at MaxFPS. Safe to call
// while running (no-op). The loop stops when Stop is called.
func (d *Detector) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}

	fps := d.params.MaxFPS
	if fps <= 0 {
		fps = 30.0
	}
	interval := time.Duration(float64(time.Second) / fps)

	d.loopStop = make(chan struct{})
	d.loopDone = make(chan struct{})
	d.running = true

	go d.runLoop(d.loopStop, d.loopDone, interval)
}

func (d *Detector) runLoop(stop <-chan struct{}, done chan<- struct{}, interval time.Duration) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.Update()
		}
	}
}

// Stop cancels the self-driven loop and waits for it to exit. Safe to call
// multiple times or before Start.
func (d *Detector) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	stop := d.loopStop
	done := d.loopDone
	d.running = false
	d.mu.Unlock()

	close(stop)
	<-done
}
