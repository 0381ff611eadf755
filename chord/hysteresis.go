package chord

import (
	"time"

	"github.com/RyanBlaney/sonido-chords/logging"
)

// stableFrameCap bounds the incumbent's stability credit so a long-held
// chord can still be released within a few weak frames
const stableFrameCap = 16

// emissionState is the memory of the hysteresis state machine. heldKey is
// the root+quality identity of the asserted chord ("" = Silent); inversions
// do not change identity, so a C toggling between C and C/E never re-emits.
type emissionState struct {
	heldKey      string
	heldEvent    ChordEvent
	lastChangeAt time.Time
	stableFrames int

	pendingKey    string
	pendingEvent  ChordEvent
	pendingFrames int

	weakSince   time.Time
	silentSince time.Time
}

// observeCandidate consumes a frame whose confidence cleared the adaptive
// entry threshold
func (d *Detector) observeCandidate(ev ChordEvent, key string, now time.Time) {
	st := &d.state
	st.weakSince = time.Time{}
	st.silentSince = time.Time{}
	d.confHistory.Push(ev.Confidence)

	if key == st.heldKey && st.heldKey != "" {
		if st.stableFrames < stableFrameCap {
			st.stableFrames++
		}
		st.heldEvent = ev
		st.pendingKey = ""
		st.pendingFrames = 0
		return
	}

	if key == st.pendingKey {
		st.pendingFrames++
	} else {
		st.pendingKey = key
		st.pendingFrames = 1
	}
	st.pendingEvent = ev

	required := d.params.RequiredStableFrames
	if ev.Confidence > 0.85 && ev.HarmonicStrength > 0.8 {
		// Obvious chords lock in faster
		required -= 2
		if required < 1 {
			required = 1
		}
	}

	if st.pendingFrames < required {
		return
	}
	if !st.lastChangeAt.IsZero() && now.Sub(st.lastChangeAt) < millis(d.params.HoldMsEnter) {
		return
	}

	st.heldKey = key
	st.heldEvent = ev
	st.lastChangeAt = now
	st.stableFrames = d.params.RequiredStableFrames
	st.pendingKey = ""
	st.pendingFrames = 0

	d.confHistory.Clear()
	d.confHistory.Push(ev.Confidence)

	d.logger.Debug("chord change", logging.Fields{
		"name":       ev.Name,
		"confidence": ev.Confidence,
	})
	d.emit(ev)
}

// observeWeak consumes a frame whose confidence fell below the exit
// threshold. The incumbent loses credit gradually; release happens only
// after the weakness persists past the exit hold timer.
func (d *Detector) observeWeak(now time.Time) {
	st := &d.state
	if st.heldKey != "" {
		if st.weakSince.IsZero() {
			st.weakSince = now
		} else if now.Sub(st.weakSince) > millis(d.params.HoldMsExit) {
			d.release(now)
			return
		}
	}
	d.decayCounters()
}

// observeNeutral consumes a frame inside the hysteresis band: not strong
// enough to advance a candidate, not weak enough to start the exit timer
func (d *Detector) observeNeutral() {
	st := &d.state
	st.weakSince = time.Time{}
	st.silentSince = time.Time{}
	if st.pendingFrames > 0 {
		st.pendingFrames--
		if st.pendingFrames == 0 {
			st.pendingKey = ""
		}
	}
}

// observeSilence consumes a gated frame (loudness, energy, clarity or
// flatness). Sustained silence releases the held chord on a longer timer
// than plain weakness.
func (d *Detector) observeSilence(now time.Time) {
	st := &d.state
	if st.heldKey != "" {
		if st.silentSince.IsZero() {
			st.silentSince = now
		} else if now.Sub(st.silentSince) > millis(d.params.HoldMsExit*1.5) {
			d.release(now)
			return
		}
	}
	d.decayCounters()
}

// decayCounters decrements rather than resets the stability counters, so a
// single noisy frame cannot evict a held chord or a forming candidate
func (d *Detector) decayCounters() {
	st := &d.state
	if st.stableFrames > 0 {
		st.stableFrames--
	}
	if st.pendingFrames > 0 {
		st.pendingFrames--
		if st.pendingFrames == 0 {
			st.pendingKey = ""
		}
	}
}

// release performs the Holding -> Silent transition
func (d *Detector) release(now time.Time) {
	st := &d.state
	st.heldKey = ""
	st.heldEvent = ChordEvent{}
	st.lastChangeAt = now
	st.stableFrames = 0
	st.pendingKey = ""
	st.pendingFrames = 0
	st.weakSince = time.Time{}
	st.silentSince = time.Time{}

	d.confHistory.Clear()
	d.consensus.clear()

	d.logger.Debug("chord released")
	d.emit(ChordEvent{Name: "", Confidence: 0})
}

func (d *Detector) emit(ev ChordEvent) {
	if d.onChord != nil {
		d.onChord(ev)
	}
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
