package chord

import (
	"math"
)

const (
	consensusDepth     = 8   // Candidates retained
	consensusWindow    = 5   // Entries considered per vote
	consensusDecay     = 0.8 // Per-frame-of-age vote decay
	consensusMinWeight = 1.5 // Accumulated weight needed to override
	consensusMargin    = 0.05
)

type consensusEntry struct {
	root       int
	quality    string
	confidence float64
}

type consensusKey struct {
	root    int
	quality string
}

// consensusBuffer is a fixed-capacity ring of recent detection candidates
// used for temporally weighted voting. Slots are reused in place; nothing
// allocates per frame besides the vote tally map.
type consensusBuffer struct {
	entries [consensusDepth]consensusEntry
	head    int
	count   int
}

func (b *consensusBuffer) push(root int, quality string, confidence float64) {
	b.entries[b.head] = consensusEntry{root: root, quality: quality, confidence: confidence}
	b.head = (b.head + 1) % consensusDepth
	if b.count < consensusDepth {
		b.count++
	}
}

func (b *consensusBuffer) clear() {
	b.head = 0
	b.count = 0
}

// vote tallies a confidence-weighted, age-decayed vote over the most recent
// window of candidates. ok is true only when the top pair has accumulated
// enough weight to be trusted over a single frame.
func (b *consensusBuffer) vote() (root int, quality string, avgConfidence float64, ok bool) {
	window := consensusWindow
	if b.count < window {
		window = b.count
	}
	if window == 0 {
		return 0, "", 0, false
	}

	type tally struct {
		weight  float64
		confSum float64
		n       int
	}
	votes := make(map[consensusKey]*tally, window)

	for age := 0; age < window; age++ {
		idx := (b.head - 1 - age + consensusDepth) % consensusDepth
		e := b.entries[idx]
		key := consensusKey{root: e.root, quality: e.quality}

		t := votes[key]
		if t == nil {
			t = &tally{}
			votes[key] = t
		}
		t.weight += math.Pow(consensusDecay, float64(age)) * e.confidence
		t.confSum += e.confidence
		t.n++
	}

	var bestKey consensusKey
	bestWeight := -1.0
	var bestTally *tally
	for key, t := range votes {
		if t.weight > bestWeight {
			bestWeight = t.weight
			bestKey = key
			bestTally = t
		}
	}

	if bestTally == nil || bestWeight < consensusMinWeight {
		return 0, "", 0, false
	}
	return bestKey.root, bestKey.quality, bestTally.confSum / float64(bestTally.n), true
}
