package chord

import (
	"math"

	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
	"github.com/RyanBlaney/sonido-chords/algorithms/common"
)

// matchResult is the transient outcome of scoring one frame against the bank
type matchResult struct {
	root       int
	template   *Template
	score      float64
	confidence float64
	harmonic   float64
}

// matchTemplates scores every template at every root against the (possibly
// bass-biased) chroma and returns the best candidate. The match score blends
// a normalized dot product, cosine similarity and harmonic-series alignment;
// confidence is computed separately for the winner.
func (d *Detector) matchTemplates(c *[12]float64, clarity float64) (matchResult, bool) {
	peak := 0.0
	for _, v := range c {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return matchResult{}, false
	}

	best := matchResult{score: -1.0}
	for ti := range d.templates {
		t := &d.templates[ti]
		for root := 0; root < 12; root++ {
			pattern := rotatePattern(t.Pattern, root)

			dotScore := common.Dot(c[:], pattern[:]) / (float64(len(t.Intervals)) * peak)
			cosScore := common.CosineSimilarity(c[:], pattern[:])

			var score float64
			if d.params.EnableHarmonicAnalysis {
				harm := harmonicAlignment(c, root, t, peak)
				score = t.Weight * (0.3*dotScore + 0.4*cosScore + 0.3*harm)
			} else {
				score = t.Weight * (0.45*dotScore + 0.55*cosScore)
			}

			if score > best.score {
				best = matchResult{
					root:     root,
					template: t,
					score:    score,
				}
			}
		}
	}

	if best.template == nil {
		return matchResult{}, false
	}

	if d.params.EnableHarmonicAnalysis {
		best.harmonic = harmonicAlignment(c, best.root, best.template, peak)
	} else {
		best.harmonic = best.score
	}
	best.confidence = d.scoreConfidence(c, best.root, best.template, clarity)
	return best, true
}

// harmonicAlignment compares the energy at the root, third, fifth, seventh
// and ninth slots to what the template expects. Expected tones contribute
// their relative energy; slots the template leaves empty contribute the
// complement, so extra energy in a foreign slot costs the candidate.
func harmonicAlignment(c *[12]float64, root int, t *Template, peak float64) float64 {
	rel := func(iv int) float64 {
		return c[chroma.WrapClass(root+iv)] / peak
	}
	has := func(iv int) bool {
		for _, v := range t.Intervals {
			if v == iv {
				return true
			}
		}
		return false
	}

	score := 0.35 * rel(0)

	// Third slot: major or minor third, or the expectation of neither
	switch {
	case has(4):
		score += 0.25 * rel(4)
	case has(3):
		score += 0.25 * rel(3)
	default:
		score += 0.25 * (1.0 - math.Max(rel(3), rel(4)))
	}

	// Fifth slot: perfect, diminished or augmented
	switch {
	case has(7):
		score += 0.25 * rel(7)
	case has(6):
		score += 0.25 * rel(6)
	case has(8):
		score += 0.25 * rel(8)
	default:
		score += 0.25 * (1.0 - rel(7))
	}

	// Seventh slot
	switch {
	case has(10):
		score += 0.10 * rel(10)
	case has(11):
		score += 0.10 * rel(11)
	case has(9):
		// Diminished sevenths sit at the sixth offset
		score += 0.10 * rel(9)
	default:
		score += 0.10 * (1.0 - math.Max(rel(10), rel(11)))
	}

	// Ninth slot
	if has(2) {
		score += 0.05 * rel(2)
	} else {
		score += 0.05 * (1.0 - rel(2))
	}

	return common.Clamp(score, 0.0, 1.0)
}

// scoreConfidence estimates how well the chroma matches the winning
// template: cosine similarity, penalized by energy landing outside the
// chord tones, rewarded for strong presence at the chord-tone positions
// and for spectral clarity. Clamped to [0, 1].
func (d *Detector) scoreConfidence(c *[12]float64, root int, t *Template, clarity float64) float64 {
	pattern := rotatePattern(t.Pattern, root)

	total := 0.0
	peak := 0.0
	for _, v := range c {
		total += v
		if v > peak {
			peak = v
		}
	}
	if total <= 0 || peak <= 0 {
		return 0.0
	}

	chordTone := 0.0
	nonChord := 0.0
	for i, v := range c {
		if pattern[i] > 0 {
			chordTone += v
		} else {
			nonChord += v
		}
	}

	conf := common.CosineSimilarity(c[:], pattern[:])
	conf -= 0.5 * (nonChord / total)
	conf += 0.25 * (chordTone / (float64(len(t.Intervals)) * peak))
	conf += 0.1 * clarity

	return common.Clamp(conf, 0.0, 1.0)
}
