package chord

import (
	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
)

// Template is an immutable root-relative chord shape. Pattern is the
// reference chroma vector with the root at index 0; Intervals lists the
// semitone offsets considered chord tones.
type Template struct {
	Suffix    string     // Quality suffix appended to the root name ("" = major)
	Pattern   [12]float64
	Intervals []int
	Weight    float64 // Template prior; triads outrank ambiguous shapes
}

func newTemplate(suffix string, weight float64, intervals ...int) Template {
	t := Template{
		Suffix:    suffix,
		Intervals: intervals,
		Weight:    weight,
	}
	for _, iv := range intervals {
		t.Pattern[chroma.WrapClass(iv)] = 1.0
	}
	return t
}

// templateBank builds the fixed matching bank. Seventh-family and extension
// qualities are not matched directly: the bank picks the best triad and the
// extension rules upgrade the label afterwards, which keeps a C6 from being
// swallowed by its relative minor seventh.
func templateBank(advanced bool) []Template {
	bank := []Template{
		newTemplate("", 1.0, 0, 4, 7),
		newTemplate("m", 1.0, 0, 3, 7),
		newTemplate("dim", 0.9, 0, 3, 6),
		newTemplate("aug", 0.8, 0, 4, 8),
		newTemplate("sus2", 0.85, 0, 2, 7),
		newTemplate("sus4", 0.85, 0, 5, 7),
		newTemplate("5", 0.7, 0, 7),
	}

	if advanced {
		bank = append(bank,
			newTemplate("dim7", 0.75, 0, 3, 6, 9),
			newTemplate("m7b5", 0.75, 0, 3, 6, 10),
			newTemplate("mMaj7", 0.75, 0, 3, 7, 11),
		)
	}

	return bank
}

// rotatePattern rotates a root-relative pattern so its root lands on the
// given pitch class
func rotatePattern(p [12]float64, root int) [12]float64 {
	var out [12]float64
	for i, v := range p {
		out[chroma.WrapClass(i+root)] = v
	}
	return out
}

// isChordTone reports whether a pitch class is a chord tone of the template
// rooted at root
func isChordTone(t *Template, root, pc int) bool {
	for _, iv := range t.Intervals {
		if chroma.WrapClass(root+iv) == pc {
			return true
		}
	}
	return false
}
