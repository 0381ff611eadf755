package chord

import (
	"math"

	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
)

// Extension thresholds are relative to the peak chroma energy of the triad
// tones. Sevenths need a solid presence before they rename the chord;
// higher extensions ride on an established seventh and can be softer.
const (
	seventhThreshold   = 0.35
	majSeventhMin      = 0.40
	sixthThreshold     = 0.40
	extensionThreshold = 0.28
)

// extendQuality upgrades a major or minor triad label based on the relative
// energy at the seventh, sixth, ninth, eleventh and thirteenth positions.
// The sixth and the thirteenth share a pitch class; the presence of any
// seventh is what tells a 13-family chord apart from a plain sixth chord.
func extendQuality(c *[12]float64, root int, quality string) string {
	if quality != "" && quality != "m" {
		return quality
	}
	minor := quality == "m"

	thirdIv := 4
	if minor {
		thirdIv = 3
	}

	rel := func(iv int) float64 {
		return c[chroma.WrapClass(root+iv)]
	}
	triadPeak := math.Max(rel(0), math.Max(rel(thirdIv), rel(7)))
	if triadPeak <= 0 {
		return quality
	}

	flatSeventh := rel(10) / triadPeak
	majSeventh := rel(11) / triadPeak
	sixth := rel(9) / triadPeak
	ninth := rel(2) / triadPeak
	eleventh := rel(5) / triadPeak

	prefix := ""
	if minor {
		prefix = "m"
	}

	switch {
	case majSeventh >= majSeventhMin && majSeventh > flatSeventh:
		switch {
		case sixth >= extensionThreshold:
			return prefix + "Maj13"
		case eleventh >= extensionThreshold:
			return prefix + "Maj11"
		case ninth >= extensionThreshold:
			return prefix + "Maj9"
		default:
			return prefix + "Maj7"
		}

	case flatSeventh >= seventhThreshold:
		switch {
		case sixth >= extensionThreshold:
			return prefix + "13"
		case eleventh >= extensionThreshold:
			return prefix + "11"
		case ninth >= extensionThreshold:
			return prefix + "9"
		default:
			return prefix + "7"
		}

	case sixth >= sixthThreshold:
		if ninth >= extensionThreshold {
			return prefix + "6/9"
		}
		return prefix + "6"

	case ninth >= extensionThreshold:
		return prefix + "add9"
	}

	return quality
}
