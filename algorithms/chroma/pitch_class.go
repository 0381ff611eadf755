package chroma

import (
	"math"
)

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// WrapClass normalizes any integer to a pitch class in [0, 11].
// Negative values wrap correctly: -1 -> 11.
func WrapClass(n int) int {
	n %= 12
	if n < 0 {
		n += 12
	}
	return n
}

// NoteName returns the note name for a pitch class, wrapping out-of-range
// input via modulo: 12 -> "C", -1 -> "B".
func NoteName(pc int) string {
	return pitchClassNames[WrapClass(pc)]
}

// FreqToMIDI converts a frequency to a continuous MIDI note number.
// tuningHz is the reference frequency of A4 (MIDI note 69).
func FreqToMIDI(freq, tuningHz float64) float64 {
	if freq <= 0 || tuningHz <= 0 {
		return 0
	}
	return 69.0 + 12.0*math.Log2(freq/tuningHz)
}

// MIDIToFreq converts a MIDI note number to frequency
func MIDIToFreq(midi, tuningHz float64) float64 {
	return tuningHz * math.Pow(2.0, (midi-69.0)/12.0)
}

// FreqToClass maps a frequency to its nearest equal-tempered pitch class
func FreqToClass(freq, tuningHz float64) int {
	if freq <= 0 {
		return 0
	}
	return WrapClass(int(math.Round(FreqToMIDI(freq, tuningHz))))
}
