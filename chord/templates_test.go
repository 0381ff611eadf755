package chord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateBank(t *testing.T) {
	base := templateBank(false)
	assert.Len(t, base, 7)

	advanced := templateBank(true)
	assert.Len(t, advanced, 10)

	suffixes := make(map[string]bool, len(advanced))
	for i := range advanced {
		suffixes[advanced[i].Suffix] = true
	}
	for _, want := range []string{"", "m", "dim", "aug", "sus2", "sus4", "5", "dim7", "m7b5", "mMaj7"} {
		assert.True(t, suffixes[want], "missing template %q", want)
	}

	// Triads carry full prior weight; ambiguous shapes are discounted
	for i := range advanced {
		tpl := &advanced[i]
		switch tpl.Suffix {
		case "", "m":
			assert.InDelta(t, 1.0, tpl.Weight, 1e-9)
		default:
			assert.Less(t, tpl.Weight, 1.0)
		}
	}
}

func TestRotatePattern(t *testing.T) {
	major := newTemplate("", 1.0, 0, 4, 7)

	// E major: E, G#, B
	rotated := rotatePattern(major.Pattern, 4)
	for pc, v := range rotated {
		switch pc {
		case 4, 8, 11:
			assert.InDelta(t, 1.0, v, 1e-9, "pc %d", pc)
		default:
			assert.Zero(t, v, "pc %d", pc)
		}
	}

	// Rotation wraps around the octave
	rotated = rotatePattern(major.Pattern, 9)
	assert.InDelta(t, 1.0, rotated[9], 1e-9)
	assert.InDelta(t, 1.0, rotated[1], 1e-9)
	assert.InDelta(t, 1.0, rotated[4], 1e-9)
}

func TestIsChordTone(t *testing.T) {
	minor := newTemplate("m", 1.0, 0, 3, 7)

	// A minor: A, C, E
	assert.True(t, isChordTone(&minor, 9, 9))
	assert.True(t, isChordTone(&minor, 9, 0))
	assert.True(t, isChordTone(&minor, 9, 4))
	assert.False(t, isChordTone(&minor, 9, 7))
	assert.False(t, isChordTone(&minor, 9, 11))
}

func TestMatchTemplatesPicksTriads(t *testing.T) {
	d := NewDetectorWithParams(nil, nil, DefaultParams())

	set := func(vals map[int]float64) *[12]float64 {
		var c [12]float64
		for pc, v := range vals {
			c[pc] = v
		}
		return &c
	}

	tests := []struct {
		name       string
		chroma     *[12]float64
		wantRoot   int
		wantSuffix string
	}{
		{"major", set(map[int]float64{0: 1.0, 4: 0.9, 7: 0.85}), 0, ""},
		{"minor", set(map[int]float64{9: 1.0, 0: 0.9, 4: 0.85}), 9, "m"},
		{"dim", set(map[int]float64{2: 1.0, 5: 0.9, 8: 0.85}), 2, "dim"},
		{"sus2", set(map[int]float64{0: 1.0, 2: 0.9, 7: 0.95}), 0, "sus2"},
		{"power", set(map[int]float64{4: 1.0, 11: 0.9}), 4, "5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best, ok := d.matchTemplates(tt.chroma, 0.5)
			require.True(t, ok)
			assert.Equal(t, tt.wantRoot, best.root)
			assert.Equal(t, tt.wantSuffix, best.template.Suffix)
			assert.Greater(t, best.confidence, 0.5)
		})
	}
}

func TestMatchTemplatesEmptyChroma(t *testing.T) {
	d := NewDetectorWithParams(nil, nil, DefaultParams())
	var empty [12]float64
	_, ok := d.matchTemplates(&empty, 0.5)
	assert.False(t, ok)
}
