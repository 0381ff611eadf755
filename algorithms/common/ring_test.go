package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingPushAndEvict(t *testing.T) {
	r := NewRing(3)
	assert.Equal(t, 3, r.Cap())
	assert.Zero(t, r.Len())
	assert.False(t, r.Full())

	r.Push(1)
	r.Push(2)
	assert.Equal(t, 2, r.Len())
	assert.False(t, r.Full())
	assert.Equal(t, []float64{1, 2}, r.Values(nil))

	r.Push(3)
	assert.True(t, r.Full())

	// Oldest value drops out
	r.Push(4)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []float64{2, 3, 4}, r.Values(nil))
}

func TestRingMean(t *testing.T) {
	r := NewRing(4)
	assert.Zero(t, r.Mean())

	r.Push(2)
	r.Push(4)
	assert.InDelta(t, 3.0, r.Mean(), 1e-12)

	r.Push(6)
	r.Push(8)
	r.Push(10) // evicts the 2
	assert.InDelta(t, 7.0, r.Mean(), 1e-12)
}

func TestRingClear(t *testing.T) {
	r := NewRing(2)
	r.Push(1)
	r.Push(2)
	r.Clear()

	assert.Zero(t, r.Len())
	assert.False(t, r.Full())
	assert.Empty(t, r.Values(nil))

	r.Push(9)
	assert.Equal(t, []float64{9}, r.Values(nil))
}

func TestRingMinimumCapacity(t *testing.T) {
	r := NewRing(0)
	assert.Equal(t, 1, r.Cap())
	r.Push(1)
	r.Push(2)
	assert.Equal(t, []float64{2}, r.Values(nil))
}
