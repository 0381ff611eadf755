package chord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsensusNeedsAccumulatedWeight(t *testing.T) {
	var b consensusBuffer

	_, _, _, ok := b.vote()
	assert.False(t, ok)

	// A single confident frame is not enough to trust
	b.push(0, "", 0.9)
	_, _, _, ok = b.vote()
	assert.False(t, ok)

	b.push(0, "", 0.9)
	b.push(0, "", 0.9)
	root, quality, avgConf, ok := b.vote()
	require.True(t, ok)
	assert.Equal(t, 0, root)
	assert.Equal(t, "", quality)
	assert.InDelta(t, 0.9, avgConf, 1e-9)
}

func TestConsensusRecentFramesOutvoteOld(t *testing.T) {
	var b consensusBuffer
	for i := 0; i < 3; i++ {
		b.push(0, "", 0.9)
	}
	for i := 0; i < 2; i++ {
		b.push(5, "m", 0.9)
	}

	// F minor holds ages 0 and 1 of the window; decay leaves the three C
	// major frames behind it
	root, quality, _, ok := b.vote()
	require.True(t, ok)
	assert.Equal(t, 5, root)
	assert.Equal(t, "m", quality)
}

func TestConsensusQualitySplitsVotes(t *testing.T) {
	var b consensusBuffer
	b.push(9, "m", 0.8)
	b.push(9, "", 0.8)
	b.push(9, "m", 0.8)
	b.push(9, "", 0.8)
	b.push(9, "m", 0.8)

	// Same root, different quality: separate tallies, the better-placed
	// one wins
	root, quality, _, ok := b.vote()
	require.True(t, ok)
	assert.Equal(t, 9, root)
	assert.Equal(t, "m", quality)
}

func TestConsensusClear(t *testing.T) {
	var b consensusBuffer
	for i := 0; i < 5; i++ {
		b.push(0, "", 0.9)
	}
	b.clear()
	_, _, _, ok := b.vote()
	assert.False(t, ok)
}

func TestConsensusWindowIgnoresOldEntries(t *testing.T) {
	var b consensusBuffer
	for i := 0; i < consensusDepth; i++ {
		b.push(0, "", 0.9)
	}
	// Push enough G frames to fill the vote window completely
	for i := 0; i < consensusWindow; i++ {
		b.push(7, "", 0.9)
	}

	root, _, _, ok := b.vote()
	require.True(t, ok)
	assert.Equal(t, 7, root)
}
