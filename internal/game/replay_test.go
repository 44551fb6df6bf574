package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundView(round int) MatchView {
	return MatchView{ID: "match-1", Phase: "TURN", Round: round, Size: 5}
}

func TestNewReplay(t *testing.T) {
	r := NewReplay("match-1", 0)
	assert.Equal(t, "match-1", r.MatchID)
	assert.Equal(t, 0, r.Size())
	assert.Equal(t, DefaultReplayLimit, r.limit)

	_, ok := r.Next()
	assert.False(t, ok)
	_, ok = r.Skip(1)
	assert.False(t, ok)
}

func TestReplayRecordSkipsRepeatedState(t *testing.T) {
	r := NewReplay("match-1", 0)
	require.NoError(t, r.Record(roundView(1)))
	require.NoError(t, r.Record(roundView(1)))
	require.NoError(t, r.Record(roundView(2)))
	require.NoError(t, r.Record(roundView(1)))

	assert.Equal(t, 3, r.Size())
	f, ok := r.At(2)
	require.True(t, ok)
	assert.Equal(t, 1, f.View.Round)
	assert.NotEmpty(t, f.Checksum)
}

func TestReplayNavigation(t *testing.T) {
	r := NewReplay("match-1", 0)
	for i := 1; i <= 5; i++ {
		require.NoError(t, r.Record(roundView(i)))
	}

	f, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, 1, f.View.Round)
	f, _ = r.Next()
	assert.Equal(t, 2, f.View.Round)

	f, ok = r.Previous()
	require.True(t, ok)
	assert.Equal(t, 2, f.View.Round)
	f, _ = r.Previous()
	assert.Equal(t, 1, f.View.Round)
	_, ok = r.Previous()
	assert.False(t, ok, "cursor is at the start")

	f, ok = r.Skip(3)
	require.True(t, ok)
	assert.Equal(t, 4, f.View.Round)
	f, _ = r.Skip(10)
	assert.Equal(t, 5, f.View.Round, "skip clamps to the last frame")
	f, _ = r.Skip(-10)
	assert.Equal(t, 1, f.View.Round)

	r.Skip(4)
	r.Start()
	f, _ = r.Next()
	assert.Equal(t, 1, f.View.Round)

	_, ok = r.At(5)
	assert.False(t, ok)
	_, ok = r.At(-1)
	assert.False(t, ok)
}

func TestReplayLimitDropsOldestFrames(t *testing.T) {
	r := NewReplay("match-1", 3)
	for i := 1; i <= 5; i++ {
		require.NoError(t, r.Record(roundView(i)))
	}
	assert.Equal(t, 3, r.Size())
	f, _ := r.At(0)
	assert.Equal(t, 3, f.View.Round)
}

func TestReplayCloneHasOwnCursor(t *testing.T) {
	r := NewReplay("match-1", 0)
	require.NoError(t, r.Record(roundView(1)))
	require.NoError(t, r.Record(roundView(2)))
	r.Next()

	c := r.Clone()
	f, ok := c.Next()
	require.True(t, ok)
	assert.Equal(t, 1, f.View.Round)

	require.NoError(t, r.Record(roundView(3)))
	assert.Equal(t, 2, c.Size())
	assert.Equal(t, 3, r.Size())
}
