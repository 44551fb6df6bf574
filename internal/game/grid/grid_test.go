package grid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionIsMapKey(t *testing.T) {
	occupancy := map[Position]string{Pos(1, 2): "golem"}
	assert.Equal(t, "golem", occupancy[Position{X: 1, Y: 2}])
	_, ok := occupancy[Pos(2, 1)]
	assert.False(t, ok)
}

func TestPositionDistances(t *testing.T) {
	a, b := Pos(0, 0), Pos(3, 4)
	assert.Equal(t, 7, a.Manhattan(b))
	assert.InDelta(t, 5.0, a.Euclidean(b), 1e-9)
	assert.True(t, Pos(2, 2).IsAdjacent(Pos(2, 3)))
	assert.False(t, Pos(2, 2).IsAdjacent(Pos(3, 3)))
}

func TestPositionLineExcludesEndpoints(t *testing.T) {
	line := Pos(0, 0).Line(Pos(3, 0))
	assert.Equal(t, []Position{Pos(1, 0), Pos(2, 0)}, line)
	assert.Empty(t, Pos(0, 0).Line(Pos(1, 1)))
}

func TestBattlefieldBounds(t *testing.T) {
	b := NewBattlefield(DefaultSize, Desert)

	_, err := b.Position(10, 0)
	require.ErrorIs(t, err, ErrOutOfBounds)

	pos, err := b.Position(9, 9)
	require.NoError(t, err)
	assert.Equal(t, Pos(9, 9), pos)

	assert.Panics(t, func() { b.MustCell(Pos(-1, 0)) })
	assert.Panics(t, func() { b.Row(10) })
}

func TestComponentsShareCells(t *testing.T) {
	b := NewBattlefield(5, Desert)

	b.Row(1).Apply(func(c *Cell) { c.SetTerrain(Forest) })
	assert.Equal(t, 5, b.Count(Forest))

	// overlapping rectangle sees the row's mutation
	rect := b.Rect(3, 0, 5, 3)
	assert.Equal(t, 6, rect.Len(), "rectangle should be clipped to the board")
	changes := Convert(rect, Forest, Lava)
	assert.Len(t, changes, 2)
	assert.Equal(t, Lava, b.TerrainAt(Pos(3, 1)))
	assert.Equal(t, Lava, b.TerrainAt(Pos(4, 1)))
	assert.Equal(t, Forest, b.TerrainAt(Pos(2, 1)))

	var single Component = b.MustCell(Pos(0, 0))
	Convert(single, Desert, Stone)
	assert.Equal(t, Stone, b.TerrainAt(Pos(0, 0)))

	Convert(b, Desert, Ice)
	assert.Zero(t, b.Count(Desert))
}

func TestRandomRegionStaysOnBoard(t *testing.T) {
	b := NewBattlefield(DefaultSize, Desert)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		region := b.RandomRegion(rng, 3, 3)
		require.Equal(t, 9, region.Len())
		for _, c := range region.Cells() {
			assert.True(t, b.Contains(c.Position()))
		}
	}
}

func TestGenerateFollowsDistribution(t *testing.T) {
	b, err := Generate(DefaultSize, nil, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, 15, b.Count(Lava))
	assert.Equal(t, 15, b.Count(Ice))
	assert.Equal(t, 20, b.Count(Forest))
	assert.Equal(t, 30, b.Count(Desert))
	assert.Equal(t, 20, b.Count(Stone))

	_, err = Generate(DefaultSize, map[Terrain]int{Lava: 50}, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestParseRoundTrip(t *testing.T) {
	layout := []string{
		"LIF",
		".S.",
		"FFI",
	}
	b, err := Parse(layout...)
	require.NoError(t, err)
	assert.Equal(t, Ice, b.TerrainAt(Pos(1, 0)))
	assert.Equal(t, Stone, b.TerrainAt(Pos(1, 1)))
	assert.Equal(t, layout, b.Layout())

	_, err = Parse("LI", "X.")
	assert.Error(t, err)
}

func TestParseTerrain(t *testing.T) {
	got, err := ParseTerrain("forest")
	require.NoError(t, err)
	assert.Equal(t, Forest, got)
	assert.Equal(t, 3, Stone.MoveCost())

	_, err = ParseTerrain("swamp")
	assert.Error(t, err)
}
