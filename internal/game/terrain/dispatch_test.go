package terrain

import (
	"testing"

	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryCombinationResolves(t *testing.T) {
	combos := 0
	for _, tr := range grid.Terrains() {
		r := For(tr)
		require.NotNil(t, r)
		assert.Equal(t, tr, r.Terrain())
		for _, f := range faction.All() {
			e := r.Resolve(f)
			combos++
			assert.NotEmpty(t, e.Description, "%s/%s", tr, f)
			for _, v := range []int{e.Attack, e.Defense, e.HealthPerTurn} {
				assert.LessOrEqual(t, v, MaxDelta)
				assert.GreaterOrEqual(t, v, -MaxDelta)
			}
		}
	}
	assert.Equal(t, 20, combos)
}

func TestDispatchTable(t *testing.T) {
	tests := []struct {
		terrain grid.Terrain
		faction faction.Faction
		attack  int
		defense int
		health  int
	}{
		{grid.Lava, faction.Fire, 2, 0, 0},
		{grid.Lava, faction.Water, 0, 0, -5},
		{grid.Lava, faction.Earth, 0, 0, 0},
		{grid.Ice, faction.Water, 0, 3, 5},
		{grid.Ice, faction.Fire, 0, 1, 0},
		{grid.Ice, faction.Air, 0, 1, 0},
		{grid.Forest, faction.Earth, 0, 2, 0},
		{grid.Forest, faction.Fire, 0, 2, 0},
		{grid.Stone, faction.Earth, 0, 2, 0},
		{grid.Stone, faction.Air, 0, 0, 0},
		{grid.Desert, faction.Water, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.terrain.String()+"/"+tt.faction.String(), func(t *testing.T) {
			e := Dispatch(tt.terrain, tt.faction)
			assert.Equal(t, tt.attack, e.Attack)
			assert.Equal(t, tt.defense, e.Defense)
			assert.Equal(t, tt.health, e.HealthPerTurn)
		})
	}
}

func TestFireMeltsIce(t *testing.T) {
	to, ok := Dispatch(grid.Ice, faction.Fire).Transformation()
	require.True(t, ok)
	assert.Equal(t, grid.Desert, to)

	_, ok = Dispatch(grid.Ice, faction.Water).Transformation()
	assert.False(t, ok)
}

func TestEffectBounds(t *testing.T) {
	assert.Panics(t, func() { NewEffect(21, 0, 0, "too strong") })
	assert.Panics(t, func() { NewEffect(0, 0, -21, "too deadly") })
	assert.NotPanics(t, func() { NewEffect(-20, 20, 20, "edge") })
	assert.True(t, Neutral(grid.Desert).IsNeutral())
}

func TestForUnknownTerrainPanics(t *testing.T) {
	assert.Panics(t, func() { For(grid.Terrain(42)) })
}
