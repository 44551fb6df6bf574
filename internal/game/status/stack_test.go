package status

import (
	"testing"

	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/terrain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnv map[string]int

func (e fakeEnv) AdjacentAllies(unitID string) int { return e[unitID] }

func TestSumIsOrderIndependent(t *testing.T) {
	a := NewStack()
	a.Add(Empowered.New())
	a.Add(NewTerrainBonus(terrain.Dispatch(grid.Forest, faction.Earth)))
	a.Add(Exposed.New())

	b := NewStack()
	b.Add(Exposed.New())
	b.Add(Empowered.New())
	b.Add(NewTerrainBonus(terrain.Dispatch(grid.Forest, faction.Earth)))

	want := Deltas{Attack: 2, Defense: 0}
	assert.Equal(t, want, a.Sum(nil, "u", All))
	assert.Equal(t, want, b.Sum(nil, "u", nil))
}

func TestReplaceKindLeavesOthers(t *testing.T) {
	s := NewStack()
	buff := Fortified.New()
	s.Add(buff)
	s.Add(NewTerrainBonus(terrain.Dispatch(grid.Ice, faction.Water)))
	s.Add(NewSynergyBonus(faction.Fire))

	removed := s.ReplaceKind(KindTerrain, NewTerrainBonus(terrain.Dispatch(grid.Stone, faction.Earth)))
	require.Len(t, removed, 1)
	assert.Equal(t, 3, removed[0].Deltas(nil, "").Defense)

	assert.Equal(t, 3, s.Len())
	m, ok := s.Find(KindTerrain)
	require.True(t, ok)
	assert.Equal(t, 2, m.Deltas(nil, "").Defense)
	_, ok = s.Find(KindSynergy)
	assert.True(t, ok)
	assert.True(t, s.HasNamed("Fortified"))
}

func TestSynergyRecomputedPerQuery(t *testing.T) {
	s := NewStack()
	s.Add(NewSynergyBonus(faction.Fire))
	env := fakeEnv{"warrior": 1}

	assert.Equal(t, 1, s.Sum(env, "warrior", Only(KindSynergy)).Attack)
	env["warrior"] = 0
	assert.Equal(t, 0, s.Sum(env, "warrior", Only(KindSynergy)).Attack)
	env["warrior"] = 3
	assert.Equal(t, 3, s.Sum(env, "warrior", All).Attack)

	water := NewSynergyBonus(faction.Water)
	assert.True(t, water.Deltas(env, "warrior").IsZero())
}

func TestTickExpiresOnlyTimed(t *testing.T) {
	s := NewStack()
	s.Add(Slowed.New())
	s.Add(NewTerrainBonus(terrain.Dispatch(grid.Forest, faction.Air)))
	s.Add(NewSynergyBonus(faction.Fire))

	assert.Empty(t, s.Tick())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, -1, s.Sum(nil, "u", Except(KindTerrain, KindSynergy)).Movement)

	expired := s.Tick()
	require.Len(t, expired, 1)
	assert.Equal(t, "Slowed", expired[0].Name())
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.HasNamed("Slowed"))
}

func TestSnapshotRestore(t *testing.T) {
	s := NewStack()
	bonus := NewTerrainBonus(terrain.Dispatch(grid.Lava, faction.Fire))
	s.Add(bonus)
	snap := s.Snapshot()

	s.ReplaceKind(KindTerrain, NewTerrainBonus(terrain.Dispatch(grid.Desert, faction.Fire)))
	assert.Equal(t, 0, s.Sum(nil, "u", All).Attack)

	s.Restore(snap)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, bonus.ID(), s.List()[0].ID())
	assert.Equal(t, 2, s.Sum(nil, "u", All).Attack)
}

func TestBounds(t *testing.T) {
	assert.Panics(t, func() { NewTimed(KindBuff, "Godlike", Deltas{Attack: 21}, 2) })
	assert.Panics(t, func() { NewTimed(KindTerrain, "Wrong", Deltas{}, 2) })
	assert.Panics(t, func() { NewTimed(KindDebuff, "Instant", Deltas{}, 0) })
	assert.NotEmpty(t, NewTimed(KindBuff, "ok", Deltas{Defense: 20}, 1).ID())
}
