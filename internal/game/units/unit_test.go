package units

import (
	"testing"

	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUnit(t *testing.T, f faction.Faction, traits Traits) *Unit {
	t.Helper()
	u, err := New(Spec{
		ID:      "u1",
		Type:    "tester",
		Faction: f,
		Stats:   Stats{MaxHealth: 100, Attack: 10, Defense: 5, Movement: 3, Range: 1},
		Traits:  traits,
	})
	require.NoError(t, err)
	return u
}

func TestNewRejectsBadSpecs(t *testing.T) {
	_, err := New(Spec{Faction: faction.Fire, Stats: Stats{MaxHealth: 1, Movement: 1, Range: 1}})
	assert.Error(t, err)

	_, err = New(Spec{ID: "x", Faction: faction.Fire, Stats: Stats{MaxHealth: 0, Movement: 1, Range: 1}})
	assert.Error(t, err)

	_, err = New(Spec{
		ID: "x", Faction: faction.Fire,
		Stats:   Stats{MaxHealth: 1, Movement: 1, Range: 1},
		Ability: AbilitySpec{Kind: AbilityHeal},
	})
	assert.Error(t, err, "heal without amount")
}

func TestLethalDamageClampsAndReportsDeathOnce(t *testing.T) {
	u := newTestUnit(t, faction.Water, Traits{})
	u.TakeDamage(96)
	require.Equal(t, 4, u.Health())

	applied, died := u.TakeDamage(10)
	assert.Equal(t, 4, applied)
	assert.True(t, died)
	assert.Equal(t, 0, u.Health())
	assert.False(t, u.IsAlive())
	assert.Equal(t, Dead, u.Condition())

	applied, died = u.TakeDamage(10)
	assert.Zero(t, applied)
	assert.False(t, died)
}

func TestUndoDamageRevivesExactly(t *testing.T) {
	u := newTestUnit(t, faction.Earth, Traits{})
	u.TakeDamage(60)
	applied, died := u.TakeDamage(50)
	require.True(t, died)

	u.UndoDamage(applied, died)
	assert.True(t, u.IsAlive())
	assert.Equal(t, 40, u.Health())
}

func TestHealClampsAndUndoes(t *testing.T) {
	u := newTestUnit(t, faction.Water, Traits{})
	u.TakeDamage(10)
	healed := u.Heal(25)
	assert.Equal(t, 10, healed)
	assert.Equal(t, 100, u.Health())

	u.UndoHeal(healed)
	assert.Equal(t, 90, u.Health())
}

func TestActionBudget(t *testing.T) {
	u := newTestUnit(t, faction.Air, Traits{})
	u.SpendAction()
	u.SpendAction()
	assert.False(t, u.HasActionLeft())
	assert.Panics(t, u.SpendAction)

	u.RefundAction()
	assert.True(t, u.HasActionLeft())

	u.ResetTurn()
	assert.Zero(t, u.ActionsUsed())
	assert.Panics(t, u.RefundAction)
}

func TestResetTurnCountsDown(t *testing.T) {
	u := newTestUnit(t, faction.Earth, Traits{})
	u.Stun(1)
	u.SetCooldown(2)
	u.Statuses().Add(status.Slowed.New())
	assert.Equal(t, Stunned, u.Condition())
	assert.Equal(t, 2, u.Movement(nil))

	u.ResetTurn()
	assert.Equal(t, Active, u.Condition())
	assert.Equal(t, 1, u.Cooldown())
	assert.Equal(t, 2, u.Movement(nil))

	expired := u.ResetTurn()
	require.Len(t, expired, 1)
	assert.Equal(t, 3, u.Movement(nil))
	assert.Zero(t, u.Cooldown())
}

func TestFireUnitsCarrySynergy(t *testing.T) {
	fire := newTestUnit(t, faction.Fire, Traits{})
	_, ok := fire.Statuses().Find(status.KindSynergy)
	assert.True(t, ok)

	water := newTestUnit(t, faction.Water, Traits{})
	_, ok = water.Statuses().Find(status.KindSynergy)
	assert.False(t, ok)
}

func TestRevivalHappensOnce(t *testing.T) {
	u := newTestUnit(t, faction.Fire, Traits{Revives: true, Mobility: Flying})
	u.Place(grid.Pos(2, 2))
	u.TakeDamage(500)
	require.True(t, u.PendingRevival())

	u.Revive(grid.Pos(2, 3))
	assert.True(t, u.IsAlive())
	assert.Equal(t, 50, u.Health())
	pos, _ := u.Position()
	assert.Equal(t, grid.Pos(2, 3), pos)

	u.TakeDamage(500)
	assert.False(t, u.PendingRevival())
	assert.Panics(t, func() { u.Revive(grid.Pos(0, 0)) })
}

func TestMoveCost(t *testing.T) {
	fire := newTestUnit(t, faction.Fire, Traits{})
	water := newTestUnit(t, faction.Water, Traits{})
	earth := newTestUnit(t, faction.Earth, Traits{})
	flyer := newTestUnit(t, faction.Air, Traits{Mobility: Flying})
	rider := newTestUnit(t, faction.Earth, Traits{IceWalker: true})

	assert.Equal(t, 1, fire.MoveCost(grid.Lava))
	assert.Equal(t, 2, fire.MoveCost(grid.Ice))
	assert.Equal(t, 3, water.MoveCost(grid.Lava))
	assert.Equal(t, 1, water.MoveCost(grid.Ice))
	assert.Equal(t, 2, earth.MoveCost(grid.Stone))
	assert.Equal(t, 3, earth.MoveCost(grid.Ice))
	assert.Equal(t, 1, flyer.MoveCost(grid.Stone))
	assert.Equal(t, 1, rider.MoveCost(grid.Ice))
	assert.Equal(t, 2, rider.MoveCost(grid.Forest))
}
