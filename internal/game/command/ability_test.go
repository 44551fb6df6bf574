package command_test

import (
	"testing"

	"github.com/elementarclash/clash-server-go/internal/game/command"
	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/rules"
	"github.com/elementarclash/clash-server-go/internal/game/status"
	"github.com/elementarclash/clash-server-go/internal/game/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var waterFirst = []faction.Faction{faction.Water, faction.Fire}

func TestHealAbility(t *testing.T) {
	guardian := newUnit(t, "w1", faction.Water, stats(120, 10, 8, 2, 1), units.Traits{},
		units.AbilitySpec{Kind: units.AbilityHeal, Amount: 15, Cooldown: 2})
	f1 := newUnit(t, "f1", faction.Fire, stats(100, 15, 5, 3, 1), units.Traits{}, units.AbilitySpec{})
	guardian.TakeDamage(10)
	m := startMatch(t, openField, waterFirst, at(guardian, 0, 0), at(f1, 4, 4))

	res := m.Submit(command.NewUseAbility("w1"))
	require.True(t, res.OK, res.Reason)
	assert.Equal(t, 120, guardian.Health(), "healing is capped at max health")
	assert.Equal(t, 2, guardian.Cooldown())

	res = m.Submit(command.NewUseAbility("w1"))
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "full health")

	_, err := m.Undo()
	require.NoError(t, err)
	assert.Equal(t, 110, guardian.Health())
	assert.Equal(t, 0, guardian.Cooldown())
	assert.Equal(t, 0, guardian.ActionsUsed())
}

func TestAbilityCooldownBlocksReuse(t *testing.T) {
	guardian := newUnit(t, "w1", faction.Water, stats(120, 10, 8, 2, 1), units.Traits{},
		units.AbilitySpec{Kind: units.AbilityHeal, Amount: 5, Cooldown: 2})
	f1 := newUnit(t, "f1", faction.Fire, stats(100, 15, 5, 3, 1), units.Traits{}, units.AbilitySpec{})
	guardian.TakeDamage(50)
	m := startMatch(t, openField, waterFirst, at(guardian, 0, 0), at(f1, 4, 4))

	require.True(t, m.Submit(command.NewUseAbility("w1")).OK)
	res := m.Submit(command.NewUseAbility("w1"))
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "cooldown for 2 more turn(s)")
}

func TestAbilityValidation(t *testing.T) {
	plain := newUnit(t, "w1", faction.Water, stats(100, 10, 8, 2, 1), units.Traits{}, units.AbilitySpec{})
	pusher := newUnit(t, "w2", faction.Water, stats(90, 11, 6, 4, 1), units.Traits{},
		units.AbilitySpec{Kind: units.AbilityPush, Cooldown: 1})
	golem := newUnit(t, "w3", faction.Water, stats(150, 8, 10, 2, 1), units.Traits{},
		units.AbilitySpec{Kind: units.AbilityQuake, Cooldown: 2})
	f1 := newUnit(t, "f1", faction.Fire, stats(100, 15, 5, 3, 1), units.Traits{}, units.AbilitySpec{})
	m := startMatch(t, openField, waterFirst, at(plain, 0, 0), at(pusher, 2, 2), at(golem, 0, 4), at(f1, 4, 4))

	cases := []struct {
		name   string
		cmd    command.Command
		reason string
	}{
		{"no ability", command.NewUseAbility("w1"), "has no ability"},
		{"missing target", command.NewUseAbility("w2"), "needs a target"},
		{"off board", command.NewTargetedAbility("w2", grid.Pos(-1, 2)), "outside the battlefield"},
		{"not adjacent", command.NewTargetedAbility("w2", grid.Pos(4, 4)), "not adjacent"},
		{"empty cell", command.NewTargetedAbility("w2", grid.Pos(2, 3)), "no unit at"},
		{"lonely quake", command.NewUseAbility("w3"), "no enemies adjacent"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := m.Submit(tc.cmd)
			assert.False(t, res.OK)
			assert.Contains(t, res.Reason, tc.reason)
		})
	}
	assert.False(t, m.History().CanUndo())
}

func TestWallAbility(t *testing.T) {
	shaman := newUnit(t, "w1", faction.Water, stats(75, 11, 5, 3, 2), units.Traits{},
		units.AbilitySpec{Kind: units.AbilityWall, Cooldown: 2})
	f1 := newUnit(t, "f1", faction.Fire, stats(100, 15, 5, 3, 1), units.Traits{}, units.AbilitySpec{})
	rows := []string{
		".F...",
		".....",
		".....",
		".....",
		".....",
	}
	m := startMatch(t, rows, waterFirst, at(shaman, 0, 0), at(f1, 4, 4))

	res := m.Submit(command.NewTargetedAbility("w1", grid.Pos(1, 0)))
	require.True(t, res.OK, res.Reason)
	assert.Equal(t, grid.Stone, m.TerrainAt(grid.Pos(1, 0)))

	_, err := m.Undo()
	require.NoError(t, err)
	assert.Equal(t, grid.Forest, m.TerrainAt(grid.Pos(1, 0)))

	res = m.Submit(command.NewTargetedAbility("w1", grid.Pos(2, 0)))
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "not adjacent")
}

func TestPushAbility(t *testing.T) {
	rider := newUnit(t, "w1", faction.Water, stats(90, 11, 6, 4, 1), units.Traits{},
		units.AbilitySpec{Kind: units.AbilityPush, Cooldown: 1})
	f1 := newUnit(t, "f1", faction.Fire, stats(100, 15, 5, 3, 1), units.Traits{}, units.AbilitySpec{})
	f2 := newUnit(t, "f2", faction.Fire, stats(100, 15, 5, 3, 1), units.Traits{}, units.AbilitySpec{})
	m := startMatch(t, openField, waterFirst, at(rider, 1, 1), at(f1, 2, 1), at(f2, 4, 4))

	var pushed []rules.Event
	m.Bus().Subscribe(func(evt rules.Event) {
		if evt.Type == rules.EventUnitPushed {
			pushed = append(pushed, evt)
		}
	})

	res := m.Submit(command.NewTargetedAbility("w1", grid.Pos(2, 1)))
	require.True(t, res.OK, res.Reason)
	assert.Equal(t, grid.Pos(3, 1), position(t, f1))
	_, occupied := m.UnitAt(grid.Pos(2, 1))
	assert.False(t, occupied)
	require.Len(t, pushed, 1)
	assert.Equal(t, "f1", pushed[0].TargetID)

	_, err := m.Undo()
	require.NoError(t, err)
	assert.Equal(t, grid.Pos(2, 1), position(t, f1))
	_, occupied = m.UnitAt(grid.Pos(3, 1))
	assert.False(t, occupied)
}

func TestPushBlockedAtEdge(t *testing.T) {
	rider := newUnit(t, "w1", faction.Water, stats(90, 11, 6, 4, 1), units.Traits{},
		units.AbilitySpec{Kind: units.AbilityPush, Cooldown: 1})
	f1 := newUnit(t, "f1", faction.Fire, stats(100, 15, 5, 3, 1), units.Traits{}, units.AbilitySpec{})
	m := startMatch(t, openField, waterFirst, at(rider, 3, 0), at(f1, 4, 0))

	res := m.Submit(command.NewTargetedAbility("w1", grid.Pos(4, 0)))
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "off the battlefield")
}

func TestSlowAbility(t *testing.T) {
	mage := newUnit(t, "w1", faction.Water, stats(60, 13, 4, 3, 4), units.Traits{AttackStyle: units.Ranged},
		units.AbilitySpec{Kind: units.AbilitySlow, Range: 3, Cooldown: 2})
	near := newUnit(t, "f1", faction.Fire, stats(100, 15, 5, 3, 1), units.Traits{}, units.AbilitySpec{})
	far := newUnit(t, "f2", faction.Fire, stats(100, 15, 5, 3, 1), units.Traits{}, units.AbilitySpec{})
	m := startMatch(t, openField, waterFirst, at(mage, 0, 0), at(near, 2, 1), at(far, 4, 4))

	res := m.Submit(command.NewTargetedAbility("w1", grid.Pos(4, 4)))
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "out of range")

	res = m.Submit(command.NewTargetedAbility("w1", grid.Pos(2, 1)))
	require.True(t, res.OK, res.Reason)
	assert.True(t, near.Statuses().HasNamed(status.Slowed.Name))
	assert.Equal(t, 2, near.Movement(m))

	_, err := m.Undo()
	require.NoError(t, err)
	assert.False(t, near.Statuses().HasNamed(status.Slowed.Name))
	assert.Equal(t, 3, near.Movement(m))
}

func TestQuakeAbility(t *testing.T) {
	golem := newUnit(t, "w1", faction.Water, stats(150, 8, 10, 2, 1), units.Traits{},
		units.AbilitySpec{Kind: units.AbilityQuake, Cooldown: 2})
	f1 := newUnit(t, "f1", faction.Fire, stats(100, 15, 0, 3, 1), units.Traits{}, units.AbilitySpec{})
	f2 := newUnit(t, "f2", faction.Fire, stats(100, 15, 0, 3, 1), units.Traits{}, units.AbilitySpec{})
	f3 := newUnit(t, "f3", faction.Fire, stats(100, 15, 0, 3, 1), units.Traits{}, units.AbilitySpec{})
	m := startMatch(t, openField, waterFirst, at(golem, 2, 2), at(f1, 2, 1), at(f2, 3, 2), at(f3, 4, 4))

	res := m.Submit(command.NewUseAbility("w1"))
	require.True(t, res.OK, res.Reason)
	// 8 x1.25 = 10 against defense 0, then 75% of the final damage
	assert.Equal(t, 93, f1.Health())
	assert.Equal(t, 93, f2.Health())
	assert.Equal(t, 100, f3.Health(), "only adjacent enemies are hit")

	_, err := m.Undo()
	require.NoError(t, err)
	assert.Equal(t, 100, f1.Health())
	assert.Equal(t, 100, f2.Health())
	assert.Equal(t, 0, golem.Cooldown())
}
