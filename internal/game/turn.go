package game

import (
	"fmt"

	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/rules"
	"github.com/elementarclash/clash-server-go/internal/game/status"
	"github.com/elementarclash/clash-server-go/internal/game/terrain"
	"github.com/elementarclash/clash-server-go/internal/game/units"
	"go.uber.org/zap"
)

// EndTurn closes the active faction's turn, runs the event phase and hands
// the turn to the next living faction.
func (m *Match) EndTurn() error {
	ending, ok := m.phase.ActiveFaction()
	if !ok {
		return fmt.Errorf("cannot end turn during %s", m.phase)
	}
	evt := rules.NewEvent(rules.EventTurnEnded, "", "")
	evt.Faction = ending.String()
	m.Publish(evt)

	for _, u := range m.UnitsOfFaction(ending) {
		for _, mod := range u.ResetTurn() {
			expired := rules.NewEvent(rules.EventStatusExpired, "", u.ID())
			expired.Data = mod.Name()
			m.Publish(expired)
		}
	}

	m.applyTerrainUpkeep()
	if m.phase.IsTerminal() {
		return nil
	}

	m.setPhase(m.phase.Next(rules.Transition{Kind: rules.ToEvent}))
	m.runBattlefieldEvent()
	if m.phase.IsTerminal() {
		return nil
	}

	next := m.turns.Advance(m.factionAlive)
	m.executor.History().Clear()
	m.setPhase(m.phase.Next(rules.Transition{Kind: rules.ToPlayerTurn, Faction: next}))
	if m.logger != nil {
		m.logger.Debug("turn passed",
			zap.String("match_id", m.id),
			zap.String("from", ending.String()),
			zap.String("to", next.String()),
			zap.Int("round", m.turns.Round()))
	}
	m.beginTurn(next)
	return nil
}

// applyTerrainUpkeep applies per-turn terrain health effects to every
// living unit, in creation order.
func (m *Match) applyTerrainUpkeep() {
	for _, u := range m.Units() {
		if !u.IsAlive() {
			continue
		}
		pos, _ := u.Position()
		effect := terrain.Dispatch(m.field.TerrainAt(pos), u.Faction())
		switch {
		case effect.HealthPerTurn > 0:
			if healed := u.Heal(effect.HealthPerTurn); healed > 0 {
				m.Publish(rules.NewEventWithAmount(rules.EventUnitHealed, "", u.ID(), healed).At(pos).WithDescription(effect.Description))
			}
		case effect.HealthPerTurn < 0:
			m.DamageUnit(u, -effect.HealthPerTurn, "")
			if m.phase.IsTerminal() {
				return
			}
		}
	}
}

// beginTurn runs the start-of-turn steps for f: pending revivals, then the
// random buff or debuff roll.
func (m *Match) beginTurn(f faction.Faction) {
	evt := rules.NewEvent(rules.EventTurnStarted, "", "")
	evt.Faction = f.String()
	evt.Amount = m.turns.Round()
	m.Publish(evt)

	m.reviveFallen(f)
	m.rollRandomEffect(f)
}

// reviveFallen brings back f's units waiting for revival, on their death
// cell when free, otherwise on the first free neighbour. A unit with no
// free cell waits for a later turn.
func (m *Match) reviveFallen(f faction.Faction) {
	for _, u := range m.Units() {
		if u.Faction() != f || !u.PendingRevival() {
			continue
		}
		pos, ok := m.revivalCell(u)
		if !ok {
			if m.logger != nil {
				m.logger.Debug("revival deferred", zap.String("match_id", m.id), zap.String("unit_id", u.ID()))
			}
			continue
		}
		u.Revive(pos)
		m.MoveUnit(u, pos)
		m.Publish(rules.NewEventWithAmount(rules.EventUnitRevived, u.ID(), u.ID(), u.Health()).
			At(pos).
			WithDescription(fmt.Sprintf("%s rises from the ashes", u.Name())))
	}
}

func (m *Match) revivalCell(u *units.Unit) (grid.Position, bool) {
	death, _ := u.Position()
	if _, occupied := m.UnitAt(death); !occupied {
		return death, true
	}
	for _, n := range m.field.Neighbours(death) {
		if _, occupied := m.UnitAt(n); !occupied {
			return n, true
		}
	}
	return grid.Position{}, false
}

// rollRandomEffect may grant one random buff or debuff to a living unit of f.
func (m *Match) rollRandomEffect(f faction.Faction) {
	chance := m.settings.RandomEffects.Chance(m.turns.Round())
	if !m.rng.Chance(chance) {
		return
	}
	eligible := m.UnitsOfFaction(f)
	if len(eligible) == 0 {
		return
	}
	u := eligible[m.rng.Intn(len(eligible))]
	pool := status.Buffs()
	if m.rng.Intn(2) == 1 {
		pool = status.Debuffs()
	}
	mod := pool[m.rng.Intn(len(pool))].New()
	u.Statuses().Add(mod)

	evt := rules.NewEventWithAmount(rules.EventStatusApplied, "", u.ID(), mod.Remaining())
	evt.Data = mod.Name()
	evt.Faction = f.String()
	m.Publish(evt.WithDescription(fmt.Sprintf("%s gains %s", u.Name(), mod.Description())))
}
