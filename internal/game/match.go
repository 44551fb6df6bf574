// Package game orchestrates a match: it owns the battlefield, the units and
// the phase machine, and it is the state every command operates on.
package game

import (
	"errors"
	"fmt"

	"github.com/elementarclash/clash-server-go/internal/game/command"
	"github.com/elementarclash/clash-server-go/internal/game/damage"
	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/rules"
	"github.com/elementarclash/clash-server-go/internal/game/terrain"
	"github.com/elementarclash/clash-server-go/internal/game/units"
	"go.uber.org/zap"
)

// ErrMatchOver is returned for history operations after the match ended.
var ErrMatchOver = errors.New("match is over")

// Match is one game in progress. It is not safe for concurrent use; the
// Engine serializes access.
type Match struct {
	id       string
	settings Settings
	logger   *zap.Logger

	field     *grid.Battlefield
	factions  []faction.Faction
	units     map[string]*units.Unit
	unitOrder []string
	occupancy map[grid.Position]string

	phase    rules.Phase
	turns    *rules.TurnManager
	rng      *rules.RNG
	bus      *rules.EventBus
	pipeline *damage.Pipeline
	executor *command.Executor

	lastEvent *BattlefieldEvent
}

var _ command.State = (*Match)(nil)

func (m *Match) ID() string { return m.id }
func (m *Match) Settings() Settings { return m.settings }
func (m *Match) Factions() []faction.Faction { return append([]faction.Faction(nil), m.factions...) }
func (m *Match) Battlefield() *grid.Battlefield { return m.field }
func (m *Match) Phase() rules.Phase { return m.phase }
func (m *Match) Round() int { return m.turns.Round() }
func (m *Match) Bus() *rules.EventBus { return m.bus }
func (m *Match) Pipeline() *damage.Pipeline { return m.pipeline }
func (m *Match) RNG() *rules.RNG { return m.rng }
func (m *Match) History() *command.History { return m.executor.History() }

// LastBattlefieldEvent returns the most recent event phase outcome.
func (m *Match) LastBattlefieldEvent() (BattlefieldEvent, bool) {
	if m.lastEvent == nil {
		return BattlefieldEvent{}, false
	}
	return *m.lastEvent, true
}

// TerrainAt returns the terrain of pos.
func (m *Match) TerrainAt(pos grid.Position) grid.Terrain {
	return m.field.TerrainAt(pos)
}

// Unit returns a unit by id, living or dead.
func (m *Match) Unit(id string) (*units.Unit, bool) {
	u, ok := m.units[id]
	return u, ok
}

// UnitAt returns the living unit on pos.
func (m *Match) UnitAt(pos grid.Position) (*units.Unit, bool) {
	id, ok := m.occupancy[pos]
	if !ok {
		return nil, false
	}
	return m.units[id], true
}

// Units returns every unit in creation order.
func (m *Match) Units() []*units.Unit {
	out := make([]*units.Unit, 0, len(m.unitOrder))
	for _, id := range m.unitOrder {
		out = append(out, m.units[id])
	}
	return out
}

// UnitsOfFaction returns the living units of f in creation order.
func (m *Match) UnitsOfFaction(f faction.Faction) []*units.Unit {
	var out []*units.Unit
	for _, id := range m.unitOrder {
		u := m.units[id]
		if u.Faction() == f && u.IsAlive() {
			out = append(out, u)
		}
	}
	return out
}

// UnitsAdjacentTo returns the living units on the four cells around pos.
func (m *Match) UnitsAdjacentTo(pos grid.Position) []*units.Unit {
	var out []*units.Unit
	for _, n := range m.field.Neighbours(pos) {
		if u, ok := m.UnitAt(n); ok {
			out = append(out, u)
		}
	}
	return out
}

// AdjacentAllies counts the living allies orthogonally adjacent to unitID.
func (m *Match) AdjacentAllies(unitID string) int {
	u, ok := m.units[unitID]
	if !ok || !u.IsAlive() {
		return 0
	}
	pos, _ := u.Position()
	count := 0
	for _, other := range m.UnitsAdjacentTo(pos) {
		if other.Faction() == u.Faction() && other.ID() != u.ID() {
			count++
		}
	}
	return count
}

// ValidMoves lists the cells unitID could move to right now.
func (m *Match) ValidMoves(unitID string) ([]grid.Position, error) {
	u, ok := m.units[unitID]
	if !ok {
		return nil, fmt.Errorf("unit %s not found", unitID)
	}
	return command.ReachablePositions(m, u), nil
}

// ValidTargets lists the enemies unitID could attack right now.
func (m *Match) ValidTargets(unitID string) ([]*units.Unit, error) {
	u, ok := m.units[unitID]
	if !ok {
		return nil, fmt.Errorf("unit %s not found", unitID)
	}
	if !u.IsAlive() {
		return nil, nil
	}
	return command.Targets(m, u, m.Units()), nil
}

// AliveFactions returns the factions that still have a living unit, in
// turn order.
func (m *Match) AliveFactions() []faction.Faction {
	var out []faction.Faction
	for _, f := range m.factions {
		if m.factionAlive(f) {
			out = append(out, f)
		}
	}
	return out
}

func (m *Match) factionAlive(f faction.Faction) bool {
	for _, u := range m.units {
		if u.Faction() == f && u.IsAlive() {
			return true
		}
	}
	return false
}

// Publish stamps the event with match context and hands it to the bus.
func (m *Match) Publish(evt rules.Event) {
	evt.MatchID = m.id
	evt.Round = m.turns.Round()
	if evt.Faction == "" {
		if u, ok := m.units[evt.SourceID]; ok {
			evt.Faction = u.Faction().String()
		} else if f, ok := m.phase.ActiveFaction(); ok {
			evt.Faction = f.String()
		}
	}
	m.bus.Publish(evt)
}

// MoveUnit relocates u and refreshes its terrain bonus. Moving onto an
// occupied cell is a bug in the caller's validation.
func (m *Match) MoveUnit(u *units.Unit, to grid.Position) {
	if !m.field.Contains(to) {
		panic(fmt.Sprintf("game: move of %s out of bounds to %s", u.ID(), to))
	}
	if other, ok := m.occupancy[to]; ok && other != u.ID() {
		panic(fmt.Sprintf("game: move of %s onto %s occupied by %s", u.ID(), to, other))
	}
	if from, ok := u.Position(); ok && m.occupancy[from] == u.ID() {
		delete(m.occupancy, from)
	}
	m.occupancy[to] = u.ID()
	u.Place(to)
	u.SetTerrainBonus(terrain.Dispatch(m.field.TerrainAt(to), u.Faction()))
}

// SetTerrain changes one cell, refreshes the occupant's terrain bonus and
// publishes the change. It returns the previous terrain.
func (m *Match) SetTerrain(pos grid.Position, t grid.Terrain, sourceID string) grid.Terrain {
	prev := m.field.SetTerrain(pos, t)
	if prev == t {
		return prev
	}
	if u, ok := m.UnitAt(pos); ok {
		u.SetTerrainBonus(terrain.Dispatch(t, u.Faction()))
	}
	evt := rules.NewEvent(rules.EventTerrainChanged, sourceID, "").At(pos)
	evt.Data = t.String()
	evt.Metadata["from"] = prev.String()
	m.Publish(evt.WithDescription(fmt.Sprintf("%s: %s -> %s", pos, prev, t)))
	return prev
}

// DamageUnit applies damage to target. A death frees the cell and may end
// the match on the spot.
func (m *Match) DamageUnit(target *units.Unit, amount int, sourceID string) (int, bool) {
	applied, died := target.TakeDamage(amount)
	if applied > 0 {
		m.Publish(rules.NewEventWithAmount(rules.EventUnitDamaged, sourceID, target.ID(), applied))
	}
	if !died {
		return applied, false
	}
	pos, _ := target.Position()
	if m.occupancy[pos] == target.ID() {
		delete(m.occupancy, pos)
	}
	evt := rules.NewEvent(rules.EventUnitDied, sourceID, target.ID()).At(pos)
	evt.Faction = target.Faction().String()
	evt.Flag = target.PendingRevival()
	m.Publish(evt.WithDescription(fmt.Sprintf("%s has fallen", target.Name())))
	if m.logger != nil {
		m.logger.Debug("unit died",
			zap.String("match_id", m.id),
			zap.String("unit_id", target.ID()),
			zap.Bool("pending_revival", target.PendingRevival()))
	}
	m.checkVictory()
	return applied, true
}

// RestoreUnit reverses a DamageUnit call, putting a killed unit back on
// its cell.
func (m *Match) RestoreUnit(target *units.Unit, applied int, killed bool) {
	target.UndoDamage(applied, killed)
	if !killed {
		return
	}
	pos, _ := target.Position()
	if other, ok := m.occupancy[pos]; ok && other != target.ID() {
		panic(fmt.Sprintf("game: cannot restore %s, %s is occupied by %s", target.ID(), pos, other))
	}
	m.occupancy[pos] = target.ID()
}

// checkVictory ends the match once a single faction has living units.
func (m *Match) checkVictory() {
	if m.phase.IsTerminal() || m.phase.Kind() == rules.PhaseSetup {
		return
	}
	alive := m.AliveFactions()
	if len(alive) != 1 {
		return
	}
	winner := alive[0]
	m.setPhase(m.phase.Next(rules.Transition{Kind: rules.ToGameOver, Faction: winner}))
	evt := rules.NewEvent(rules.EventGameOver, "", "")
	evt.Faction = winner.String()
	m.Publish(evt.WithDescription(fmt.Sprintf("%s wins", winner)))
	if m.logger != nil {
		m.logger.Info("match over",
			zap.String("match_id", m.id),
			zap.String("winner", winner.String()),
			zap.Int("round", m.turns.Round()))
	}
}

func (m *Match) setPhase(next rules.Phase) {
	if next == m.phase {
		return
	}
	prev := m.phase
	m.phase = next
	evt := rules.NewEvent(rules.EventPhaseChanged, "", "")
	evt.Data = next.String()
	evt.Metadata["from"] = prev.String()
	m.Publish(evt)
}

// Start moves the match from setup to the first faction's turn.
func (m *Match) Start() error {
	if m.phase.Kind() != rules.PhaseSetup {
		return fmt.Errorf("match %s already started", m.id)
	}
	first := m.turns.Start(m.factionAlive)
	m.Publish(rules.NewEvent(rules.EventGameStarted, "", "").WithDescription(fmt.Sprintf("%d factions", len(m.factions))))
	m.setPhase(m.phase.Next(rules.Transition{Kind: rules.ToPlayerTurn, Faction: first}))
	if m.logger != nil {
		m.logger.Info("match started",
			zap.String("match_id", m.id),
			zap.Int64("seed", m.rng.Seed()),
			zap.String("first", first.String()))
	}
	m.beginTurn(first)
	return nil
}

// Submit validates and executes cmd.
func (m *Match) Submit(cmd command.Command) command.ValidationResult {
	return m.executor.Submit(cmd)
}

// Undo reverses the most recent command of the current turn.
func (m *Match) Undo() (command.Command, error) {
	if m.phase.IsTerminal() {
		return nil, ErrMatchOver
	}
	return m.executor.Undo()
}

// Redo re-applies the most recently undone command.
func (m *Match) Redo() (command.Command, error) {
	if m.phase.IsTerminal() {
		return nil, ErrMatchOver
	}
	return m.executor.Redo()
}

// Winner returns the winning faction once the match is over.
func (m *Match) Winner() (faction.Faction, bool) {
	return m.phase.Winner()
}
