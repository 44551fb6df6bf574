package command

import (
	"fmt"

	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/rules"
	"github.com/elementarclash/clash-server-go/internal/game/status"
	"github.com/elementarclash/clash-server-go/internal/game/terrain"
	"github.com/elementarclash/clash-server-go/internal/game/units"
)

// Move relocates a unit to a reachable empty cell.
type Move struct {
	lifecycle
	unitID string
	to     grid.Position

	// captured on execute
	from        grid.Position
	statuses    []status.Modifier
	transformed bool
	prevTerrain grid.Terrain
}

// NewMove creates a move of unitID to the given cell.
func NewMove(unitID string, to grid.Position) *Move {
	return &Move{unitID: unitID, to: to}
}

func (m *Move) Kind() Kind { return KindMove }
func (m *Move) ActorID() string { return m.unitID }
func (m *Move) Destination() grid.Position { return m.to }

func (m *Move) String() string {
	return fmt.Sprintf("move %s to %s", m.unitID, m.to)
}

func (m *Move) Validate(s State) ValidationResult {
	u, res := validateActor(s, m.unitID)
	if !res.OK {
		return res
	}
	if !s.Battlefield().Contains(m.to) {
		return Failure("%s is outside the battlefield", m.to)
	}
	if from, _ := u.Position(); from == m.to {
		return Failure("%s is already at %s", u.Name(), m.to)
	}
	if other, ok := s.UnitAt(m.to); ok {
		return Failure("%s is occupied by %s", m.to, other.Name())
	}
	if _, ok := Reachable(s, u)[m.to]; !ok {
		return Failure("%s cannot reach %s with %d movement", u.Name(), m.to, u.Movement(s))
	}
	return Success()
}

func (m *Move) Execute(s State) {
	m.markExecuted(m.String())
	u := mustUnit(s, m.unitID)

	m.from, _ = u.Position()
	m.statuses = u.Statuses().Snapshot()
	m.transformed = false

	s.MoveUnit(u, m.to)
	effect := terrain.Dispatch(s.TerrainAt(m.to), u.Faction())
	if to, ok := effect.Transformation(); ok {
		m.prevTerrain = s.SetTerrain(m.to, to, u.ID())
		m.transformed = true
	}
	u.SpendAction()

	s.Publish(rules.NewEvent(rules.EventUnitMoved, u.ID(), "").
		Between(m.from, m.to).
		WithDescription(fmt.Sprintf("%s moves %s -> %s", u.Name(), m.from, m.to)))
}

func (m *Move) Undo(s State) error {
	m.mustBeExecuted(m.String())
	u, ok := s.Unit(m.unitID)
	if !ok {
		return fmt.Errorf("undo move: unit %s not found", m.unitID)
	}
	if pos, _ := u.Position(); pos != m.to || !u.IsAlive() {
		return fmt.Errorf("undo move: %s is no longer at %s", u.Name(), m.to)
	}
	if other, ok := s.UnitAt(m.from); ok {
		return fmt.Errorf("undo move: %s is occupied by %s", m.from, other.Name())
	}
	m.markUndone(m.String())

	if m.transformed {
		s.SetTerrain(m.to, m.prevTerrain, u.ID())
	}
	s.MoveUnit(u, m.from)
	u.Statuses().Restore(m.statuses)
	u.RefundAction()
	return nil
}

func mustUnit(s State, id string) *units.Unit {
	u, ok := s.Unit(id)
	if !ok {
		panic(fmt.Sprintf("command: unit %s vanished after validation", id))
	}
	return u
}
