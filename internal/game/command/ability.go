package command

import (
	"fmt"

	"github.com/elementarclash/clash-server-go/internal/game/damage"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/rules"
	"github.com/elementarclash/clash-server-go/internal/game/status"
	"github.com/elementarclash/clash-server-go/internal/game/units"
)

// effect is the behaviour behind one ability kind. apply returns the
// function that reverses exactly what it did.
type effect interface {
	needsTarget() bool
	check(s State, actor *units.Unit, spec units.AbilitySpec, target grid.Position) ValidationResult
	apply(s State, actor *units.Unit, spec units.AbilitySpec, target grid.Position) func(State) error
}

var effects = map[units.AbilityKind]effect{
	units.AbilityHeal:  healEffect{},
	units.AbilityQuake: quakeEffect{},
	units.AbilityWall:  wallEffect{},
	units.AbilityPush:  pushEffect{},
	units.AbilitySlow:  slowEffect{},
}

// UseAbility triggers the actor's special ability. Targeted abilities name
// a cell; self abilities ignore it.
type UseAbility struct {
	lifecycle
	actorID   string
	target    grid.Position
	hasTarget bool

	cooldown int
	revert   func(State) error
}

// NewUseAbility creates an untargeted ability use.
func NewUseAbility(actorID string) *UseAbility {
	return &UseAbility{actorID: actorID}
}

// NewTargetedAbility creates an ability use aimed at a cell.
func NewTargetedAbility(actorID string, target grid.Position) *UseAbility {
	return &UseAbility{actorID: actorID, target: target, hasTarget: true}
}

func (c *UseAbility) Kind() Kind { return KindAbility }
func (c *UseAbility) ActorID() string { return c.actorID }

// Target returns the aimed cell, if any.
func (c *UseAbility) Target() (grid.Position, bool) { return c.target, c.hasTarget }

func (c *UseAbility) String() string {
	if c.hasTarget {
		return fmt.Sprintf("ability %s at %s", c.actorID, c.target)
	}
	return fmt.Sprintf("ability %s", c.actorID)
}

func (c *UseAbility) Validate(s State) ValidationResult {
	actor, res := validateActor(s, c.actorID)
	if !res.OK {
		return res
	}
	spec := actor.Ability()
	if spec.Kind == units.AbilityNone {
		return Failure("%s has no ability", actor.Name())
	}
	eff, ok := effects[spec.Kind]
	if !ok {
		return Failure("ability %q is not supported", spec.Kind)
	}
	if cd := actor.Cooldown(); cd > 0 {
		return Failure("%s is on cooldown for %d more turn(s)", spec.Kind, cd)
	}
	if eff.needsTarget() {
		if !c.hasTarget {
			return Failure("%s needs a target cell", spec.Kind)
		}
		if !s.Battlefield().Contains(c.target) {
			return Failure("%s is outside the battlefield", c.target)
		}
	}
	return eff.check(s, actor, spec, c.target)
}

func (c *UseAbility) Execute(s State) {
	c.markExecuted(c.String())
	actor := mustUnit(s, c.actorID)
	spec := actor.Ability()

	actor.SpendAction()
	c.cooldown = actor.Cooldown()
	actor.SetCooldown(spec.Cooldown)
	c.revert = effects[spec.Kind].apply(s, actor, spec, c.target)

	evt := rules.NewEvent(rules.EventAbilityUsed, actor.ID(), "")
	if c.hasTarget {
		evt = evt.At(c.target)
	}
	evt.Data = string(spec.Kind)
	s.Publish(evt.WithDescription(fmt.Sprintf("%s uses %s", actor.Name(), spec.Kind)))
}

func (c *UseAbility) Undo(s State) error {
	c.mustBeExecuted(c.String())
	actor, ok := s.Unit(c.actorID)
	if !ok {
		return fmt.Errorf("undo ability: unit %s not found", c.actorID)
	}
	if c.revert != nil {
		if err := c.revert(s); err != nil {
			return fmt.Errorf("undo ability: %w", err)
		}
	}
	c.markUndone(c.String())
	c.revert = nil
	actor.SetCooldown(c.cooldown)
	actor.RefundAction()
	return nil
}

// healEffect restores the actor's own health.
type healEffect struct{}

func (healEffect) needsTarget() bool { return false }

func (healEffect) check(_ State, actor *units.Unit, _ units.AbilitySpec, _ grid.Position) ValidationResult {
	if actor.Health() >= actor.Stats().MaxHealth {
		return Failure("%s is already at full health", actor.Name())
	}
	return Success()
}

func (healEffect) apply(s State, actor *units.Unit, spec units.AbilitySpec, _ grid.Position) func(State) error {
	healed := actor.Heal(spec.Amount)
	s.Publish(rules.NewEventWithAmount(rules.EventUnitHealed, actor.ID(), actor.ID(), healed))
	return func(State) error {
		actor.UndoHeal(healed)
		return nil
	}
}

// quakeEffect damages every enemy adjacent to the actor at reduced strength.
type quakeEffect struct{}

func (quakeEffect) needsTarget() bool { return false }

func (quakeEffect) check(s State, actor *units.Unit, _ units.AbilitySpec, _ grid.Position) ValidationResult {
	pos, _ := actor.Position()
	if len(adjacentEnemies(s, actor, pos)) == 0 {
		return Failure("no enemies adjacent to %s", actor.Name())
	}
	return Success()
}

func (quakeEffect) apply(s State, actor *units.Unit, _ units.AbilitySpec, _ grid.Position) func(State) error {
	pos, _ := actor.Position()
	var hits []hit
	for _, enemy := range adjacentEnemies(s, actor, pos) {
		hits = append(hits, applyHit(s, actor, enemy, damage.WithFinalScale(units.DefaultAreaFactor)))
	}
	return func(s State) error { return revertHits(s, hits) }
}

// wallEffect raises stone on an empty adjacent cell.
type wallEffect struct{}

func (wallEffect) needsTarget() bool { return true }

func (wallEffect) check(s State, actor *units.Unit, _ units.AbilitySpec, target grid.Position) ValidationResult {
	pos, _ := actor.Position()
	if !pos.IsAdjacent(target) {
		return Failure("%s is not adjacent to %s", target, actor.Name())
	}
	if other, ok := s.UnitAt(target); ok {
		return Failure("%s is occupied by %s", target, other.Name())
	}
	if s.TerrainAt(target) == grid.Stone {
		return Failure("%s is already stone", target)
	}
	return Success()
}

func (wallEffect) apply(s State, actor *units.Unit, _ units.AbilitySpec, target grid.Position) func(State) error {
	prev := s.SetTerrain(target, grid.Stone, actor.ID())
	return func(s State) error {
		if _, ok := s.UnitAt(target); ok {
			return fmt.Errorf("wall at %s is occupied", target)
		}
		s.SetTerrain(target, prev, actor.ID())
		return nil
	}
}

// pushEffect shoves an adjacent enemy one cell further away.
type pushEffect struct{}

func (pushEffect) needsTarget() bool { return true }

func pushDestination(from, target grid.Position) grid.Position {
	dx, dy := from.Direction(target)
	return target.Offset(dx, dy)
}

func (pushEffect) check(s State, actor *units.Unit, _ units.AbilitySpec, target grid.Position) ValidationResult {
	pos, _ := actor.Position()
	if !pos.IsAdjacent(target) {
		return Failure("%s is not adjacent to %s", target, actor.Name())
	}
	victim, ok := s.UnitAt(target)
	if !ok {
		return Failure("no unit at %s", target)
	}
	if victim.Faction() == actor.Faction() {
		return Failure("%s is an ally of %s", victim.Name(), actor.Name())
	}
	dest := pushDestination(pos, target)
	if !s.Battlefield().Contains(dest) {
		return Failure("%s cannot be pushed off the battlefield", victim.Name())
	}
	if other, ok := s.UnitAt(dest); ok {
		return Failure("%s is blocked by %s", victim.Name(), other.Name())
	}
	return Success()
}

func (pushEffect) apply(s State, actor *units.Unit, _ units.AbilitySpec, target grid.Position) func(State) error {
	pos, _ := actor.Position()
	victim, _ := s.UnitAt(target)
	dest := pushDestination(pos, target)
	snapshot := victim.Statuses().Snapshot()

	s.MoveUnit(victim, dest)
	s.Publish(rules.NewEvent(rules.EventUnitPushed, actor.ID(), victim.ID()).Between(target, dest))
	return func(s State) error {
		if at, _ := victim.Position(); at != dest || !victim.IsAlive() {
			return fmt.Errorf("%s is no longer at %s", victim.Name(), dest)
		}
		if other, ok := s.UnitAt(target); ok {
			return fmt.Errorf("%s is occupied by %s", target, other.Name())
		}
		s.MoveUnit(victim, target)
		victim.Statuses().Restore(snapshot)
		return nil
	}
}

// slowEffect puts the Slowed debuff on an enemy within range.
type slowEffect struct{}

func (slowEffect) needsTarget() bool { return true }

func (slowEffect) check(s State, actor *units.Unit, spec units.AbilitySpec, target grid.Position) ValidationResult {
	victim, ok := s.UnitAt(target)
	if !ok {
		return Failure("no unit at %s", target)
	}
	if victim.Faction() == actor.Faction() {
		return Failure("%s is an ally of %s", victim.Name(), actor.Name())
	}
	pos, _ := actor.Position()
	if d := pos.Manhattan(target); d > spec.Range {
		return Failure("%s is out of range (%d > %d)", victim.Name(), d, spec.Range)
	}
	if victim.Statuses().HasNamed(status.Slowed.Name) {
		return Failure("%s is already slowed", victim.Name())
	}
	return Success()
}

func (slowEffect) apply(s State, actor *units.Unit, _ units.AbilitySpec, target grid.Position) func(State) error {
	victim, _ := s.UnitAt(target)
	mod := status.Slowed.New()
	victim.Statuses().Add(mod)
	evt := rules.NewEventWithAmount(rules.EventStatusApplied, actor.ID(), victim.ID(), mod.Remaining())
	evt.Data = mod.Name()
	s.Publish(evt)
	return func(State) error {
		if !victim.Statuses().Remove(mod.ID()) {
			return fmt.Errorf("%s no longer carries %s", victim.Name(), mod.Name())
		}
		return nil
	}
}
