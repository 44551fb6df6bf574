package command

import (
	"github.com/elementarclash/clash-server-go/internal/game/units"
)

// validateActor runs the checks shared by every command, in order: the
// actor exists, is alive, is not stunned, has an action left, and the
// phase lets its faction act.
func validateActor(s State, actorID string) (*units.Unit, ValidationResult) {
	u, ok := s.Unit(actorID)
	if !ok {
		return nil, Failure("unit %s does not exist", actorID)
	}
	if !u.IsAlive() {
		return nil, Failure("%s is dead", u.Name())
	}
	if u.Condition() == units.Stunned {
		return nil, Failure("%s is stunned for %d more turn(s)", u.Name(), u.StunTurns())
	}
	if !u.HasActionLeft() {
		return nil, Failure("%s has no actions left this turn", u.Name())
	}
	if ok, reason := s.Phase().Permits(u.Faction()); !ok {
		return nil, Failure("%s cannot act: %s", u.Name(), reason)
	}
	return u, Success()
}

// validateEnemy checks targetID names a living unit hostile to actor.
func validateEnemy(s State, actor *units.Unit, targetID string) (*units.Unit, ValidationResult) {
	target, ok := s.Unit(targetID)
	if !ok {
		return nil, Failure("target %s does not exist", targetID)
	}
	if !target.IsAlive() {
		return nil, Failure("%s is already dead", target.Name())
	}
	if target.Faction() == actor.Faction() {
		return nil, Failure("%s is an ally of %s", target.Name(), actor.Name())
	}
	return target, Success()
}
