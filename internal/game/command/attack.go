package command

import (
	"fmt"
	"strings"

	"github.com/elementarclash/clash-server-go/internal/game/damage"
	"github.com/elementarclash/clash-server-go/internal/game/rules"
	"github.com/elementarclash/clash-server-go/internal/game/units"
)

// hit is one damage application, recorded so it can be reversed exactly.
type hit struct {
	targetID  string
	applied   int
	killed    bool
	stunTurns int
	result    damage.Result
}

// applyHit resolves and applies one hit from actor on target.
func applyHit(s State, actor, target *units.Unit, opts ...damage.Option) hit {
	res := s.Pipeline().Resolve(actor, target, s, opts...)
	h := hit{targetID: target.ID(), stunTurns: target.StunTurns(), result: res}
	h.applied, h.killed = s.DamageUnit(target, res.FinalDamage, actor.ID())
	return h
}

// revertHits reverses hits newest first.
func revertHits(s State, hits []hit) error {
	targets := make([]*units.Unit, len(hits))
	for i, h := range hits {
		u, ok := s.Unit(h.targetID)
		if !ok {
			return fmt.Errorf("unit %s not found", h.targetID)
		}
		targets[i] = u
	}
	for i := len(hits) - 1; i >= 0; i-- {
		s.RestoreUnit(targets[i], hits[i].applied, hits[i].killed)
		targets[i].SetStunTurns(hits[i].stunTurns)
	}
	return nil
}

// Attack has one unit strike an enemy. Area attackers also splash the
// enemies orthogonally adjacent to the primary target.
type Attack struct {
	lifecycle
	attackerID string
	targetID   string

	hits []hit
}

// NewAttack creates an attack of attackerID on targetID.
func NewAttack(attackerID, targetID string) *Attack {
	return &Attack{attackerID: attackerID, targetID: targetID}
}

func (a *Attack) Kind() Kind { return KindAttack }
func (a *Attack) ActorID() string { return a.attackerID }
func (a *Attack) TargetID() string { return a.targetID }

func (a *Attack) String() string {
	return fmt.Sprintf("attack %s -> %s", a.attackerID, a.targetID)
}

// Results returns the resolutions of the last execution, primary target first.
func (a *Attack) Results() []damage.Result {
	out := make([]damage.Result, len(a.hits))
	for i, h := range a.hits {
		out[i] = h.result
	}
	return out
}

func (a *Attack) Validate(s State) ValidationResult {
	attacker, res := validateActor(s, a.attackerID)
	if !res.OK {
		return res
	}
	target, res := validateEnemy(s, attacker, a.targetID)
	if !res.OK {
		return res
	}
	if ok, reason := InRange(s, attacker, target); !ok {
		return Failure("%s", reason)
	}
	return Success()
}

func (a *Attack) Execute(s State) {
	a.markExecuted(a.String())
	attacker := mustUnit(s, a.attackerID)
	target := mustUnit(s, a.targetID)
	targetPos, _ := target.Position()

	attacker.SpendAction()
	a.hits = a.hits[:0]
	if attacker.Traits().AttackStyle != units.Area {
		a.hits = append(a.hits, applyHit(s, attacker, target))
	} else {
		// every target of an area attack, the primary included, takes the
		// reduced base
		scale := damage.WithScale(attacker.Traits().AreaFactor)
		a.hits = append(a.hits, applyHit(s, attacker, target, scale))
		for _, other := range adjacentEnemies(s, attacker, targetPos) {
			if other.ID() == target.ID() {
				continue
			}
			a.hits = append(a.hits, applyHit(s, attacker, other, scale))
		}
	}

	evt := rules.NewEventWithAmount(rules.EventUnitAttacked, attacker.ID(), target.ID(), a.hits[0].result.FinalDamage).At(targetPos)
	for _, h := range a.hits {
		evt.Targets = append(evt.Targets, h.targetID)
	}
	evt.Data = strings.Join(a.hits[0].result.Steps, "; ")
	s.Publish(evt.WithDescription(fmt.Sprintf("%s attacks %s for %d", attacker.Name(), target.Name(), a.hits[0].result.FinalDamage)))
}

func (a *Attack) Undo(s State) error {
	a.mustBeExecuted(a.String())
	attacker, ok := s.Unit(a.attackerID)
	if !ok {
		return fmt.Errorf("undo attack: unit %s not found", a.attackerID)
	}
	if err := revertHits(s, a.hits); err != nil {
		return fmt.Errorf("undo attack: %w", err)
	}
	a.markUndone(a.String())
	attacker.RefundAction()
	return nil
}
