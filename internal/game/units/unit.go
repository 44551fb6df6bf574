// Package units holds the per-unit state of a match.
package units

import (
	"fmt"

	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/status"
	"github.com/elementarclash/clash-server-go/internal/game/terrain"
)

// DefaultMaxActions is the per-turn action budget of every unit.
const DefaultMaxActions = 2

// Condition is the coarse lifecycle state of a unit.
type Condition int

const (
	Active Condition = iota
	Stunned
	Dead
)

func (c Condition) String() string {
	switch c {
	case Active:
		return "ACTIVE"
	case Stunned:
		return "STUNNED"
	case Dead:
		return "DEAD"
	default:
		return fmt.Sprintf("CONDITION_%d", int(c))
	}
}

// Spec is everything needed to create a unit.
type Spec struct {
	ID      string
	Name    string
	Type    string
	Faction faction.Faction
	Stats   Stats
	Traits  Traits
	Ability AbilitySpec
}

// Unit is a combatant. Health stays within [0, MaxHealth]; dead units are
// kept in memory so undo and revival can bring them back.
type Unit struct {
	id       string
	name     string
	typeID   string
	faction  faction.Faction
	stats    Stats
	traits   Traits
	ability  AbilitySpec
	statuses *status.Stack

	health     int
	pos        grid.Position
	placed     bool
	dead       bool
	actions    int
	maxActions int
	stunTurns  int
	cooldown   int

	revivalUsed    bool
	pendingRevival bool
}

// New creates an unplaced unit at full health.
func New(spec Spec) (*Unit, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("unit id is required")
	}
	if !spec.Faction.Valid() {
		return nil, fmt.Errorf("unit %s: invalid faction %d", spec.ID, int(spec.Faction))
	}
	if err := spec.Stats.Validate(); err != nil {
		return nil, fmt.Errorf("unit %s: %w", spec.ID, err)
	}
	if err := spec.Ability.Validate(); err != nil {
		return nil, fmt.Errorf("unit %s: %w", spec.ID, err)
	}
	name := spec.Name
	if name == "" {
		name = spec.Type
	}
	u := &Unit{
		id:         spec.ID,
		name:       name,
		typeID:     spec.Type,
		faction:    spec.Faction,
		stats:      spec.Stats,
		traits:     spec.Traits.normalize(),
		ability:    spec.Ability,
		statuses:   status.NewStack(),
		health:     spec.Stats.MaxHealth,
		maxActions: DefaultMaxActions,
	}
	if !status.SynergyPerAlly(spec.Faction).IsZero() {
		u.statuses.Add(status.NewSynergyBonus(spec.Faction))
	}
	return u, nil
}

func (u *Unit) ID() string { return u.id }
func (u *Unit) Name() string { return u.name }
func (u *Unit) Type() string { return u.typeID }
func (u *Unit) Faction() faction.Faction { return u.faction }
func (u *Unit) Stats() Stats { return u.stats }
func (u *Unit) Traits() Traits { return u.traits }
func (u *Unit) Ability() AbilitySpec { return u.ability }
func (u *Unit) Statuses() *status.Stack { return u.statuses }
func (u *Unit) Health() int { return u.health }
func (u *Unit) IsAlive() bool { return !u.dead }

func (u *Unit) String() string {
	return fmt.Sprintf("%s[%s %s %d/%d]", u.name, u.id, u.faction, u.health, u.stats.MaxHealth)
}

// Condition derives the lifecycle state.
func (u *Unit) Condition() Condition {
	switch {
	case u.dead:
		return Dead
	case u.stunTurns > 0:
		return Stunned
	default:
		return Active
	}
}

// Position returns the unit's cell, or false before placement.
func (u *Unit) Position() (grid.Position, bool) {
	return u.pos, u.placed
}

// Place puts the unit on pos. Dead units keep their last position.
func (u *Unit) Place(pos grid.Position) {
	u.pos = pos
	u.placed = true
}

func (u *Unit) ActionsUsed() int { return u.actions }
func (u *Unit) MaxActions() int { return u.maxActions }

// SetMaxActions changes the per-turn budget; values below one are ignored.
func (u *Unit) SetMaxActions(n int) {
	if n > 0 {
		u.maxActions = n
	}
}

// HasActionLeft reports whether another action may be spent this turn.
func (u *Unit) HasActionLeft() bool { return u.actions < u.maxActions }

// SpendAction consumes one action slot. Spending past the budget is a bug.
func (u *Unit) SpendAction() {
	if !u.HasActionLeft() {
		panic(fmt.Sprintf("units: %s has no action left", u.id))
	}
	u.actions++
}

// RefundAction returns one slot, used when a command is undone.
func (u *Unit) RefundAction() {
	if u.actions == 0 {
		panic(fmt.Sprintf("units: %s has no spent action to refund", u.id))
	}
	u.actions--
}

// TakeDamage removes up to amount health. It returns the amount actually
// removed and whether this call killed the unit; death is reported once.
func (u *Unit) TakeDamage(amount int) (applied int, died bool) {
	if u.dead || amount <= 0 {
		return 0, false
	}
	applied = min(amount, u.health)
	u.health -= applied
	if u.health == 0 {
		u.dead = true
		u.stunTurns = 0
		if u.traits.Revives && !u.revivalUsed {
			u.pendingRevival = true
		}
		return applied, true
	}
	return applied, false
}

// Heal restores up to amount health and returns how much was restored.
func (u *Unit) Heal(amount int) int {
	if u.dead || amount <= 0 {
		return 0
	}
	applied := min(amount, u.stats.MaxHealth-u.health)
	u.health += applied
	return applied
}

// UndoDamage gives back exactly applied health. When the damage had killed
// the unit it is brought back to life.
func (u *Unit) UndoDamage(applied int, killed bool) {
	if killed {
		u.dead = false
		u.pendingRevival = false
	}
	u.health = min(u.stats.MaxHealth, u.health+applied)
}

// UndoHeal removes exactly applied health restored by an earlier Heal.
func (u *Unit) UndoHeal(applied int) {
	if applied > u.health-1 {
		panic(fmt.Sprintf("units: undoing %d healing would kill %s", applied, u.id))
	}
	u.health -= applied
}

// Stun keeps the unit from acting for the given number of its own turns. Stuns do not
// stack; the longer one wins.
func (u *Unit) Stun(turns int) {
	if u.dead || turns <= 0 {
		return
	}
	u.stunTurns = max(u.stunTurns, turns)
}

func (u *Unit) StunTurns() int { return u.stunTurns }

// SetStunTurns restores a stun counter captured earlier.
func (u *Unit) SetStunTurns(turns int) { u.stunTurns = max(0, turns) }

// Cooldown is how many turn resets remain before the ability is ready.
func (u *Unit) Cooldown() int { return u.cooldown }

// SetCooldown sets the remaining cooldown.
func (u *Unit) SetCooldown(turns int) { u.cooldown = max(0, turns) }

// ResetTurn clears the action budget, counts down stun and cooldown, and
// ticks timed modifiers. It returns the modifiers that expired.
func (u *Unit) ResetTurn() []status.Modifier {
	u.actions = 0
	if u.stunTurns > 0 {
		u.stunTurns--
	}
	if u.cooldown > 0 {
		u.cooldown--
	}
	return u.statuses.Tick()
}

// PendingRevival reports whether the unit died and will come back.
func (u *Unit) PendingRevival() bool { return u.dead && u.pendingRevival }

// Revive brings a pending unit back at half health on pos.
func (u *Unit) Revive(pos grid.Position) {
	if !u.PendingRevival() {
		panic(fmt.Sprintf("units: %s cannot be revived", u.id))
	}
	u.dead = false
	u.pendingRevival = false
	u.revivalUsed = true
	u.health = max(1, u.stats.MaxHealth/2)
	u.actions = 0
	u.Place(pos)
}

// SetTerrainBonus replaces the unit's terrain modifier with one built from
// effect. Effects without a combat bonus just clear the old one.
func (u *Unit) SetTerrainBonus(effect terrain.Effect) []status.Modifier {
	var m status.Modifier
	if effect.HasCombatBonus() {
		m = status.NewTerrainBonus(effect)
	}
	return u.statuses.ReplaceKind(status.KindTerrain, m)
}

// Effective returns base stats plus every unexpired modifier.
func (u *Unit) Effective(env status.Env) status.Deltas {
	sum := u.statuses.Sum(env, u.id, status.All)
	return status.Deltas{
		Attack:   u.stats.Attack + sum.Attack,
		Defense:  u.stats.Defense + sum.Defense,
		Movement: max(1, u.stats.Movement+sum.Movement),
	}
}

// Movement is the number of movement points available this turn.
func (u *Unit) Movement(env status.Env) int {
	return u.Effective(env).Movement
}
