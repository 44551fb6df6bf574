// Package command implements the reversible player actions: Move, Attack
// and UseAbility. A command validates itself against an explicit State,
// executes at most once and can reverse exactly that execution.
package command

import (
	"fmt"

	"github.com/elementarclash/clash-server-go/internal/game/damage"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/rules"
	"github.com/elementarclash/clash-server-go/internal/game/units"
)

// Kind tags the command variant.
type Kind int

const (
	KindMove Kind = iota
	KindAttack
	KindAbility
)

func (k Kind) String() string {
	switch k {
	case KindMove:
		return "MOVE"
	case KindAttack:
		return "ATTACK"
	case KindAbility:
		return "ABILITY"
	default:
		return fmt.Sprintf("COMMAND_%d", int(k))
	}
}

// ValidationResult reports whether a command may run. A failure always
// carries a reason.
type ValidationResult struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Success is a passing validation.
func Success() ValidationResult { return ValidationResult{OK: true} }

// Failure builds a failing validation. An empty reason is a programming error.
func Failure(format string, args ...any) ValidationResult {
	reason := fmt.Sprintf(format, args...)
	if reason == "" {
		panic("command: validation failure without a reason")
	}
	return ValidationResult{Reason: reason}
}

func (r ValidationResult) String() string {
	if r.OK {
		return "ok"
	}
	return r.Reason
}

// State is the game handle commands operate on. All mutation performed by
// a command goes through it.
type State interface {
	damage.Board

	Battlefield() *grid.Battlefield
	Phase() rules.Phase
	Pipeline() *damage.Pipeline

	// Unit returns a unit by id, alive or dead.
	Unit(id string) (*units.Unit, bool)
	// UnitAt returns the living unit standing on pos.
	UnitAt(pos grid.Position) (*units.Unit, bool)

	// MoveUnit relocates a living unit and refreshes its terrain bonus.
	MoveUnit(u *units.Unit, to grid.Position)
	// SetTerrain changes a cell and returns the previous terrain.
	SetTerrain(pos grid.Position, t grid.Terrain, sourceID string) grid.Terrain
	// DamageUnit applies damage, handling death and victory.
	DamageUnit(target *units.Unit, amount int, sourceID string) (applied int, died bool)
	// RestoreUnit reverses a DamageUnit call exactly.
	RestoreUnit(target *units.Unit, applied int, killed bool)

	Publish(evt rules.Event)
}

// Command is a reversible unit of player intent.
type Command interface {
	Kind() Kind
	ActorID() string
	Validate(s State) ValidationResult
	Execute(s State)
	Undo(s State) error
	String() string
}

// lifecycle guards the execute-once, undo-after-execute contract.
type lifecycle struct {
	executed bool
}

func (l *lifecycle) markExecuted(name string) {
	if l.executed {
		panic(fmt.Sprintf("command: %s executed twice without undo", name))
	}
	l.executed = true
}

func (l *lifecycle) mustBeExecuted(name string) {
	if !l.executed {
		panic(fmt.Sprintf("command: undo of %s that never executed", name))
	}
}

func (l *lifecycle) markUndone(name string) {
	l.mustBeExecuted(name)
	l.executed = false
}

// Executed reports whether the command currently has an effect on the state.
func (l *lifecycle) Executed() bool { return l.executed }
