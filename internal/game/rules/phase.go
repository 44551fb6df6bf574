package rules

import (
	"fmt"

	"github.com/elementarclash/clash-server-go/internal/game/faction"
)

// PhaseKind tags the variant held by a Phase.
type PhaseKind int

const (
	PhaseSetup PhaseKind = iota
	PhasePlayerTurn
	PhaseEvent
	PhaseGameOver
)

var phaseNames = map[PhaseKind]string{
	PhaseSetup:      "SETUP",
	PhasePlayerTurn: "PLAYER_TURN",
	PhaseEvent:      "EVENT_PHASE",
	PhaseGameOver:   "GAME_OVER",
}

func (k PhaseKind) String() string {
	if name, ok := phaseNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(k))
}

// Phase is the current stage of the match. It is a tagged variant: the
// faction is meaningful for PlayerTurn only, the winner for GameOver only.
type Phase struct {
	kind    PhaseKind
	faction faction.Faction
}

// Setup is the phase before the first turn.
func Setup() Phase { return Phase{kind: PhaseSetup} }

// PlayerTurn is the phase in which faction f issues commands.
func PlayerTurn(f faction.Faction) Phase { return Phase{kind: PhasePlayerTurn, faction: f} }

// EventPhase resolves one random battlefield event between turns.
func EventPhase() Phase { return Phase{kind: PhaseEvent} }

// GameOver is terminal; winner is the last faction standing.
func GameOver(winner faction.Faction) Phase { return Phase{kind: PhaseGameOver, faction: winner} }

// Kind returns the variant tag.
func (p Phase) Kind() PhaseKind { return p.kind }

// ActiveFaction returns the faction whose turn it is.
func (p Phase) ActiveFaction() (faction.Faction, bool) {
	return p.faction, p.kind == PhasePlayerTurn
}

// Winner returns the winning faction once the match is over.
func (p Phase) Winner() (faction.Faction, bool) {
	return p.faction, p.kind == PhaseGameOver
}

// IsTerminal reports whether no further transition can leave this phase.
func (p Phase) IsTerminal() bool { return p.kind == PhaseGameOver }

func (p Phase) String() string {
	switch p.kind {
	case PhasePlayerTurn:
		return fmt.Sprintf("PLAYER_TURN(%s)", p.faction)
	case PhaseGameOver:
		return fmt.Sprintf("GAME_OVER(%s)", p.faction)
	default:
		return p.kind.String()
	}
}

// Permits reports whether a unit of faction f may act in this phase. The
// reason explains a refusal.
func (p Phase) Permits(f faction.Faction) (bool, string) {
	switch p.kind {
	case PhaseSetup:
		return false, "the match has not started"
	case PhasePlayerTurn:
		if p.faction != f {
			return false, fmt.Sprintf("it is %s's turn", p.faction)
		}
		return true, ""
	case PhaseEvent:
		return false, "no commands during the event phase"
	case PhaseGameOver:
		return false, "the match is over"
	default:
		panic(fmt.Sprintf("rules: unhandled phase %s", p.kind))
	}
}

// TransitionKind is the kind of change requested from a phase.
type TransitionKind int

const (
	ToPlayerTurn TransitionKind = iota
	ToEvent
	ToGameOver
)

func (k TransitionKind) String() string {
	switch k {
	case ToPlayerTurn:
		return "TO_PLAYER_TURN"
	case ToEvent:
		return "TO_EVENT"
	case ToGameOver:
		return "TO_GAME_OVER"
	default:
		return fmt.Sprintf("TRANSITION_%d", int(k))
	}
}

// Transition is a request to leave the current phase.
type Transition struct {
	Kind    TransitionKind
	Faction faction.Faction // next faction for ToPlayerTurn, winner for ToGameOver
}

// Next answers a transition request. Every phase answers every request:
// it either moves, stays, or panics when the request is a caller bug.
//
//	from \ to    PlayerTurn   Event   GameOver
//	Setup        move         panic   move
//	PlayerTurn   stay         move    move
//	Event        move         stay    move
//	GameOver     stay         stay    stay
func (p Phase) Next(t Transition) Phase {
	switch p.kind {
	case PhaseSetup:
		switch t.Kind {
		case ToPlayerTurn:
			return PlayerTurn(t.Faction)
		case ToEvent:
			panic("rules: setup cannot transition to the event phase")
		case ToGameOver:
			return GameOver(t.Faction)
		}
	case PhasePlayerTurn:
		switch t.Kind {
		case ToPlayerTurn:
			return p
		case ToEvent:
			return EventPhase()
		case ToGameOver:
			return GameOver(t.Faction)
		}
	case PhaseEvent:
		switch t.Kind {
		case ToPlayerTurn:
			return PlayerTurn(t.Faction)
		case ToEvent:
			return p
		case ToGameOver:
			return GameOver(t.Faction)
		}
	case PhaseGameOver:
		return p
	}
	panic(fmt.Sprintf("rules: unhandled transition %s from %s", t.Kind, p))
}
