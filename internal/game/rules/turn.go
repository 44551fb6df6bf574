package rules

import (
	"github.com/elementarclash/clash-server-go/internal/game/faction"
)

// TurnManager tracks the round-robin faction order and the round counter.
type TurnManager struct {
	order      []faction.Faction
	orderIndex int
	round      int
	started    bool
}

// NewTurnManager creates a manager over a fixed faction order.
func NewTurnManager(order []faction.Faction) *TurnManager {
	if len(order) == 0 {
		panic("rules: turn order must not be empty")
	}
	return &TurnManager{order: append([]faction.Faction(nil), order...)}
}

// Order returns the fixed turn order.
func (tm *TurnManager) Order() []faction.Faction {
	return append([]faction.Faction(nil), tm.order...)
}

// Round returns the current round number (1-based, 0 before Start).
func (tm *TurnManager) Round() int { return tm.round }

// Active returns the faction whose turn it is.
func (tm *TurnManager) Active() faction.Faction { return tm.order[tm.orderIndex] }

// Start begins round 1 with the first faction in order that is still alive.
func (tm *TurnManager) Start(alive func(faction.Faction) bool) faction.Faction {
	tm.started = true
	tm.round = 1
	tm.orderIndex = 0
	for i, f := range tm.order {
		if alive == nil || alive(f) {
			tm.orderIndex = i
			break
		}
	}
	return tm.Active()
}

// Advance moves to the next living faction in order. The round counter
// increments once each time the order wraps, which is exactly once per
// cycle back to the first living faction.
func (tm *TurnManager) Advance(alive func(faction.Faction) bool) faction.Faction {
	if !tm.started {
		return tm.Start(alive)
	}
	n := len(tm.order)
	idx := tm.orderIndex
	for step := 1; step <= n; step++ {
		next := (tm.orderIndex + step) % n
		if alive == nil || alive(tm.order[next]) {
			idx = next
			break
		}
	}
	if idx <= tm.orderIndex {
		tm.round++
	}
	tm.orderIndex = idx
	return tm.Active()
}
