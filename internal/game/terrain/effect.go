// Package terrain resolves what a terrain does to a unit of a given faction.
//
// Resolution is a two-level lookup: terrain kind -> resolver, then
// resolver(faction) -> Effect. Resolvers are stateless tables shared by every
// match, so adding a terrain or a faction is a data change.
package terrain

import (
	"fmt"

	"github.com/elementarclash/clash-server-go/internal/game/grid"
)

// MaxDelta bounds every attack, defense and per-turn health delta.
const MaxDelta = 20

// Effect is the outcome of standing on a terrain.
type Effect struct {
	Attack        int
	Defense       int
	HealthPerTurn int           // positive heals, negative drains
	Transform     *grid.Terrain // terrain the cell becomes after the unit enters, if any
	Description   string
}

// NewEffect builds an effect and panics when a delta is outside [-MaxDelta, MaxDelta].
func NewEffect(attack, defense, healthPerTurn int, description string) Effect {
	checkBound("attack", attack)
	checkBound("defense", defense)
	checkBound("health per turn", healthPerTurn)
	return Effect{
		Attack:        attack,
		Defense:       defense,
		HealthPerTurn: healthPerTurn,
		Description:   description,
	}
}

// Neutral is the effect of terrain that does nothing for a faction.
func Neutral(t grid.Terrain) Effect {
	return Effect{Description: fmt.Sprintf("no effect on %s", t)}
}

// WithTransform returns a copy of e that converts the cell to t.
func (e Effect) WithTransform(t grid.Terrain) Effect {
	e.Transform = &t
	return e
}

// Transformation returns the terrain the cell turns into, if any.
func (e Effect) Transformation() (grid.Terrain, bool) {
	if e.Transform == nil {
		return 0, false
	}
	return *e.Transform, true
}

// HasCombatBonus reports whether the effect changes attack or defense.
func (e Effect) HasCombatBonus() bool {
	return e.Attack != 0 || e.Defense != 0
}

// IsNeutral reports whether the effect changes nothing at all.
func (e Effect) IsNeutral() bool {
	return !e.HasCombatBonus() && e.HealthPerTurn == 0 && e.Transform == nil
}

func checkBound(name string, v int) {
	if v < -MaxDelta || v > MaxDelta {
		panic(fmt.Sprintf("terrain: %s delta %d outside [-%d, %d]", name, v, MaxDelta, MaxDelta))
	}
}
