package game

import (
	"math"

	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/units"
)

// RandomEffects controls the chance of a random buff or debuff when a
// faction's turn begins. The chance grows each round up to MaxChance.
type RandomEffects struct {
	BaseChance float64
	PerRound   float64
	MaxChance  float64
}

// Chance returns the grant probability for the given round.
func (r RandomEffects) Chance(round int) float64 {
	if round < 1 {
		round = 1
	}
	return math.Max(0, math.Min(r.BaseChance+float64(round-1)*r.PerRound, r.MaxChance))
}

// EventSettings tunes the battlefield events of the event phase.
type EventSettings struct {
	RegionSize          int
	ForestFireDamage    int
	GeyserDamage        int
	EarthquakeStunTurns int
}

// Settings are the per-match rules parameters.
type Settings struct {
	GridSize            int
	Seed                int64
	MaxActions          int
	RandomEffects       RandomEffects
	Events              EventSettings
	TerrainDistribution map[grid.Terrain]int
	ReplayLimit         int
}

// DefaultSettings returns the standard rule set.
func DefaultSettings() Settings {
	return Settings{
		GridSize:   grid.DefaultSize,
		MaxActions: units.DefaultMaxActions,
		RandomEffects: RandomEffects{
			BaseChance: 0.03,
			PerRound:   0.06,
			MaxChance:  0.60,
		},
		Events: EventSettings{
			RegionSize:          3,
			ForestFireDamage:    10,
			GeyserDamage:        8,
			EarthquakeStunTurns: 1,
		},
		ReplayLimit: DefaultReplayLimit,
	}
}

// normalize fills zero sizes with defaults. A zero RandomEffects disables
// random buffs.
func (s Settings) normalize() Settings {
	def := DefaultSettings()
	if s.GridSize <= 0 {
		s.GridSize = def.GridSize
	}
	if s.MaxActions <= 0 {
		s.MaxActions = def.MaxActions
	}
	if s.Events == (EventSettings{}) {
		s.Events = def.Events
	}
	if s.ReplayLimit <= 0 {
		s.ReplayLimit = def.ReplayLimit
	}
	if s.Events.RegionSize <= 0 {
		s.Events.RegionSize = def.Events.RegionSize
	}
	return s
}
