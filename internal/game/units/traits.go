package units

import (
	"fmt"
	"math"

	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
)

// Stats are the immutable base numbers of a unit.
type Stats struct {
	MaxHealth int `yaml:"max_health" json:"max_health"`
	Attack    int `yaml:"attack" json:"attack"`
	Defense   int `yaml:"defense" json:"defense"`
	Movement  int `yaml:"movement" json:"movement"`
	Range     int `yaml:"range" json:"range"`
}

// Validate checks the stats describe a usable unit.
func (s Stats) Validate() error {
	switch {
	case s.MaxHealth <= 0:
		return fmt.Errorf("max health must be positive, got %d", s.MaxHealth)
	case s.Attack < 0 || s.Defense < 0:
		return fmt.Errorf("attack and defense must not be negative")
	case s.Movement <= 0:
		return fmt.Errorf("movement must be positive, got %d", s.Movement)
	case s.Range <= 0:
		return fmt.Errorf("range must be positive, got %d", s.Range)
	}
	return nil
}

// AttackStyle selects how targets are chosen and hit.
type AttackStyle string

const (
	// Melee hits one orthogonally adjacent enemy.
	Melee AttackStyle = "melee"
	// Ranged hits one enemy within euclidean range and line of sight.
	Ranged AttackStyle = "ranged"
	// Area hits one adjacent enemy plus every enemy adjacent to it at reduced damage.
	Area AttackStyle = "area"
)

// DefaultAreaFactor is the share of damage splash targets receive.
const DefaultAreaFactor = 0.75

// Mobility selects the movement cost model.
type Mobility string

const (
	Ground Mobility = "ground"
	Flying Mobility = "flying"
)

// Traits describe the behaviour of a unit type beyond its numbers.
type Traits struct {
	AttackStyle        AttackStyle `yaml:"attack_style" json:"attack_style"`
	IgnoresForestCover bool        `yaml:"ignores_forest_cover" json:"ignores_forest_cover,omitempty"`
	AreaFactor         float64     `yaml:"area_factor" json:"area_factor,omitempty"`
	Mobility           Mobility    `yaml:"mobility" json:"mobility"`
	IceWalker          bool        `yaml:"ice_walker" json:"ice_walker,omitempty"`
	Revives            bool        `yaml:"revives" json:"revives,omitempty"`
}

// normalize fills defaults for fields left empty in catalog data.
func (t Traits) normalize() Traits {
	if t.AttackStyle == "" {
		t.AttackStyle = Melee
	}
	if t.Mobility == "" {
		t.Mobility = Ground
	}
	if t.AttackStyle == Area && t.AreaFactor == 0 {
		t.AreaFactor = DefaultAreaFactor
	}
	return t
}

// factionMoveCost overrides base terrain costs per faction.
var factionMoveCost = map[faction.Faction]map[grid.Terrain]int{
	faction.Fire:  {grid.Lava: 1, grid.Ice: 2},
	faction.Water: {grid.Ice: 1, grid.Lava: 3},
}

// earthStoneFactor makes stone cheaper for Earth units.
const earthStoneFactor = 0.67

// MoveCost is what it costs this unit to enter a cell of terrain t.
func (u *Unit) MoveCost(t grid.Terrain) int {
	if u.traits.Mobility == Flying {
		return 1
	}
	if u.traits.IceWalker && t == grid.Ice {
		return 1
	}
	if cost, ok := factionMoveCost[u.faction][t]; ok {
		return cost
	}
	base := t.MoveCost()
	if u.faction == faction.Earth && t == grid.Stone {
		return max(1, int(math.Round(float64(base)*earthStoneFactor)))
	}
	return base
}
