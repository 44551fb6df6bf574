package damage

import "github.com/elementarclash/clash-server-go/internal/game/faction"

const (
	strong = 1.25
	weak   = 0.75
)

// advantageTable holds the two asymmetric matchups of every faction.
var advantageTable = map[faction.Faction]map[faction.Faction]float64{
	faction.Fire:  {faction.Earth: strong, faction.Water: weak},
	faction.Water: {faction.Fire: strong, faction.Earth: weak},
	faction.Earth: {faction.Water: strong, faction.Air: weak},
	faction.Air:   {faction.Earth: strong, faction.Fire: weak},
}

// Advantage returns the damage multiplier of attacker against defender.
// Matchups not in the table are neutral.
func Advantage(attacker, defender faction.Faction) float64 {
	if m, ok := advantageTable[attacker][defender]; ok {
		return m
	}
	return 1.0
}
