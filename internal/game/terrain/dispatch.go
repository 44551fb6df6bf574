package terrain

import (
	"fmt"

	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
)

// Resolver answers, for one terrain kind, what it does to each faction.
type Resolver struct {
	terrain   grid.Terrain
	fallback  Effect
	byFaction map[faction.Faction]Effect
}

// Terrain returns the terrain kind this resolver handles.
func (r *Resolver) Terrain() grid.Terrain { return r.terrain }

// Resolve returns the effect for a unit of faction f.
func (r *Resolver) Resolve(f faction.Faction) Effect {
	if e, ok := r.byFaction[f]; ok {
		return e
	}
	return r.fallback
}

func newResolver(t grid.Terrain, fallback Effect, overrides map[faction.Faction]Effect) *Resolver {
	return &Resolver{terrain: t, fallback: fallback, byFaction: overrides}
}

var resolvers = map[grid.Terrain]*Resolver{
	grid.Lava: newResolver(grid.Lava, Neutral(grid.Lava), map[faction.Faction]Effect{
		faction.Fire:  NewEffect(2, 0, 0, "+2 attack on lava"),
		faction.Water: NewEffect(0, 0, -5, "-5 health per turn on lava"),
	}),
	grid.Ice: newResolver(grid.Ice, NewEffect(0, 1, 0, "+1 defense on ice"), map[faction.Faction]Effect{
		faction.Water: NewEffect(0, 3, 5, "+3 defense and +5 health per turn on ice"),
		faction.Fire:  NewEffect(0, 1, 0, "+1 defense on ice, melts it to desert").WithTransform(grid.Desert),
	}),
	grid.Forest: newResolver(grid.Forest, NewEffect(0, 2, 0, "+2 defense in forest cover"), nil),
	grid.Stone: newResolver(grid.Stone, Neutral(grid.Stone), map[faction.Faction]Effect{
		faction.Earth: NewEffect(0, 2, 0, "+2 defense on stone"),
	}),
	grid.Desert: newResolver(grid.Desert, Neutral(grid.Desert), nil),
}

// For returns the resolver for terrain t. Unknown terrain is a programming error.
func For(t grid.Terrain) *Resolver {
	r, ok := resolvers[t]
	if !ok {
		panic(fmt.Sprintf("terrain: no resolver registered for %s", t))
	}
	return r
}

// Dispatch resolves the effect of terrain t on a unit of faction f.
func Dispatch(t grid.Terrain, f faction.Faction) Effect {
	return For(t).Resolve(f)
}

// BlocksLineOfSight reports whether ranged attacks cannot pass through t.
func BlocksLineOfSight(t grid.Terrain) bool {
	return t == grid.Forest
}
