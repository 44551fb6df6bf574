package command

import (
	"fmt"
	"sort"

	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/terrain"
	"github.com/elementarclash/clash-server-go/internal/game/units"
)

// Reachable returns every cell u can end a move on this turn, with the
// movement points the cheapest path costs. Entering a cell costs the unit's
// move cost for its terrain. Occupied cells are never destinations; only
// flyers may pass over them.
func Reachable(s State, u *units.Unit) map[grid.Position]int {
	start, ok := u.Position()
	if !ok || !u.IsAlive() {
		return map[grid.Position]int{}
	}
	budget := u.Movement(s)
	field := s.Battlefield()
	flying := u.Traits().Mobility == units.Flying

	best := map[grid.Position]int{start: 0}
	done := map[grid.Position]bool{}
	for {
		// the board is small; a linear scan for the cheapest open node is enough
		var cur grid.Position
		curCost := -1
		for pos, cost := range best {
			if done[pos] {
				continue
			}
			if curCost < 0 || cost < curCost || (cost == curCost && less(pos, cur)) {
				cur, curCost = pos, cost
			}
		}
		if curCost < 0 {
			break
		}
		done[cur] = true
		for _, next := range field.Neighbours(cur) {
			occupant, occupied := s.UnitAt(next)
			if occupied && occupant.ID() != u.ID() && !flying {
				continue
			}
			cost := curCost + u.MoveCost(field.TerrainAt(next))
			if cost > budget {
				continue
			}
			if prev, seen := best[next]; !seen || cost < prev {
				best[next] = cost
			}
		}
	}

	out := make(map[grid.Position]int, len(best))
	for pos, cost := range best {
		if pos == start {
			continue
		}
		if _, occupied := s.UnitAt(pos); occupied {
			continue
		}
		out[pos] = cost
	}
	return out
}

// ReachablePositions is Reachable as a sorted slice.
func ReachablePositions(s State, u *units.Unit) []grid.Position {
	reach := Reachable(s, u)
	out := make([]grid.Position, 0, len(reach))
	for pos := range reach {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func less(a, b grid.Position) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// InRange reports whether attacker can hit target from where both stand.
// Melee and area attackers need an orthogonally adjacent target. Ranged
// attackers reach up to their range stat and need a clear line: forest
// between the two blocks it unless the attacker ignores forest cover.
func InRange(s State, attacker, target *units.Unit) (bool, string) {
	from, ok := attacker.Position()
	if !ok {
		return false, fmt.Sprintf("%s is not on the battlefield", attacker.Name())
	}
	to, ok := target.Position()
	if !ok {
		return false, fmt.Sprintf("%s is not on the battlefield", target.Name())
	}
	switch attacker.Traits().AttackStyle {
	case units.Ranged:
		rng := float64(attacker.Stats().Range)
		if d := from.Euclidean(to); d > rng {
			return false, fmt.Sprintf("%s is out of range (%.1f > %d)", target.Name(), d, attacker.Stats().Range)
		}
		if attacker.Traits().IgnoresForestCover {
			return true, ""
		}
		for _, p := range from.Line(to) {
			if terrain.BlocksLineOfSight(s.TerrainAt(p)) {
				return false, fmt.Sprintf("line of sight to %s is blocked at %s", target.Name(), p)
			}
		}
		return true, ""
	default:
		if from.Manhattan(to) != 1 {
			return false, fmt.Sprintf("%s is not adjacent", target.Name())
		}
		return true, ""
	}
}

// Targets lists the living enemies attacker could hit right now, in id order.
func Targets(s State, attacker *units.Unit, candidates []*units.Unit) []*units.Unit {
	var out []*units.Unit
	for _, c := range candidates {
		if !c.IsAlive() || c.Faction() == attacker.Faction() {
			continue
		}
		if ok, _ := InRange(s, attacker, c); ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// adjacentEnemies returns the living units hostile to actor on the four
// cells around pos.
func adjacentEnemies(s State, actor *units.Unit, pos grid.Position) []*units.Unit {
	var out []*units.Unit
	for _, n := range s.Battlefield().Neighbours(pos) {
		if u, ok := s.UnitAt(n); ok && u.Faction() != actor.Faction() {
			out = append(out, u)
		}
	}
	return out
}
