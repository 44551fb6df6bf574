package damage

import (
	"math"

	"github.com/elementarclash/clash-server-go/internal/game/status"
	"github.com/elementarclash/clash-server-go/internal/game/terrain"
	"github.com/elementarclash/clash-server-go/internal/game/units"
)

// BaseStage seeds the calculation with the attacker's attack stat.
type BaseStage struct{}

func (BaseStage) Name() string { return "base" }

func (BaseStage) Apply(ctx *Context) {
	base := ctx.Attacker.Stats().Attack
	if ctx.Scale > 0 && ctx.Scale != 1 {
		scaled := int(float64(base) * ctx.Scale)
		ctx.logf("Base damage: %d (%.0f%% of %d)", scaled, ctx.Scale*100, base)
		ctx.BaseDamage = scaled
		return
	}
	ctx.BaseDamage = base
	ctx.logf("Base damage: %d", base)
}

// AdvantageStage applies the faction matchup multiplier.
type AdvantageStage struct{}

func (AdvantageStage) Name() string { return "faction_advantage" }

func (AdvantageStage) Apply(ctx *Context) {
	m := Advantage(ctx.Attacker.Faction(), ctx.Defender.Faction())
	ctx.Multiplier = m
	if m == 1.0 {
		ctx.logf("Faction advantage: none (%s vs %s)", ctx.Attacker.Faction(), ctx.Defender.Faction())
		return
	}
	before := ctx.BaseDamage
	ctx.BaseDamage = int(math.Round(float64(before) * m))
	ctx.logf("Faction advantage: x%.2f (%d -> %d)", m, before, ctx.BaseDamage)
}

// TerrainStage adds the attacker's terrain attack bonus and records the
// defender's terrain defense bonus. The two are independent.
type TerrainStage struct{}

func (TerrainStage) Name() string { return "terrain" }

func (TerrainStage) Apply(ctx *Context) {
	if ctx.Board == nil {
		return
	}
	if pos, ok := ctx.Attacker.Position(); ok {
		e := terrain.Dispatch(ctx.Board.TerrainAt(pos), ctx.Attacker.Faction())
		ctx.TerrainAttack = e.Attack
		if e.Attack != 0 {
			ctx.logf("Terrain attack bonus: %+d", e.Attack)
		}
	}
	if pos, ok := ctx.Defender.Position(); ok {
		e := terrain.Dispatch(ctx.Board.TerrainAt(pos), ctx.Defender.Faction())
		ctx.TerrainDefense = e.Defense
		if e.Defense != 0 {
			ctx.logf("Terrain defense bonus: %+d", e.Defense)
		}
	}
}

// SynergyStage adds every non-terrain modifier attack bonus of the attacker,
// synergy and timed buffs alike.
type SynergyStage struct{}

func (SynergyStage) Name() string { return "synergy" }

func (SynergyStage) Apply(ctx *Context) {
	ctx.Synergy = modifierDeltas(ctx.Attacker, ctx.Board).Attack
	if ctx.Synergy != 0 {
		ctx.logf("Synergy bonus: %+d", ctx.Synergy)
	}
}

// DefenseStage subtracts the defender's total defense and applies the floor.
type DefenseStage struct{}

func (DefenseStage) Name() string { return "defense" }

func (DefenseStage) Apply(ctx *Context) {
	ctx.TotalDefense = ctx.Defender.Stats().Defense + modifierDeltas(ctx.Defender, ctx.Board).Defense + ctx.TerrainDefense
	ctx.logf("Total defense: %d", ctx.TotalDefense)
	ctx.FinalDamage = max(MinimumDamage, ctx.TotalAttack()-ctx.TotalDefense)
	if ctx.FinalScale > 0 && ctx.FinalScale != 1 {
		before := ctx.FinalDamage
		ctx.FinalDamage = max(MinimumDamage, int(float64(before)*ctx.FinalScale))
		ctx.logf("Area falloff: %.0f%% of %d", ctx.FinalScale*100, before)
	}
	ctx.logf("Final damage: %d", ctx.FinalDamage)
}

// modifierDeltas sums a unit's modifiers except terrain bonuses, which the
// pipeline dispatches from the board itself.
func modifierDeltas(u *units.Unit, board Board) status.Deltas {
	var env status.Env
	if board != nil {
		env = board
	}
	return u.Statuses().Sum(env, u.ID(), status.Except(status.KindTerrain))
}
