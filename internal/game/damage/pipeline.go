// Package damage resolves how much health an attack removes.
//
// Resolution runs a fixed sequence of stages over a shared Context. Each
// stage reads what earlier stages produced, adds its own contribution and
// appends one line to the audit log. The pipeline has no hidden randomness:
// the same units on the same board always produce the same Result.
package damage

import (
	"fmt"

	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/status"
	"github.com/elementarclash/clash-server-go/internal/game/units"
)

// MinimumDamage is the floor every resolved attack deals.
const MinimumDamage = 1

// Board is the state the pipeline reads besides the two units.
type Board interface {
	status.Env
	TerrainAt(pos grid.Position) grid.Terrain
}

// Context accumulates one attack's calculation. It is created per attack
// and discarded once the Result is produced.
type Context struct {
	Attacker *units.Unit
	Defender *units.Unit
	Board    Board

	// Scale substitutes a fraction of the attack stat as base damage, used
	// by area attackers. Zero means full damage.
	Scale float64
	// FinalScale shrinks the damage left after defense, used by area
	// abilities. Zero means no falloff.
	FinalScale float64

	BaseDamage     int
	Multiplier     float64
	TerrainAttack  int
	TerrainDefense int
	Synergy        int
	TotalDefense   int
	FinalDamage    int
	Steps          []string
}

func (c *Context) logf(format string, args ...any) {
	c.Steps = append(c.Steps, fmt.Sprintf(format, args...))
}

// TotalAttack is the attack value before defense is subtracted.
func (c *Context) TotalAttack() int {
	return c.BaseDamage + c.TerrainAttack + c.Synergy
}

// Result is the immutable outcome of a resolved attack.
type Result struct {
	AttackerID     string   `json:"attacker_id"`
	DefenderID     string   `json:"defender_id"`
	BaseDamage     int      `json:"base_damage"`
	Multiplier     float64  `json:"multiplier"`
	TerrainAttack  int      `json:"terrain_attack"`
	TerrainDefense int      `json:"terrain_defense"`
	Synergy        int      `json:"synergy"`
	TotalDefense   int      `json:"total_defense"`
	FinalDamage    int      `json:"final_damage"`
	Steps          []string `json:"steps"`
}

// Stage is one step of the resolution.
type Stage interface {
	Name() string
	Apply(ctx *Context)
}

// Pipeline runs stages in order.
type Pipeline struct {
	stages []Stage
}

// NewPipeline builds a pipeline over the given stages.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: append([]Stage(nil), stages...)}
}

// DefaultPipeline is base, faction advantage, terrain, synergy, defense.
func DefaultPipeline() *Pipeline {
	return NewPipeline(BaseStage{}, AdvantageStage{}, TerrainStage{}, SynergyStage{}, DefenseStage{})
}

// Stages lists the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Option adjusts the context before the first stage runs.
type Option func(*Context)

// WithScale resolves the attack with only a fraction of the attack stat.
func WithScale(factor float64) Option {
	return func(c *Context) { c.Scale = factor }
}

// WithFinalScale keeps only a fraction of the damage left after defense,
// truncated and never below MinimumDamage.
func WithFinalScale(factor float64) Option {
	return func(c *Context) { c.FinalScale = factor }
}

// Resolve runs every stage for attacker hitting defender on board.
func (p *Pipeline) Resolve(attacker, defender *units.Unit, board Board, opts ...Option) Result {
	if attacker == nil || defender == nil {
		panic("damage: attacker and defender are required")
	}
	ctx := &Context{
		Attacker:   attacker,
		Defender:   defender,
		Board:      board,
		Multiplier: 1.0,
	}
	for _, opt := range opts {
		opt(ctx)
	}
	for _, stage := range p.stages {
		stage.Apply(ctx)
	}
	return Result{
		AttackerID:     attacker.ID(),
		DefenderID:     defender.ID(),
		BaseDamage:     ctx.BaseDamage,
		Multiplier:     ctx.Multiplier,
		TerrainAttack:  ctx.TerrainAttack,
		TerrainDefense: ctx.TerrainDefense,
		Synergy:        ctx.Synergy,
		TotalDefense:   ctx.TotalDefense,
		FinalDamage:    ctx.FinalDamage,
		Steps:          append([]string(nil), ctx.Steps...),
	}
}
