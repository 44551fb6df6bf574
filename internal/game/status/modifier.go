// Package status models the additive modifiers stacked on a unit.
//
// Two families exist and are kept apart at the type level. Dynamic
// modifiers (TerrainBonus, SynergyBonus) recompute their contribution on
// every query and never expire. Timed modifiers (buffs and debuffs)
// implement Ticker and expire when their remaining turns reach zero.
package status

import (
	"fmt"

	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/terrain"
	"github.com/google/uuid"
)

// MaxDelta bounds each single contribution of a modifier.
const MaxDelta = 20

// Kind is the category of a modifier.
type Kind int

const (
	KindTerrain Kind = iota
	KindSynergy
	KindBuff
	KindDebuff
)

func (k Kind) String() string {
	switch k {
	case KindTerrain:
		return "TERRAIN"
	case KindSynergy:
		return "SYNERGY"
	case KindBuff:
		return "BUFF"
	case KindDebuff:
		return "DEBUFF"
	default:
		return fmt.Sprintf("KIND_%d", int(k))
	}
}

// Deltas are the stat changes a modifier contributes.
type Deltas struct {
	Attack   int `json:"attack"`
	Defense  int `json:"defense"`
	Movement int `json:"movement"`
}

// Add returns the component-wise sum.
func (d Deltas) Add(o Deltas) Deltas {
	return Deltas{Attack: d.Attack + o.Attack, Defense: d.Defense + o.Defense, Movement: d.Movement + o.Movement}
}

// Scale multiplies every component by n.
func (d Deltas) Scale(n int) Deltas {
	return Deltas{Attack: d.Attack * n, Defense: d.Defense * n, Movement: d.Movement * n}
}

// IsZero reports whether no component is set.
func (d Deltas) IsZero() bool { return d == Deltas{} }

func (d Deltas) mustBeBounded(owner string) {
	for _, v := range []int{d.Attack, d.Defense, d.Movement} {
		if v < -MaxDelta || v > MaxDelta {
			panic(fmt.Sprintf("status: %s delta %d outside [-%d, %d]", owner, v, MaxDelta, MaxDelta))
		}
	}
}

// Env is the board view dynamic modifiers need.
type Env interface {
	// AdjacentAllies counts living same-faction units orthogonally next to the unit.
	AdjacentAllies(unitID string) int
}

// Modifier is one entry of a unit's status stack.
type Modifier interface {
	ID() string
	Kind() Kind
	Name() string
	Deltas(env Env, unitID string) Deltas
	Expired() bool
	Description() string
}

// Ticker is implemented by modifiers with a finite duration.
type Ticker interface {
	Modifier
	Tick()
	Remaining() int
}

// TerrainBonus carries the combat bonus of the terrain a unit stands on. It
// is replaced wholesale whenever the unit moves or the terrain changes.
type TerrainBonus struct {
	id     string
	effect terrain.Effect
}

// NewTerrainBonus wraps a dispatched terrain effect.
func NewTerrainBonus(effect terrain.Effect) *TerrainBonus {
	return &TerrainBonus{id: uuid.NewString(), effect: effect}
}

func (b *TerrainBonus) ID() string { return b.id }
func (b *TerrainBonus) Kind() Kind { return KindTerrain }
func (b *TerrainBonus) Name() string { return "TerrainBonus" }
func (b *TerrainBonus) Expired() bool { return false }
func (b *TerrainBonus) Description() string { return b.effect.Description }
func (b *TerrainBonus) Effect() terrain.Effect { return b.effect }

func (b *TerrainBonus) Deltas(Env, string) Deltas {
	return Deltas{Attack: b.effect.Attack, Defense: b.effect.Defense}
}

// synergyTable holds the per-adjacent-ally bonus for each faction.
var synergyTable = map[faction.Faction]Deltas{
	faction.Fire: {Attack: 1},
}

// SynergyPerAlly returns the per-ally bonus for f, zero when f has none.
func SynergyPerAlly(f faction.Faction) Deltas {
	return synergyTable[f]
}

// SynergyBonus scales with the number of adjacent living allies, counted at
// query time.
type SynergyBonus struct {
	id      string
	faction faction.Faction
	perAlly Deltas
}

// NewSynergyBonus returns the synergy modifier for a faction.
func NewSynergyBonus(f faction.Faction) *SynergyBonus {
	per := SynergyPerAlly(f)
	per.mustBeBounded("synergy")
	return &SynergyBonus{id: uuid.NewString(), faction: f, perAlly: per}
}

func (b *SynergyBonus) ID() string { return b.id }
func (b *SynergyBonus) Kind() Kind { return KindSynergy }
func (b *SynergyBonus) Name() string { return "SynergyBonus" }
func (b *SynergyBonus) Expired() bool { return false }

func (b *SynergyBonus) Description() string {
	return fmt.Sprintf("%+d attack per adjacent %s ally", b.perAlly.Attack, b.faction)
}

func (b *SynergyBonus) Deltas(env Env, unitID string) Deltas {
	if env == nil || b.perAlly.IsZero() {
		return Deltas{}
	}
	return b.perAlly.Scale(env.AdjacentAllies(unitID))
}

// Timed is a buff or debuff lasting a fixed number of turns.
type Timed struct {
	id        string
	kind      Kind
	name      string
	deltas    Deltas
	remaining int
}

// NewTimed creates a timed modifier. kind must be KindBuff or KindDebuff.
func NewTimed(kind Kind, name string, deltas Deltas, turns int) *Timed {
	if kind != KindBuff && kind != KindDebuff {
		panic(fmt.Sprintf("status: timed modifier of kind %s", kind))
	}
	if turns <= 0 {
		panic(fmt.Sprintf("status: timed modifier %q with %d turns", name, turns))
	}
	deltas.mustBeBounded(name)
	return &Timed{id: uuid.NewString(), kind: kind, name: name, deltas: deltas, remaining: turns}
}

func (m *Timed) ID() string { return m.id }
func (m *Timed) Kind() Kind { return m.kind }
func (m *Timed) Name() string { return m.name }
func (m *Timed) Remaining() int { return m.remaining }
func (m *Timed) Expired() bool { return m.remaining <= 0 }
func (m *Timed) Deltas(Env, string) Deltas { return m.deltas }

// Tick consumes one turn of duration.
func (m *Timed) Tick() {
	if m.remaining > 0 {
		m.remaining--
	}
}

func (m *Timed) Description() string {
	return fmt.Sprintf("%s (%d turns left)", m.name, m.remaining)
}
