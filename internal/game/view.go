package game

import (
	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/status"
	"github.com/elementarclash/clash-server-go/internal/game/units"
)

// MatchView is a read-only snapshot handed to renderers.
type MatchView struct {
	ID            string            `json:"id"`
	Phase         string            `json:"phase"`
	ActiveFaction string            `json:"active_faction,omitempty"`
	Winner        string            `json:"winner,omitempty"`
	Round         int               `json:"round"`
	Size          int               `json:"size"`
	Terrain       []string          `json:"terrain"`
	Factions      []string          `json:"factions"`
	Units         []UnitView        `json:"units"`
	CanUndo       bool              `json:"can_undo"`
	CanRedo       bool              `json:"can_redo"`
	LastEvent     *BattlefieldEvent `json:"last_event,omitempty"`
}

// UnitView describes one unit with its effective stats.
type UnitView struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Type           string        `json:"type"`
	Faction        string        `json:"faction"`
	Position       grid.Position `json:"position"`
	Health         int           `json:"health"`
	MaxHealth      int           `json:"max_health"`
	Attack         int           `json:"attack"`
	Defense        int           `json:"defense"`
	Movement       int           `json:"movement"`
	Range          int           `json:"range"`
	ActionsUsed    int           `json:"actions_used"`
	MaxActions     int           `json:"max_actions"`
	Condition      string        `json:"condition"`
	StunTurns      int           `json:"stun_turns,omitempty"`
	Ability        string        `json:"ability,omitempty"`
	Cooldown       int           `json:"cooldown,omitempty"`
	PendingRevival bool          `json:"pending_revival,omitempty"`
	Statuses       []StatusView  `json:"statuses,omitempty"`
}

// StatusView describes one modifier on a unit.
type StatusView struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Remaining   int    `json:"remaining,omitempty"`
	Description string `json:"description"`
}

// Snapshot captures the current match state.
func (m *Match) Snapshot() MatchView {
	v := MatchView{
		ID:      m.id,
		Phase:   m.phase.String(),
		Round:   m.turns.Round(),
		Size:    m.field.Size(),
		Terrain: m.field.Layout(),
		CanUndo: m.History().CanUndo(),
		CanRedo: m.History().CanRedo(),
	}
	if f, ok := m.phase.ActiveFaction(); ok {
		v.ActiveFaction = f.String()
	}
	if f, ok := m.phase.Winner(); ok {
		v.Winner = f.String()
	}
	for _, f := range m.factions {
		v.Factions = append(v.Factions, f.String())
	}
	for _, u := range m.Units() {
		v.Units = append(v.Units, m.unitView(u))
	}
	if m.lastEvent != nil {
		ev := *m.lastEvent
		v.LastEvent = &ev
	}
	return v
}

func (m *Match) unitView(u *units.Unit) UnitView {
	pos, _ := u.Position()
	eff := u.Effective(m)
	v := UnitView{
		ID:             u.ID(),
		Name:           u.Name(),
		Type:           u.Type(),
		Faction:        u.Faction().String(),
		Position:       pos,
		Health:         u.Health(),
		MaxHealth:      u.Stats().MaxHealth,
		Attack:         eff.Attack,
		Defense:        eff.Defense,
		Movement:       eff.Movement,
		Range:          u.Stats().Range,
		ActionsUsed:    u.ActionsUsed(),
		MaxActions:     u.MaxActions(),
		Condition:      u.Condition().String(),
		StunTurns:      u.StunTurns(),
		Ability:        string(u.Ability().Kind),
		Cooldown:       u.Cooldown(),
		PendingRevival: u.PendingRevival(),
	}
	for _, mod := range u.Statuses().List() {
		sv := StatusView{Name: mod.Name(), Kind: mod.Kind().String(), Description: mod.Description()}
		if t, ok := mod.(status.Ticker); ok {
			sv.Remaining = t.Remaining()
		}
		v.Statuses = append(v.Statuses, sv)
	}
	return v
}
