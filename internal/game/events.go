package game

import (
	"fmt"

	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// BattlefieldEventKind names a random event of the event phase.
type BattlefieldEventKind string

const (
	ForestFire BattlefieldEventKind = "forest_fire"
	Geyser     BattlefieldEventKind = "geyser"
	Earthquake BattlefieldEventKind = "earthquake"
)

// BattlefieldEventKinds lists the event kinds in draw order.
func BattlefieldEventKinds() []BattlefieldEventKind {
	return []BattlefieldEventKind{ForestFire, Geyser, Earthquake}
}

// BattlefieldEvent records what one event phase did.
type BattlefieldEvent struct {
	Kind     BattlefieldEventKind `json:"kind"`
	Round    int                  `json:"round"`
	Origin   grid.Position        `json:"origin"`
	Size     int                  `json:"size"`
	Changes  []grid.Change        `json:"changes,omitempty"`
	Affected []string             `json:"affected,omitempty"`
}

// runBattlefieldEvent draws one event and applies it to a random square
// region of the board.
func (m *Match) runBattlefieldEvent() {
	kinds := BattlefieldEventKinds()
	kind := kinds[m.rng.Intn(len(kinds))]
	size := m.settings.Events.RegionSize
	region := m.field.RandomRegion(m.rng, size, size)
	m.applyBattlefieldEvent(kind, region)
}

// applyBattlefieldEvent resolves kind over region.
func (m *Match) applyBattlefieldEvent(kind BattlefieldEventKind, region grid.Region) {
	record := &BattlefieldEvent{Kind: kind, Round: m.turns.Round()}
	if cells := region.Cells(); len(cells) > 0 {
		record.Origin = cells[0].Position()
	}
	record.Size = m.settings.Events.RegionSize

	switch kind {
	case ForestFire:
		for _, pos := range grid.PositionsOn(region, grid.Forest) {
			m.SetTerrain(pos, grid.Lava, "")
			record.Changes = append(record.Changes, grid.Change{Position: pos, From: grid.Forest, To: grid.Lava})
		}
		for _, ch := range record.Changes {
			if u, ok := m.UnitAt(ch.Position); ok {
				record.Affected = append(record.Affected, u.ID())
				m.DamageUnit(u, m.settings.Events.ForestFireDamage, "")
			}
			if m.phase.IsTerminal() {
				break
			}
		}
	case Geyser:
		for _, pos := range grid.PositionsOn(region, grid.Ice) {
			if u, ok := m.UnitAt(pos); ok {
				record.Affected = append(record.Affected, u.ID())
				m.DamageUnit(u, m.settings.Events.GeyserDamage, "")
			}
			if m.phase.IsTerminal() {
				break
			}
		}
	case Earthquake:
		for _, pos := range grid.PositionsOn(region, grid.Stone) {
			u, ok := m.UnitAt(pos)
			if !ok {
				continue
			}
			record.Affected = append(record.Affected, u.ID())
			u.Stun(m.settings.Events.EarthquakeStunTurns)
			m.Publish(rules.NewEventWithAmount(rules.EventUnitStunned, "", u.ID(), u.StunTurns()).At(pos))
		}
	default:
		panic(fmt.Sprintf("game: unhandled battlefield event %q", kind))
	}

	m.lastEvent = record
	evt := rules.NewEvent(rules.EventBattlefieldEvent, "", "").At(record.Origin)
	evt.Data = string(kind)
	evt.Targets = record.Affected
	evt.Amount = len(record.Changes)
	m.Publish(evt.WithDescription(fmt.Sprintf("%s strikes %s", kind, region.Name())))
	if m.logger != nil {
		m.logger.Debug("battlefield event",
			zap.String("match_id", m.id),
			zap.String("kind", string(kind)),
			zap.String("region", region.Name()),
			zap.Int("affected", len(record.Affected)))
	}
}
