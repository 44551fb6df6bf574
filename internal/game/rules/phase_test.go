package rules

import (
	"testing"

	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/stretchr/testify/assert"
)

func TestPhaseTransitionTable(t *testing.T) {
	toFire := Transition{Kind: ToPlayerTurn, Faction: faction.Fire}
	toWater := Transition{Kind: ToPlayerTurn, Faction: faction.Water}
	toEvent := Transition{Kind: ToEvent}
	toOver := Transition{Kind: ToGameOver, Faction: faction.Earth}

	assert.Equal(t, PlayerTurn(faction.Fire), Setup().Next(toFire))
	assert.Equal(t, GameOver(faction.Earth), Setup().Next(toOver))
	assert.Panics(t, func() { Setup().Next(toEvent) })

	turn := PlayerTurn(faction.Fire)
	assert.Equal(t, turn, turn.Next(toWater), "a turn must pass through the event phase")
	assert.Equal(t, EventPhase(), turn.Next(toEvent))
	assert.Equal(t, GameOver(faction.Earth), turn.Next(toOver))

	event := EventPhase()
	assert.Equal(t, PlayerTurn(faction.Water), event.Next(toWater))
	assert.Equal(t, event, event.Next(toEvent))
	assert.Equal(t, GameOver(faction.Earth), event.Next(toOver))

	over := GameOver(faction.Air)
	for _, tr := range []Transition{toFire, toEvent, toOver} {
		assert.Equal(t, over, over.Next(tr))
	}
	assert.True(t, over.IsTerminal())
}

func TestPhasePermits(t *testing.T) {
	ok, _ := PlayerTurn(faction.Water).Permits(faction.Water)
	assert.True(t, ok)

	for _, p := range []Phase{Setup(), PlayerTurn(faction.Fire), EventPhase(), GameOver(faction.Fire)} {
		ok, reason := p.Permits(faction.Water)
		assert.False(t, ok, p.String())
		assert.NotEmpty(t, reason, p.String())
	}
}

func TestPhaseAccessors(t *testing.T) {
	f, ok := PlayerTurn(faction.Air).ActiveFaction()
	assert.True(t, ok)
	assert.Equal(t, faction.Air, f)

	_, ok = EventPhase().ActiveFaction()
	assert.False(t, ok)

	w, ok := GameOver(faction.Earth).Winner()
	assert.True(t, ok)
	assert.Equal(t, faction.Earth, w)
	assert.Equal(t, "GAME_OVER(EARTH)", GameOver(faction.Earth).String())
	assert.Equal(t, "EVENT_PHASE", EventPhase().String())
}
