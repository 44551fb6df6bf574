package rules

import (
	"testing"

	"github.com/elementarclash/clash-server-go/internal/game/faction"
)

func aliveSet(fs ...faction.Faction) func(faction.Faction) bool {
	set := make(map[faction.Faction]bool, len(fs))
	for _, f := range fs {
		set[f] = true
	}
	return func(f faction.Faction) bool { return set[f] }
}

func TestTurnManagerRoundRobin(t *testing.T) {
	tm := NewTurnManager([]faction.Faction{faction.Fire, faction.Water, faction.Earth})
	alive := aliveSet(faction.Fire, faction.Water, faction.Earth)

	if got := tm.Start(alive); got != faction.Fire {
		t.Fatalf("expected FIRE to start, got %s", got)
	}
	if tm.Round() != 1 {
		t.Fatalf("expected round 1, got %d", tm.Round())
	}

	expected := []struct {
		faction faction.Faction
		round   int
	}{
		{faction.Water, 1},
		{faction.Earth, 1},
		{faction.Fire, 2},
		{faction.Water, 2},
	}
	for i, exp := range expected {
		got := tm.Advance(alive)
		if got != exp.faction || tm.Round() != exp.round {
			t.Fatalf("step %d: expected %s in round %d, got %s in round %d", i, exp.faction, exp.round, got, tm.Round())
		}
	}
}

func TestTurnManagerSkipsEliminatedFactions(t *testing.T) {
	tm := NewTurnManager(faction.All())
	tm.Start(aliveSet(faction.Fire, faction.Water, faction.Earth, faction.Air))

	// Fire is wiped out during its own turn; the cycle now starts with Water.
	alive := aliveSet(faction.Water, faction.Air)
	if got := tm.Advance(alive); got != faction.Water {
		t.Fatalf("expected WATER, got %s", got)
	}
	if got := tm.Advance(alive); got != faction.Air {
		t.Fatalf("expected AIR, got %s", got)
	}
	if tm.Round() != 1 {
		t.Fatalf("expected round 1 before wrapping, got %d", tm.Round())
	}
	if got := tm.Advance(alive); got != faction.Water {
		t.Fatalf("expected WATER after wrap, got %s", got)
	}
	if tm.Round() != 2 {
		t.Fatalf("expected round 2 after wrapping, got %d", tm.Round())
	}
}

func TestTurnManagerStartSkipsDeadFirstFaction(t *testing.T) {
	tm := NewTurnManager([]faction.Faction{faction.Fire, faction.Air})
	if got := tm.Start(aliveSet(faction.Air)); got != faction.Air {
		t.Fatalf("expected AIR to start, got %s", got)
	}
}

func TestNewTurnManagerRequiresFactions(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for empty order")
		}
	}()
	NewTurnManager(nil)
}

func TestRNGIsDeterministic(t *testing.T) {
	a, b := NewRNG(99), NewRNG(99)
	for i := 0; i < 20; i++ {
		if x, y := a.Intn(1000), b.Intn(1000); x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
	}
	if a.Position() != 20 {
		t.Fatalf("expected position 20, got %d", a.Position())
	}
	if a.Chance(0) {
		t.Fatalf("zero probability must never succeed")
	}
	if !a.Chance(1) {
		t.Fatalf("probability one must always succeed")
	}
}
