package game

import (
	"errors"
	"testing"

	"github.com/elementarclash/clash-server-go/internal/game/command"
	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"go.uber.org/zap/zaptest"
)

// playScript creates a seeded match and walks it through a fixed series of
// moves and turn ends, returning the engine and match id.
func playScript(t *testing.T, seed int64) (*Engine, string) {
	t.Helper()
	engine := NewEngine(zaptest.NewLogger(t), DefaultSettings(), nil)
	id, err := engine.CreateMatch(MatchRequest{
		Factions: []faction.Faction{faction.Fire, faction.Water},
		Units: map[faction.Faction][]string{
			faction.Fire:  {"inferno_warrior", "flame_archer"},
			faction.Water: {"tide_guardian", "frost_mage"},
		},
		Seed: seed,
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}

	for turn := 0; turn < 4; turn++ {
		view, err := engine.View(id)
		if err != nil {
			t.Fatalf("view: %v", err)
		}
		for _, u := range view.Units {
			if u.Faction != view.ActiveFaction || u.Health == 0 {
				continue
			}
			moves, err := engine.ValidMoves(id, u.ID)
			if err != nil || len(moves) == 0 {
				continue
			}
			if _, err := engine.Submit(id, command.NewMove(u.ID, moves[len(moves)-1])); err != nil {
				t.Fatalf("submit: %v", err)
			}
		}
		if err := engine.EndTurn(id); err != nil && !errors.Is(err, ErrMatchOver) {
			t.Fatalf("end turn: %v", err)
		}
	}
	return engine, id
}

func TestEngineRecordsReplay(t *testing.T) {
	engine, id := playScript(t, 77)

	replay, err := engine.Replay(id)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.MatchID != id {
		t.Fatalf("expected replay of %s, got %s", id, replay.MatchID)
	}
	if replay.Size() < 5 {
		t.Fatalf("expected a frame per state change, got %d", replay.Size())
	}

	first, _ := replay.At(0)
	if first.View.Round != 1 || first.View.ActiveFaction != "FIRE" {
		t.Fatalf("first frame should be the opening state, got round %d %s", first.View.Round, first.View.ActiveFaction)
	}
	last, _ := replay.At(replay.Size() - 1)
	view, _ := engine.View(id)
	if ok, err := VerifyChecksum(view, last.Checksum); err != nil || !ok {
		t.Fatalf("last frame should match the live state (%v)", err)
	}
	for i := 1; i < replay.Size(); i++ {
		prev, _ := replay.At(i - 1)
		cur, _ := replay.At(i)
		if prev.Checksum == cur.Checksum {
			t.Fatalf("frames %d and %d repeat the same state", i-1, i)
		}
	}

	if _, err := engine.Replay("missing"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestSameSeedReplaysIdentically(t *testing.T) {
	engineA, idA := playScript(t, 1234)
	engineB, idB := playScript(t, 1234)

	a, _ := engineA.Replay(idA)
	b, _ := engineB.Replay(idB)
	if a.Size() != b.Size() {
		t.Fatalf("replays differ in length: %d vs %d", a.Size(), b.Size())
	}
	for i := 0; i < a.Size(); i++ {
		fa, _ := a.At(i)
		fb, _ := b.At(i)
		if fa.Checksum != fb.Checksum {
			t.Fatalf("frame %d diverged", i)
		}
	}
}

func TestRejectedCommandAddsNoFrame(t *testing.T) {
	engine := NewEngine(zaptest.NewLogger(t), quietSettings(), nil)
	id, err := engine.CreateMatch(MatchRequest{
		Factions: []faction.Faction{faction.Earth, faction.Air},
		Units: map[faction.Faction][]string{
			faction.Earth: {"stone_golem"},
			faction.Air:   {"wind_dancer"},
		},
		Seed: 8,
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	before, _ := engine.Replay(id)

	res, err := engine.Submit(id, command.NewAttack("air-wind_dancer-1", "earth-stone_golem-1"))
	if err != nil || res.OK {
		t.Fatalf("expected a rejected attack, got ok=%v err=%v", res.OK, err)
	}
	after, _ := engine.Replay(id)
	if after.Size() != before.Size() {
		t.Fatalf("rejected command recorded a frame: %d -> %d", before.Size(), after.Size())
	}
}
