package server

import (
	"encoding/json"

	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
)

// Client message types.
const (
	MsgCreateMatch = "create_match"
	MsgJoin        = "join"
	MsgMove        = "move"
	MsgAttack      = "attack"
	MsgAbility     = "ability"
	MsgEndTurn     = "end_turn"
	MsgUndo        = "undo"
	MsgRedo        = "redo"
	MsgState       = "state"
)

// Server push types.
const (
	PushState     = "state"
	PushEvent     = "event"
	PushResult    = "result"
	PushMatchOver = "match_over"
	PushError     = "error"
)

// ClientMessage is a request from a renderer.
type ClientMessage struct {
	Type    string          `json:"type"`
	MatchID string          `json:"match_id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is pushed to renderers.
type ServerMessage struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type createMatchData struct {
	Factions []faction.Faction            `json:"factions"`
	Units    map[faction.Faction][]string `json:"units,omitempty"`
	Seed     int64                        `json:"seed,omitempty"`
}

type moveData struct {
	UnitID string        `json:"unit_id"`
	To     grid.Position `json:"to"`
}

type attackData struct {
	UnitID   string `json:"unit_id"`
	TargetID string `json:"target_id"`
}

type abilityData struct {
	UnitID string         `json:"unit_id"`
	Target *grid.Position `json:"target,omitempty"`
}

// Result reports the outcome of a command, undo, redo or end of turn.
type Result struct {
	Action  string `json:"action"`
	OK      bool   `json:"ok"`
	Reason  string `json:"reason,omitempty"`
	Command string `json:"command,omitempty"`
}

type errorData struct {
	Error string `json:"error"`
}
