package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elementarclash/clash-server-go/internal/config"
	"github.com/elementarclash/clash-server-go/internal/game"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type received struct {
	Type    string          `json:"type"`
	MatchID string          `json:"match_id"`
	Data    json.RawMessage `json:"data"`
}

func startServer(t *testing.T) (*websocket.Conn, *game.Engine) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	settings := game.DefaultSettings()
	settings.RandomEffects = game.RandomEffects{}
	engine := game.NewEngine(logger, settings, nil)

	srv := NewWebSocketServer(config.WebSocketConfig{Path: "/ws"}, engine, logger)
	ctx, cancel := context.WithCancel(context.Background())
	srv.Start(ctx)
	ts := httptest.NewServer(srv.Handler())

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		ts.Close()
		cancel()
	})
	return conn, engine
}

func send(t *testing.T, conn *websocket.Conn, typ, matchID string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: typ, MatchID: matchID, Data: raw}))
}

// readUntil skips pushes until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg received
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == typ {
			return msg
		}
	}
}

func TestCreateMatchAndPlay(t *testing.T) {
	conn, engine := startServer(t)

	send(t, conn, MsgCreateMatch, "", map[string]any{
		"factions": []string{"FIRE", "WATER"},
		"units":    map[string][]string{"FIRE": {"inferno_warrior"}, "WATER": {"tide_guardian"}},
		"seed":     17,
	})
	state := readUntil(t, conn, PushState)
	require.NotEmpty(t, state.MatchID)

	var view game.MatchView
	require.NoError(t, json.Unmarshal(state.Data, &view))
	assert.Equal(t, "FIRE", view.ActiveFaction)
	require.Len(t, view.Units, 2)

	moves, err := engine.ValidMoves(state.MatchID, "fire-inferno_warrior-1")
	require.NoError(t, err)
	require.NotEmpty(t, moves)

	send(t, conn, MsgMove, state.MatchID, map[string]any{"unit_id": "fire-inferno_warrior-1", "to": moves[0]})
	var res Result
	require.NoError(t, json.Unmarshal(readUntil(t, conn, PushResult).Data, &res))
	assert.True(t, res.OK, res.Reason)
	assert.Equal(t, MsgMove, res.Action)

	send(t, conn, MsgUndo, "", nil)
	require.NoError(t, json.Unmarshal(readUntil(t, conn, PushResult).Data, &res))
	assert.True(t, res.OK)
	assert.Equal(t, MsgUndo, res.Action)

	send(t, conn, MsgUndo, "", nil)
	res = Result{}
	require.NoError(t, json.Unmarshal(readUntil(t, conn, PushResult).Data, &res))
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "nothing to undo")

	send(t, conn, MsgEndTurn, "", nil)
	require.NoError(t, json.Unmarshal(readUntil(t, conn, PushResult).Data, &res))
	assert.True(t, res.OK, res.Reason)

	v, err := engine.View(state.MatchID)
	require.NoError(t, err)
	assert.Equal(t, "WATER", v.ActiveFaction)
}

func TestRejectedCommandIsReported(t *testing.T) {
	conn, _ := startServer(t)

	send(t, conn, MsgCreateMatch, "", map[string]any{
		"factions": []string{"EARTH", "AIR"},
		"units":    map[string][]string{"EARTH": {"stone_golem"}, "AIR": {"wind_dancer"}},
		"seed":     3,
	})
	state := readUntil(t, conn, PushState)

	send(t, conn, MsgAttack, state.MatchID, map[string]any{"unit_id": "air-wind_dancer-1", "target_id": "earth-stone_golem-1"})
	var res Result
	require.NoError(t, json.Unmarshal(readUntil(t, conn, PushResult).Data, &res))
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "EARTH's turn")
}

func TestProtocolErrors(t *testing.T) {
	conn, _ := startServer(t)

	cases := []struct {
		name    string
		typ     string
		matchID string
		data    any
		want    string
	}{
		{"no match", MsgState, "", nil, "match_id is required"},
		{"unknown match", MsgJoin, "nope", nil, "match not found"},
		{"no factions", MsgCreateMatch, "", map[string]any{}, "factions are required"},
		{"bad faction", MsgCreateMatch, "", map[string]any{"factions": []string{"METAL"}}, "invalid create_match data"},
		{"missing unit", MsgMove, "m", map[string]any{}, "unit_id is required"},
		{"unknown type", "dance", "m", nil, "unknown message type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			send(t, conn, tc.typ, tc.matchID, tc.data)
			msg := readUntil(t, conn, PushError)
			var data errorData
			require.NoError(t, json.Unmarshal(msg.Data, &data))
			assert.Contains(t, data.Error, tc.want)
		})
	}
}
