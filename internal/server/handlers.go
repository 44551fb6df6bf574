package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elementarclash/clash-server-go/internal/game"
	"github.com/elementarclash/clash-server-go/internal/game/command"
	"go.uber.org/zap"
)

func (s *WebSocketServer) handleMessage(c *Client, msg ClientMessage) {
	s.logger.Debug("received message", zap.String("type", msg.Type), zap.String("match_id", msg.MatchID))

	if msg.Type == MsgCreateMatch {
		s.handleCreate(c, msg)
		return
	}

	matchID := msg.MatchID
	if matchID == "" {
		matchID = c.match()
	}
	if matchID == "" {
		s.fail(c, msg, errors.New("match_id is required"))
		return
	}

	switch msg.Type {
	case MsgJoin:
		if _, err := s.engine.View(matchID); err != nil {
			s.fail(c, msg, err)
			return
		}
		c.follow(matchID)
		s.sendState(c, matchID)

	case MsgState:
		s.sendState(c, matchID)

	case MsgMove, MsgAttack, MsgAbility:
		cmd, err := decodeCommand(msg)
		if err != nil {
			s.fail(c, msg, err)
			return
		}
		res, err := s.engine.Submit(matchID, cmd)
		if err != nil {
			s.fail(c, msg, err)
			return
		}
		s.reply(c, ServerMessage{Type: PushResult, MatchID: matchID, Data: Result{
			Action:  msg.Type,
			OK:      res.OK,
			Reason:  res.Reason,
			Command: cmd.String(),
		}})

	case MsgUndo:
		cmd, err := s.engine.Undo(matchID)
		s.replyHistory(c, matchID, msg.Type, cmd, err)

	case MsgRedo:
		cmd, err := s.engine.Redo(matchID)
		s.replyHistory(c, matchID, msg.Type, cmd, err)

	case MsgEndTurn:
		err := s.engine.EndTurn(matchID)
		s.replyHistory(c, matchID, msg.Type, nil, err)

	default:
		s.fail(c, msg, fmt.Errorf("unknown message type %q", msg.Type))
	}
}

func (s *WebSocketServer) handleCreate(c *Client, msg ClientMessage) {
	var data createMatchData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		s.fail(c, msg, fmt.Errorf("invalid create_match data: %w", err))
		return
	}
	if len(data.Factions) == 0 {
		s.fail(c, msg, errors.New("factions are required"))
		return
	}

	matchID, err := s.engine.CreateMatch(game.MatchRequest{
		Factions: data.Factions,
		Units:    data.Units,
		Seed:     data.Seed,
	})
	if err != nil {
		s.fail(c, msg, err)
		return
	}
	c.follow(matchID)
	s.sendState(c, matchID)
	s.logger.Info("match created over websocket", zap.String("match_id", matchID))
}

func (s *WebSocketServer) sendState(c *Client, matchID string) {
	view, err := s.engine.View(matchID)
	if err != nil {
		s.fail(c, ClientMessage{Type: MsgState, MatchID: matchID}, err)
		return
	}
	s.reply(c, ServerMessage{Type: PushState, MatchID: matchID, Data: view})
}

// replyHistory answers undo, redo and end_turn. Expected refusals such as
// an empty history come back as a failed result, not an error push.
func (s *WebSocketServer) replyHistory(c *Client, matchID, action string, cmd command.Command, err error) {
	if errors.Is(err, game.ErrMatchNotFound) {
		s.fail(c, ClientMessage{Type: action, MatchID: matchID}, err)
		return
	}
	res := Result{Action: action, OK: err == nil}
	if err != nil {
		res.Reason = err.Error()
	}
	if cmd != nil {
		res.Command = cmd.String()
	}
	s.reply(c, ServerMessage{Type: PushResult, MatchID: matchID, Data: res})
}

func (s *WebSocketServer) fail(c *Client, msg ClientMessage, err error) {
	s.logger.Debug("request failed",
		zap.String("type", msg.Type),
		zap.String("match_id", msg.MatchID),
		zap.Error(err))
	s.reply(c, ServerMessage{Type: PushError, MatchID: msg.MatchID, Data: errorData{Error: err.Error()}})
}

func decodeCommand(msg ClientMessage) (command.Command, error) {
	switch msg.Type {
	case MsgMove:
		var d moveData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return nil, fmt.Errorf("invalid move data: %w", err)
		}
		if d.UnitID == "" {
			return nil, errors.New("unit_id is required")
		}
		return command.NewMove(d.UnitID, d.To), nil

	case MsgAttack:
		var d attackData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return nil, fmt.Errorf("invalid attack data: %w", err)
		}
		if d.UnitID == "" || d.TargetID == "" {
			return nil, errors.New("unit_id and target_id are required")
		}
		return command.NewAttack(d.UnitID, d.TargetID), nil

	case MsgAbility:
		var d abilityData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return nil, fmt.Errorf("invalid ability data: %w", err)
		}
		if d.UnitID == "" {
			return nil, errors.New("unit_id is required")
		}
		if d.Target != nil {
			return command.NewTargetedAbility(d.UnitID, *d.Target), nil
		}
		return command.NewUseAbility(d.UnitID), nil
	}
	return nil, fmt.Errorf("%s is not a command", msg.Type)
}
