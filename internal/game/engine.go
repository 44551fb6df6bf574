package game

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/elementarclash/clash-server-go/internal/game/catalog"
	"github.com/elementarclash/clash-server-go/internal/game/command"
	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/rules"
	"github.com/elementarclash/clash-server-go/internal/game/watchers"
	"go.uber.org/zap"
)

// ErrMatchNotFound is returned for unknown match ids.
var ErrMatchNotFound = errors.New("match not found")

// Notification types emitted by the engine.
const (
	NotificationMatchCreated = "MATCH_CREATED"
	NotificationStateChanged = "STATE_CHANGED"
	NotificationMatchEvent   = "MATCH_EVENT"
	NotificationMatchOver    = "MATCH_OVER"
)

// Notification is pushed to UI or websocket clients.
type Notification struct {
	Type      string                 // one of the Notification* constants
	MatchID   string                 // match the notification belongs to
	Faction   string                 // acting faction, empty for broadcast
	Timestamp time.Time              // when the notification was created
	Data      map[string]interface{} // notification-specific data
}

// NotificationHandler receives engine notifications.
type NotificationHandler func(notification Notification)

// MatchRequest describes a match to create. A nil Units map gives every
// faction its full catalog roster.
type MatchRequest struct {
	Factions []faction.Faction
	Units    map[faction.Faction][]string
	Seed     int64
	Board    *grid.Battlefield
}

type matchEntry struct {
	mu      sync.Mutex
	match   *Match
	watch   *watchers.Set
	replay  *Replay
	created time.Time
}

// record appends view to the replay. Called with entry.mu held.
func (e *Engine) record(entry *matchEntry, view MatchView) {
	if err := entry.replay.Record(view); err != nil {
		e.logger.Warn("replay frame dropped", zap.String("match_id", view.ID), zap.Error(err))
	}
}

// Engine hosts matches and serializes every operation on each of them.
type Engine struct {
	logger              *zap.Logger
	settings            Settings
	catalog             *catalog.Catalog
	mu                  sync.RWMutex
	matches             map[string]*matchEntry
	notificationHandler NotificationHandler
}

// NewEngine creates an engine. A nil catalog uses the built-in roster.
func NewEngine(logger *zap.Logger, settings Settings, cat *catalog.Catalog) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cat == nil {
		cat = catalog.MustDefault()
	}
	return &Engine{
		logger:   logger,
		settings: settings.normalize(),
		catalog:  cat,
		matches:  make(map[string]*matchEntry),
	}
}

// SetNotificationHandler installs the handler for engine notifications.
func (e *Engine) SetNotificationHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notificationHandler = handler
}

// emitNotification hands n to the handler on its own goroutine, so the
// handler may call back into the engine after the current operation
// releases the match lock.
func (e *Engine) emitNotification(n Notification) {
	e.mu.RLock()
	handler := e.notificationHandler
	e.mu.RUnlock()

	if handler != nil {
		if n.Timestamp.IsZero() {
			n.Timestamp = time.Now()
		}
		go handler(n)
	}
}

// Catalog returns the roster the engine creates units from.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// CreateMatch builds and starts a match and returns its id.
func (e *Engine) CreateMatch(req MatchRequest) (string, error) {
	settings := e.settings
	if req.Seed != 0 {
		settings.Seed = req.Seed
	} else if settings.Seed == 0 {
		settings.Seed = time.Now().UnixNano()
	}

	b := NewBuilder().
		WithSettings(settings).
		WithFactions(req.Factions...).
		WithCatalog(e.catalog).
		WithLogger(e.logger.Named("match"))
	if req.Board != nil {
		b.WithBattlefield(req.Board)
	}
	for _, f := range req.Factions {
		types, ok := req.Units[f]
		if req.Units == nil {
			ok = true
			for _, entry := range e.catalog.ByFaction(f) {
				types = append(types, entry.Type)
			}
		}
		if ok {
			b.Spawn(f, types...)
		}
	}

	m, err := b.Build()
	if err != nil {
		return "", fmt.Errorf("create match: %w", err)
	}

	entry := &matchEntry{
		match:   m,
		watch:   watchers.NewSet(e.logger.Named("events")),
		replay:  NewReplay(m.ID(), e.settings.ReplayLimit),
		created: time.Now(),
	}
	entry.watch.Attach(m.Bus())
	m.Bus().Subscribe(func(evt rules.Event) {
		e.emitNotification(Notification{
			Type:    NotificationMatchEvent,
			MatchID: evt.MatchID,
			Faction: evt.Faction,
			Data:    map[string]interface{}{"event": evt},
		})
	})

	e.mu.Lock()
	e.matches[m.ID()] = entry
	e.mu.Unlock()

	view, err := e.locked(entry, func(m *Match) error { return m.Start() })
	if err != nil {
		return "", err
	}

	e.logger.Info("match created",
		zap.String("match_id", m.ID()),
		zap.Int("factions", len(req.Factions)),
		zap.Int64("seed", settings.Seed))
	e.emitNotification(Notification{
		Type:    NotificationMatchCreated,
		MatchID: m.ID(),
		Data:    map[string]interface{}{"view": view},
	})
	return m.ID(), nil
}

func (e *Engine) entry(matchID string) (*matchEntry, error) {
	e.mu.RLock()
	entry, ok := e.matches[matchID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return entry, nil
}

// mutate runs fn under the match lock and announces the new state.
func (e *Engine) mutate(matchID string, fn func(m *Match) error) error {
	entry, err := e.entry(matchID)
	if err != nil {
		return err
	}
	var wasOver bool
	view, err := e.locked(entry, func(m *Match) error {
		wasOver = m.Phase().IsTerminal()
		return fn(m)
	})

	e.emitNotification(Notification{
		Type:    NotificationStateChanged,
		MatchID: matchID,
		Faction: view.ActiveFaction,
		Data:    map[string]interface{}{"view": view},
	})
	if !wasOver && view.Winner != "" {
		e.logger.Info("match finished", zap.String("match_id", matchID), zap.String("winner", view.Winner))
		e.emitNotification(Notification{
			Type:    NotificationMatchOver,
			MatchID: matchID,
			Data:    map[string]interface{}{"winner": view.Winner},
		})
	}
	return err
}

// locked runs fn under the match lock and records the resulting state. The
// lock is released even when fn panics.
func (e *Engine) locked(entry *matchEntry, fn func(m *Match) error) (MatchView, error) {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	err := fn(entry.match)
	view := entry.match.Snapshot()
	e.record(entry, view)
	return view, err
}

// Submit validates and executes cmd in the match.
func (e *Engine) Submit(matchID string, cmd command.Command) (command.ValidationResult, error) {
	var res command.ValidationResult
	err := e.mutate(matchID, func(m *Match) error {
		res = m.Submit(cmd)
		return nil
	})
	if err == nil && !res.OK {
		e.logger.Debug("command rejected",
			zap.String("match_id", matchID),
			zap.String("command", cmd.String()),
			zap.String("reason", res.Reason))
	}
	return res, err
}

// Undo reverses the last command of the current turn.
func (e *Engine) Undo(matchID string) (command.Command, error) {
	var cmd command.Command
	err := e.mutate(matchID, func(m *Match) error {
		var err error
		cmd, err = m.Undo()
		return err
	})
	return cmd, err
}

// Redo re-applies the last undone command.
func (e *Engine) Redo(matchID string) (command.Command, error) {
	var cmd command.Command
	err := e.mutate(matchID, func(m *Match) error {
		var err error
		cmd, err = m.Redo()
		return err
	})
	return cmd, err
}

// EndTurn ends the active faction's turn.
func (e *Engine) EndTurn(matchID string) error {
	return e.mutate(matchID, func(m *Match) error {
		if m.Phase().IsTerminal() {
			return ErrMatchOver
		}
		return m.EndTurn()
	})
}

// View returns a snapshot of the match.
func (e *Engine) View(matchID string) (MatchView, error) {
	var view MatchView
	err := e.read(matchID, func(m *Match) error {
		view = m.Snapshot()
		return nil
	})
	return view, err
}

// ValidMoves lists where a unit can move.
func (e *Engine) ValidMoves(matchID, unitID string) ([]grid.Position, error) {
	var out []grid.Position
	err := e.read(matchID, func(m *Match) error {
		var err error
		out, err = m.ValidMoves(unitID)
		return err
	})
	return out, err
}

// ValidTargets lists the ids of the units a unit can attack.
func (e *Engine) ValidTargets(matchID, unitID string) ([]string, error) {
	var out []string
	err := e.read(matchID, func(m *Match) error {
		targets, err := m.ValidTargets(unitID)
		for _, t := range targets {
			out = append(out, t.ID())
		}
		return err
	})
	return out, err
}

// Stats returns the watcher summary of a match.
func (e *Engine) Stats(matchID string) (watchers.Summary, error) {
	entry, err := e.entry(matchID)
	if err != nil {
		return watchers.Summary{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.watch.Summary(), nil
}

// Events returns the recent events recorded for a match.
func (e *Engine) Events(matchID string) ([]rules.Event, error) {
	entry, err := e.entry(matchID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.watch.Log.Events(), nil
}

// Replay returns a copy of the recorded states of a match.
func (e *Engine) Replay(matchID string) (*Replay, error) {
	entry, err := e.entry(matchID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.replay.Clone(), nil
}

func (e *Engine) read(matchID string, fn func(m *Match) error) error {
	entry, err := e.entry(matchID)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.match)
}

// RemoveMatch drops a match from the engine.
func (e *Engine) RemoveMatch(matchID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.matches[matchID]; !ok {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	delete(e.matches, matchID)
	e.logger.Info("match removed", zap.String("match_id", matchID))
	return nil
}

// Matches lists the hosted match ids, oldest first.
func (e *Engine) Matches() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.matches))
	for id := range e.matches {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := e.matches[ids[i]], e.matches[ids[j]]
		if !a.created.Equal(b.created) {
			return a.created.Before(b.created)
		}
		return ids[i] < ids[j]
	})
	return ids
}
