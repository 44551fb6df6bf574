// Package watchers holds passive observers of match events. They build
// statistics and logs; nothing in a match ever reads them to make a decision.
package watchers

import (
	"sort"

	"github.com/elementarclash/clash-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// DefaultLogCapacity is how many events an EventLog keeps.
const DefaultLogCapacity = 256

// EventLog writes every event to a zap logger and remembers the most recent
// ones.
type EventLog struct {
	*rules.BaseWatcher
	logger   *zap.Logger
	capacity int
	events   []rules.Event
}

// NewEventLog creates an event log. A nil logger only records.
func NewEventLog(logger *zap.Logger, capacity int) *EventLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &EventLog{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeMatch, "EventLog"),
		logger:      logger,
		capacity:    capacity,
	}
}

// Watch implements rules.Watcher.
func (w *EventLog) Watch(event rules.Event) {
	w.logger.Debug("match event",
		zap.String("match_id", event.MatchID),
		zap.String("type", string(event.Type)),
		zap.Int("round", event.Round),
		zap.String("faction", event.Faction),
		zap.String("source_id", event.SourceID),
		zap.String("target_id", event.TargetID),
		zap.Int("amount", event.Amount),
		zap.String("description", event.Description))
	w.events = append(w.events, event)
	if len(w.events) > w.capacity {
		w.events = append(w.events[:0:0], w.events[len(w.events)-w.capacity:]...)
	}
	w.SetCondition(true)
}

// Reset forgets the recorded events.
func (w *EventLog) Reset() {
	w.BaseWatcher.Reset()
	w.events = nil
}

// Events returns the recorded events, oldest first.
func (w *EventLog) Events() []rules.Event {
	return append([]rules.Event(nil), w.events...)
}

// Casualties counts deaths per faction and kills per unit over the match.
// Counts from an undone command are taken back; a redo counts them again.
type Casualties struct {
	*rules.BaseWatcher
	deaths  map[string]int
	kills   map[string]int
	revived map[string]int
	undo    ledger
}

// NewCasualties creates an empty casualty counter.
func NewCasualties() *Casualties {
	w := &Casualties{BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeMatch, "Casualties")}
	w.clear()
	return w
}

func (w *Casualties) clear() {
	w.deaths = make(map[string]int)
	w.kills = make(map[string]int)
	w.revived = make(map[string]int)
	w.undo = ledger{}
}

// Watch implements rules.Watcher.
func (w *Casualties) Watch(event rules.Event) {
	if w.undo.boundary(event) {
		return
	}
	switch event.Type {
	case rules.EventUnitDied:
		w.undo.add(w.deaths, event.Faction, 1)
		if event.SourceID != "" {
			w.undo.add(w.kills, event.SourceID, 1)
		}
		w.SetCondition(true)
	case rules.EventUnitRevived:
		w.revived[event.Faction]++
	}
}

// Reset clears every counter.
func (w *Casualties) Reset() {
	w.BaseWatcher.Reset()
	w.clear()
}

// Deaths returns how many units of the named faction died.
func (w *Casualties) Deaths(faction string) int { return w.deaths[faction] }

// Kills returns how many units the given unit finished off.
func (w *Casualties) Kills(unitID string) int { return w.kills[unitID] }

// Revivals returns how many units of the named faction came back.
func (w *Casualties) Revivals(faction string) int { return w.revived[faction] }

// DamageDealt sums damage per source unit within the current turn, minus
// whatever undone commands dealt.
type DamageDealt struct {
	*rules.BaseWatcher
	dealt map[string]int
	taken map[string]int
	undo  ledger
}

// NewDamageDealt creates a turn-scoped damage counter.
func NewDamageDealt() *DamageDealt {
	return &DamageDealt{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeTurn, "DamageDealt"),
		dealt:       make(map[string]int),
		taken:       make(map[string]int),
	}
}

// Watch implements rules.Watcher.
func (w *DamageDealt) Watch(event rules.Event) {
	if w.undo.boundary(event) {
		return
	}
	if event.Type != rules.EventUnitDamaged || event.Amount <= 0 {
		return
	}
	if event.SourceID != "" {
		w.undo.add(w.dealt, event.SourceID, event.Amount)
	}
	w.undo.add(w.taken, event.TargetID, event.Amount)
	w.SetCondition(true)
}

// Reset clears the turn's totals.
func (w *DamageDealt) Reset() {
	w.BaseWatcher.Reset()
	w.dealt = make(map[string]int)
	w.taken = make(map[string]int)
	w.undo = ledger{}
}

// Dealt returns the damage unitID dealt this turn.
func (w *DamageDealt) Dealt(unitID string) int { return w.dealt[unitID] }

// Taken returns the damage unitID took this turn.
func (w *DamageDealt) Taken(unitID string) int { return w.taken[unitID] }

// ledger remembers which counts each command of the current turn added, so
// an undo can take them back. Counts added outside a command (terrain
// upkeep, battlefield events) are dropped from it when a turn starts or ends.
type ledger struct {
	pending []tally
	done    [][]tally
}

type tally struct {
	counts map[string]int
	key    string
	n      int
}

func (l *ledger) add(counts map[string]int, key string, n int) {
	counts[key] += n
	l.pending = append(l.pending, tally{counts: counts, key: key, n: n})
}

// boundary handles the history and turn events. It reports whether event
// was one of them.
func (l *ledger) boundary(event rules.Event) bool {
	switch event.Type {
	case rules.EventCommandExecuted, rules.EventCommandRedone:
		l.done = append(l.done, l.pending)
		l.pending = nil
	case rules.EventCommandUndone:
		if n := len(l.done); n > 0 {
			for _, t := range l.done[n-1] {
				if t.counts[t.key] -= t.n; t.counts[t.key] <= 0 {
					delete(t.counts, t.key)
				}
			}
			l.done = l.done[:n-1]
		}
		l.pending = nil
	case rules.EventTurnStarted, rules.EventTurnEnded:
		l.pending = nil
		l.done = nil
	default:
		return false
	}
	return true
}

// Summary is a serializable view of the match statistics.
type Summary struct {
	Deaths         map[string]int `json:"deaths"`
	Revivals       map[string]int `json:"revivals,omitempty"`
	Kills          map[string]int `json:"kills,omitempty"`
	DamageThisTurn map[string]int `json:"damage_this_turn,omitempty"`
	TopKiller      string         `json:"top_killer,omitempty"`
	EventsRecorded int            `json:"events_recorded"`
}

// Set groups the standard watchers of a match.
type Set struct {
	Registry   *rules.WatcherRegistry
	Log        *EventLog
	Casualties *Casualties
	Damage     *DamageDealt
}

// NewSet builds the standard watchers and registers them.
func NewSet(logger *zap.Logger) *Set {
	s := &Set{
		Registry:   rules.NewWatcherRegistry(),
		Log:        NewEventLog(logger, DefaultLogCapacity),
		Casualties: NewCasualties(),
		Damage:     NewDamageDealt(),
	}
	s.Registry.Add(s.Log)
	s.Registry.Add(s.Casualties)
	s.Registry.Add(s.Damage)
	return s
}

// Attach subscribes every watcher of the set to bus.
func (s *Set) Attach(bus *rules.EventBus) int {
	return s.Registry.Attach(bus)
}

// Summary snapshots the counters.
func (s *Set) Summary() Summary {
	out := Summary{
		Deaths:         copyCounts(s.Casualties.deaths),
		Revivals:       copyCounts(s.Casualties.revived),
		Kills:          copyCounts(s.Casualties.kills),
		DamageThisTurn: copyCounts(s.Damage.dealt),
		EventsRecorded: len(s.Log.events),
	}
	best := 0
	ids := make([]string, 0, len(out.Kills))
	for id := range out.Kills {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if out.Kills[id] > best {
			best, out.TopKiller = out.Kills[id], id
		}
	}
	return out
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
