package rules

import (
	"sort"
	"sync"
)

// WatcherScope decides when a watcher's state is cleared.
type WatcherScope int

const (
	// WatcherScopeMatch accumulates for the whole match.
	WatcherScopeMatch WatcherScope = iota
	// WatcherScopeTurn is reset whenever a turn ends.
	WatcherScopeTurn
)

func (ws WatcherScope) String() string {
	switch ws {
	case WatcherScopeMatch:
		return "MATCH"
	case WatcherScopeTurn:
		return "TURN"
	default:
		return "UNKNOWN"
	}
}

// Watcher observes match events and tracks a condition. Watchers never
// change the match.
type Watcher interface {
	Watch(event Event)
	Reset()
	ConditionMet() bool
	Scope() WatcherScope
	Key() string
}

// BaseWatcher carries the bookkeeping shared by every watcher.
type BaseWatcher struct {
	scope     WatcherScope
	key       string
	condition bool
}

// NewBaseWatcher creates a base watcher with the given scope and key.
func NewBaseWatcher(scope WatcherScope, key string) *BaseWatcher {
	return &BaseWatcher{scope: scope, key: key}
}

func (bw *BaseWatcher) Scope() WatcherScope { return bw.scope }
func (bw *BaseWatcher) Key() string { return bw.key }
func (bw *BaseWatcher) ConditionMet() bool { return bw.condition }
func (bw *BaseWatcher) SetCondition(condition bool) { bw.condition = condition }

// Reset clears the condition.
func (bw *BaseWatcher) Reset() { bw.condition = false }

// WatcherRegistry fans events out to registered watchers and resets the
// turn-scoped ones when a turn ends.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
}

// NewWatcherRegistry creates an empty registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{watchers: make(map[string]Watcher)}
}

// Add registers w under its key, replacing any watcher with the same key.
func (wr *WatcherRegistry) Add(w Watcher) {
	if w == nil {
		return
	}
	wr.mu.Lock()
	defer wr.mu.Unlock()
	wr.watchers[w.Key()] = w
}

// Remove unregisters the watcher with the given key.
func (wr *WatcherRegistry) Remove(key string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	delete(wr.watchers, key)
}

// Get returns the watcher registered under key.
func (wr *WatcherRegistry) Get(key string) (Watcher, bool) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	w, ok := wr.watchers[key]
	return w, ok
}

// ByScope returns the watchers of one scope ordered by key.
func (wr *WatcherRegistry) ByScope(scope WatcherScope) []Watcher {
	var out []Watcher
	for _, w := range wr.sorted() {
		if w.Scope() == scope {
			out = append(out, w)
		}
	}
	return out
}

// ResetScope resets every watcher of one scope.
func (wr *WatcherRegistry) ResetScope(scope WatcherScope) {
	for _, w := range wr.ByScope(scope) {
		w.Reset()
	}
}

// Notify delivers event to every watcher in key order. A TurnEnded event
// is delivered first and then clears the turn-scoped watchers.
func (wr *WatcherRegistry) Notify(event Event) {
	for _, w := range wr.sorted() {
		w.Watch(event)
	}
	if event.Type == EventTurnEnded {
		wr.ResetScope(WatcherScopeTurn)
	}
}

// Attach subscribes the registry to bus and returns the subscription handle.
func (wr *WatcherRegistry) Attach(bus *EventBus) int {
	return bus.Subscribe(wr.Notify)
}

func (wr *WatcherRegistry) sorted() []Watcher {
	wr.mu.RLock()
	out := make([]Watcher, 0, len(wr.watchers))
	for _, w := range wr.watchers {
		out = append(out, w)
	}
	wr.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}
