package rules

import (
	"sync"
	"time"

	"github.com/elementarclash/clash-server-go/internal/game/grid"
)

// EventType indicates the category of a match event.
type EventType string

const (
	// Match flow
	EventGameStarted  EventType = "GAME_STARTED"
	EventTurnStarted  EventType = "TURN_STARTED"
	EventTurnEnded    EventType = "TURN_ENDED"
	EventPhaseChanged EventType = "PHASE_CHANGED"
	EventGameOver     EventType = "GAME_OVER"

	// Unit events
	EventUnitMoved    EventType = "UNIT_MOVED"
	EventUnitAttacked EventType = "UNIT_ATTACKED"
	EventUnitDamaged  EventType = "UNIT_DAMAGED"
	EventUnitHealed   EventType = "UNIT_HEALED"
	EventUnitDied     EventType = "UNIT_DIED"
	EventUnitRevived  EventType = "UNIT_REVIVED"
	EventUnitStunned  EventType = "UNIT_STUNNED"
	EventUnitPushed   EventType = "UNIT_PUSHED"
	EventAbilityUsed  EventType = "ABILITY_USED"

	// Status events
	EventStatusApplied EventType = "STATUS_APPLIED"
	EventStatusExpired EventType = "STATUS_EXPIRED"

	// Board events
	EventTerrainChanged   EventType = "TERRAIN_CHANGED"
	EventBattlefieldEvent EventType = "BATTLEFIELD_EVENT"

	// History
	EventCommandExecuted EventType = "COMMAND_EXECUTED"
	EventCommandUndone   EventType = "COMMAND_UNDONE"
	EventCommandRedone   EventType = "COMMAND_REDONE"
)

// Event is a notification published after the engine changed state.
// Listeners observe events; they never influence decisions.
type Event struct {
	Type        EventType         `json:"type"`
	MatchID     string            `json:"match_id,omitempty"`
	Round       int               `json:"round"`
	Faction     string            `json:"faction,omitempty"`   // acting or affected faction
	SourceID    string            `json:"source_id,omitempty"` // acting unit
	TargetID    string            `json:"target_id,omitempty"` // affected unit
	Targets     []string          `json:"targets,omitempty"`
	Amount      int               `json:"amount,omitempty"` // damage, healing, turns
	Flag        bool              `json:"flag,omitempty"`
	From        *grid.Position    `json:"from,omitempty"`
	To          *grid.Position    `json:"to,omitempty"`
	Data        string            `json:"data,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Description string            `json:"description,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewEvent creates an event with common fields populated.
func NewEvent(eventType EventType, sourceID, targetID string) Event {
	return Event{
		Type:      eventType,
		SourceID:  sourceID,
		TargetID:  targetID,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// NewEventWithAmount creates an event carrying a numeric value.
func NewEventWithAmount(eventType EventType, sourceID, targetID string, amount int) Event {
	evt := NewEvent(eventType, sourceID, targetID)
	evt.Amount = amount
	return evt
}

// At returns a copy of the event located on pos.
func (e Event) At(pos grid.Position) Event {
	e.To = &pos
	return e
}

// Between returns a copy of the event describing a move from one cell to another.
func (e Event) Between(from, to grid.Position) Event {
	e.From = &from
	e.To = &to
	return e
}

// WithDescription returns a copy of the event with a human readable summary.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type subscription struct {
	handle    int
	eventType EventType // empty for all events
	callback  Listener
}

// EventBus is a synchronous publish/subscribe hub. Listeners are invoked in
// subscription order.
type EventBus struct {
	mu         sync.RWMutex
	subs       []subscription
	nextHandle int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	return bus.add("", listener)
}

// SubscribeTyped registers a listener for a single event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) int {
	if eventType == "" {
		return -1
	}
	return bus.add(eventType, listener)
}

func (bus *EventBus) add(eventType EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.subs = append(bus.subs, subscription{handle: handle, eventType: eventType, callback: listener})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, s := range bus.subs {
		if s.handle == handle {
			bus.subs = append(bus.subs[:i:i], bus.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every matching listener synchronously.
// Listeners may subscribe or unsubscribe from inside a callback.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := bus.subs
	bus.mu.RUnlock()

	for _, s := range subs {
		if s.eventType == "" || s.eventType == event.Type {
			s.callback(event)
		}
	}
}

// PublishBatch publishes events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}
