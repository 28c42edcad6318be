package events

import (
	"sync"
	"time"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventSignalEvaluated       EventType = "SIGNAL_EVALUATED"
	EventSignalRejected        EventType = "SIGNAL_REJECTED"
	EventOutcomeReported       EventType = "OUTCOME_REPORTED"
	EventOptimizationCompleted EventType = "OPTIMIZATION_COMPLETED"
	EventSessionReset          EventType = "SESSION_RESET"
	EventEmergencyStop         EventType = "EMERGENCY_STOP"
	EventError                 EventType = "ERROR"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscriber is a function that handles events
type Subscriber func(Event)

// EventBus manages event publishing and subscriptions
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber // Subscribers to all events
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]Subscriber),
		allSubs:     make([]Subscriber, 0),
	}
}

// Subscribe registers a subscriber for a specific event type
func (eb *EventBus) Subscribe(eventType EventType, subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
}

// SubscribeAll registers a subscriber for all events
func (eb *EventBus) SubscribeAll(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.allSubs = append(eb.allSubs, subscriber)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	// Set timestamp if not provided
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Notify specific subscribers
	if subs, ok := eb.subscribers[event.Type]; ok {
		for _, sub := range subs {
			go sub(event) // Run in goroutine to avoid blocking
		}
	}

	// Notify all-event subscribers
	for _, sub := range eb.allSubs {
		go sub(event)
	}
}

// PublishSignalEvaluated publishes a completed signal evaluation
func (eb *EventBus) PublishSignalEvaluated(id, symbol, direction, quality string, tradeScore, confidence float64) {
	eb.Publish(Event{
		Type: EventSignalEvaluated,
		Data: map[string]interface{}{
			"id":          id,
			"symbol":      symbol,
			"direction":   direction,
			"quality":     quality,
			"trade_score": tradeScore,
			"confidence":  confidence,
		},
	})
}

// PublishSignalRejected publishes a pre-flight rejection
func (eb *EventBus) PublishSignalRejected(id, symbol, code, reason string) {
	eb.Publish(Event{
		Type: EventSignalRejected,
		Data: map[string]interface{}{
			"id":     id,
			"symbol": symbol,
			"code":   code,
			"reason": reason,
		},
	})
}

// PublishOutcomeReported publishes a reported trade outcome
func (eb *EventBus) PublishOutcomeReported(signalID string, win bool, pnl float64, consecutiveLosses int) {
	eb.Publish(Event{
		Type: EventOutcomeReported,
		Data: map[string]interface{}{
			"signal_id":          signalID,
			"win":                win,
			"pnl":                pnl,
			"consecutive_losses": consecutiveLosses,
		},
	})
}

// PublishOptimizationCompleted publishes an optimizer run result
func (eb *EventBus) PublishOptimizationCompleted(evaluated int, scores map[string]float64) {
	data := map[string]interface{}{
		"evaluated": evaluated,
	}
	for name, score := range scores {
		data["score_"+name] = score
	}
	eb.Publish(Event{
		Type: EventOptimizationCompleted,
		Data: data,
	})
}

// PublishSessionReset publishes a daily session reset
func (eb *EventBus) PublishSessionReset() {
	eb.Publish(Event{
		Type: EventSessionReset,
		Data: map[string]interface{}{},
	})
}

// PublishEmergencyStop publishes an emergency stop
func (eb *EventBus) PublishEmergencyStop(reason string) {
	eb.Publish(Event{
		Type: EventEmergencyStop,
		Data: map[string]interface{}{
			"reason": reason,
		},
	})
}

// PublishError publishes an error event
func (eb *EventBus) PublishError(source, message string, err error) {
	data := map[string]interface{}{
		"source":  source,
		"message": message,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	eb.Publish(Event{
		Type: EventError,
		Data: data,
	})
}
