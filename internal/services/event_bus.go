package services

import (
	"sync"
)

// EventType represents the type of event
type EventType string

const (
	EventBookUpdate    EventType = "book_update"
	EventMarkPrice     EventType = "mark_price"
	EventRiskAlert     EventType = "risk_alert"
	EventOrderAccepted EventType = "order_accepted"
	EventOrderRejected EventType = "order_rejected"
	EventAccountUpdate EventType = "account_update"
)

// Event represents a system event
type Event struct {
	Type EventType   `json:"type"`
	Coin string      `json:"coin,omitempty"`
	Data interface{} `json:"data"`
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers map[EventType][]chan Event
	mu          sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
	}
}

// Subscribe creates a subscription to events of a specific type
func (eb *EventBus) Subscribe(eventType EventType, bufferSize int) <-chan Event {
	ch := make(chan Event, bufferSize)

	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all event types
func (eb *EventBus) SubscribeAll(bufferSize int) <-chan Event {
	ch := make(chan Event, bufferSize)

	eb.mu.Lock()
	defer eb.mu.Unlock()

	allEventTypes := []EventType{
		EventBookUpdate,
		EventMarkPrice,
		EventRiskAlert,
		EventOrderAccepted,
		EventOrderRejected,
		EventAccountUpdate,
	}

	for _, eventType := range allEventTypes {
		eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	}

	return ch
}

// Publish publishes an event to all subscribers (non-blocking)
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	subscribers := eb.subscribers[event.Type]
	eb.mu.RUnlock()

	for _, ch := range subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip this subscriber
		}
	}
}

// Unsubscribe removes a subscription
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subscribers := eb.subscribers[eventType]
	for i, subscriber := range subscribers {
		if subscriber == ch {
			eb.subscribers[eventType] = append(subscribers[:i], subscribers[i+1:]...)
			close(subscriber)
			break
		}
	}
}

// Close closes all subscriber channels. A channel registered under several
// event types via SubscribeAll is closed once.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	closed := make(map[chan Event]struct{})
	for eventType, subscribers := range eb.subscribers {
		for _, ch := range subscribers {
			if _, done := closed[ch]; done {
				continue
			}
			closed[ch] = struct{}{}
			close(ch)
		}
		delete(eb.subscribers, eventType)
	}
}
