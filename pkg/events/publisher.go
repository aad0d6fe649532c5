// Package events is a small in-process pub/sub used to observe session and
// search lifecycle. Delivery is observational only: nothing on the wire-output
// path waits for a handler.
package events

import "sync"

// EventType represents the type of event
type EventType string

// Define event types
const (
	EventSessionStarted    EventType = "SESSION_STARTED"
	EventSessionEnded      EventType = "SESSION_ENDED"
	EventSearchStarted     EventType = "SEARCH_STARTED"
	EventBestMove          EventType = "BEST_MOVE"
	EventParseError        EventType = "PARSE_ERROR"
	EventProtocolViolation EventType = "PROTOCOL_VIOLATION"
	EventOptionApplied     EventType = "OPTION_APPLIED"
	EventOptionRejected    EventType = "OPTION_REJECTED"
	EventEngineFault       EventType = "ENGINE_FAULT"
	EventConnectionClosed  EventType = "CONNECTION_CLOSED"
)

// Event represents an event in the system
type Event struct {
	Type      EventType
	SessionID string // Optional, can be empty for non-session events
	Payload   interface{}
}

// Handler is a function that processes events
type Handler func(event Event)

// Publisher is the central event publisher
type Publisher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Handler
}

// NewPublisher creates a new event publisher
func NewPublisher() *Publisher {
	return &Publisher{
		subscribers: make(map[EventType][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (p *Publisher) Subscribe(eventType EventType, handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers[eventType] = append(p.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for all event types
func (p *Publisher) SubscribeAll(handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Special event type for "all events"
	p.subscribers["*"] = append(p.subscribers["*"], handler)
}

// Publish broadcasts an event to its subscribers and to "all events" handlers
func (p *Publisher) Publish(event Event) {
	p.mu.RLock()
	handlers := p.subscribers[event.Type]
	allHandlers := p.subscribers["*"]
	p.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
	for _, handler := range allHandlers {
		handler(event)
	}
}
