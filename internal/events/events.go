package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventSessionStarted   = "session_started"
	EventSessionEnded     = "session_ended"
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
	EventImagesUploaded   = "images_uploaded"
	EventImagesDeleted    = "images_deleted"
	EventTurfSaved        = "turf_saved"
	EventTurfDeleted      = "turf_deleted"
)

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID   int64           `json:"booking_id"`
	TurfID      int64           `json:"turf_id,omitempty"`
	TurfName    string          `json:"turf_name,omitempty"`
	Date        string          `json:"date"`
	Slots       []string        `json:"slots"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	UserID      int64           `json:"user_id,omitempty"`
}

// TurfEventPayload covers turf CRUD and gallery changes.
type TurfEventPayload struct {
	TurfID    int64    `json:"turf_id"`
	TurfName  string   `json:"turf_name,omitempty"`
	ImageURLs []string `json:"image_urls,omitempty"`
	Count     int      `json:"count,omitempty"`
}

type SessionEventPayload struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	Phone  string `json:"phone,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the JSON payload into out.
func (e *Event) Decode(out interface{}) error {
	return json.Unmarshal(e.Payload, out)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	onError     func(event *Event, err error)
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// OnError sets a hook for handler failures; by default they are ignored.
func (b *EventBus) OnError(fn func(event *Event, err error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onError = fn
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	onError := b.onError
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil && onError != nil {
			onError(event, err)
		}
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
