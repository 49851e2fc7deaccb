package events

import (
	"encoding/json"
	"sync"
	"time"

	"fleetdesk/internal/models"
)

const (
	EventReservationCreated = "reservation_created"
	EventReservationDeleted = "reservation_deleted"
	EventRecordCompleted    = "record_completed"
	EventAlcoholDetected    = "alcohol_detected"
)

// ReservationEventPayload describes the minimal reservation snapshot for
// event consumers.
type ReservationEventPayload struct {
	ReservationID int64            `json:"reservation_id"`
	VehicleID     int64            `json:"vehicle_id"`
	VehicleNumber string           `json:"vehicle_number,omitempty"`
	UserName      string           `json:"user_name"`
	Department    string           `json:"department,omitempty"`
	Date          models.Date      `json:"date"`
	StartTime     models.TimeOfDay `json:"start_time"`
	EndTime       models.TimeOfDay `json:"end_time"`
}

// RecordEventPayload describes a completed driving record.
type RecordEventPayload struct {
	VehicleID  int64       `json:"vehicle_id"`
	Driver     string      `json:"driver"`
	Date       models.Date `json:"date"`
	DistanceKm *int64      `json:"distance_km,omitempty"`
	Flagged    bool        `json:"flagged"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
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
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
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
