package kds

import (
	"context"
	"time"
)

// Event types
const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
	EventOrderPaid          = "order_paid"
	EventWaiterCalled       = "waiter_called"
	EventWaiterCallResolved = "waiter_call_resolved"
)

type Event struct {
	Type         string      `json:"event"`
	RestaurantID string      `json:"restaurant_id"`
	Data         interface{} `json:"data"`
	At           time.Time   `json:"at"`
}

func NewEvent(eventType, restaurantID string, data interface{}) Event {
	return Event{Type: eventType, RestaurantID: restaurantID, Data: data, At: time.Now().UTC()}
}

// Publisher delivers events to whoever is listening. Publishing is best
// effort: a failed delivery never fails the request that caused it.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Fanout publishes every event to each of its publishers in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(ctx, event)
		}
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
