package kds

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/qr-restaurant/utils"
)

// AllRestaurants subscribes to every restaurant's events (admin dashboards).
const AllRestaurants = "*"

const subscriberBuffer = 64

// Subscription is one connected client. Events arrive on C until the
// subscription is closed by the hub or by Unsubscribe.
type Subscription struct {
	C            <-chan Event
	ch           chan Event
	restaurantID string
	role         string
	closeOnce    sync.Once
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

// Hub keeps the live subscribers of every restaurant.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(restaurantID, role string) *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, restaurantID: restaurantID, role: role}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[restaurantID] == nil {
		h.clients[restaurantID] = make(map[*Subscription]struct{})
	}
	h.clients[restaurantID][sub] = struct{}{}
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	h.remove(sub)
	h.mu.Unlock()
}

// remove must be called with h.mu held.
func (h *Hub) remove(sub *Subscription) {
	if set, ok := h.clients[sub.restaurantID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.clients, sub.restaurantID)
		}
	}
	sub.close()
}

// Count returns the number of subscribers for a restaurant.
func (h *Hub) Count(restaurantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[restaurantID])
}

// Publish never blocks: a subscriber whose buffer is full is disconnected
// and expected to fall back to polling.
func (h *Hub) Publish(_ context.Context, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, key := range []string{event.RestaurantID, AllRestaurants} {
		for sub := range h.clients[key] {
			select {
			case sub.ch <- event:
			default:
				utils.InfoLogger.WithFields(logrus.Fields{
					"restaurant_id": sub.restaurantID,
					"role":          sub.role,
				}).Warn("dropping slow websocket subscriber")
				h.remove(sub)
			}
		}
	}
}
