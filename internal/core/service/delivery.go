package service

import (
	"sync"

	"github.com/clientmax/agency-crm/internal/core/domain"
)

// DeliveryEvent is one notification pushed to a delivery channel.
type DeliveryEvent struct {
	Channel      string              `json:"channel"`
	Notification domain.Notification `json:"notification"`
}

const hubBuffer = 32

// Hub fans delivery events out to subscribers (the dashboard's event
// stream). Slow subscribers drop events rather than block delivery.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan DeliveryEvent
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan DeliveryEvent)}
}

// Subscribe returns a channel of delivery events and an unsubscribe handle.
func (h *Hub) Subscribe() (<-chan DeliveryEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan DeliveryEvent, hubBuffer)
	h.subs[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
}

// Publish delivers the event to every subscriber, non-blocking.
func (h *Hub) Publish(ev DeliveryEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// HubDeliverer adapts one delivery channel onto the hub.
type HubDeliverer struct {
	channel string
	hub     *Hub
}

func NewHubDeliverer(channel string, hub *Hub) *HubDeliverer {
	return &HubDeliverer{channel: channel, hub: hub}
}

func (d *HubDeliverer) Channel() string { return d.channel }

func (d *HubDeliverer) Deliver(n domain.Notification) {
	d.hub.Publish(DeliveryEvent{Channel: d.channel, Notification: n})
}
