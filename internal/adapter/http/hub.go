package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"fundraiser/internal/core/domain"
)

const clientBuffer = 64

// Hub fans committed notifications out to websocket subscribers. A client
// whose buffer is full is dropped instead of stalling the relay.
type Hub struct {
	denom  domain.Denomination
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*subscriber]struct{}
}

type subscriber struct {
	send chan []byte
}

// NewHub returns a hub with no subscribers.
func NewHub(denom domain.Denomination, logger *slog.Logger) *Hub {
	return &Hub{denom: denom, logger: logger, clients: make(map[*subscriber]struct{})}
}

// Publish implements port.EventPublisher. It never fails: slow subscribers
// lose their connection, not the relay its progress.
func (h *Hub) Publish(_ context.Context, events []domain.Event) error {
	msgs := make([][]byte, 0, len(events))
	for _, e := range events {
		b, err := json.Marshal(newEventResponse(e, h.denom))
		if err != nil {
			return err
		}
		msgs = append(msgs, b)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		for _, m := range msgs {
			select {
			case c.send <- m:
			default:
				h.logger.Warn("dropping slow event subscriber")
				delete(h.clients, c)
				close(c.send)
			}
			if _, ok := h.clients[c]; !ok {
				break
			}
		}
	}
	return nil
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) subscribe() *subscriber {
	c := &subscriber{send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unsubscribe(c *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}
