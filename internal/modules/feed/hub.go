package feed

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"roombooking/internal/domain"
)

const sendBuffer = 64

type client struct {
	userID int64
	send   chan []byte
}

// Hub fans booking events out to every connected staff client.
type Hub struct {
	clients map[*client]struct{}
	mutex   sync.RWMutex
	log     logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log.WithField("module", "feed"),
	}
}

func (h *Hub) register(userID int64) *client {
	c := &client{userID: userID, send: make(chan []byte, sendBuffer)}
	h.mutex.Lock()
	h.clients[c] = struct{}{}
	h.mutex.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// PublishBookingEvent never blocks: a client whose buffer is full is dropped.
func (h *Hub) PublishBookingEvent(_ context.Context, ev domain.BookingEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.WithError(err).Error("encode booking event")
		return
	}

	var slow []*client
	h.mutex.RLock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mutex.RUnlock()

	for _, c := range slow {
		h.log.WithField("user_id", c.userID).Warn("feed client too slow, disconnecting")
		h.unregister(c)
	}
}

func (h *Hub) GetOnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}
