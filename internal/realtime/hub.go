// Package realtime pushes gateway events to connected admin dashboards over WebSocket.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30 * time.Second
	PongWait     = 60 * time.Second

	// AllSeminars is the room that receives events for every seminar.
	AllSeminars = "*"
)

// Event is one change notification routed to a seminar room.
type Event struct {
	SeminarID string          `json:"seminar_id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
	At        int64           `json:"at"`
}

// Bus fans events out across server instances.
type Bus interface {
	PublishEvent(ev Event) error
	Subscribe(handler func(Event)) (cancel func(), err error)
}

// Hub maintains seminar_id -> set of connections and broadcasts events.
// With a Bus configured, events go through the bus and come back via the
// subscription, so every instance delivers each event exactly once.
type Hub struct {
	rooms  map[string]map[string]*Client
	mu     sync.RWMutex
	logger *zap.Logger
	bus    Bus
	cancel func()
}

// NewHub creates a new WebSocket hub. bus may be nil for a single instance.
func NewHub(logger *zap.Logger, bus Bus) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:  make(map[string]map[string]*Client),
		logger: logger,
		bus:    bus,
	}
}

// Start subscribes to the bus, if any.
func (h *Hub) Start() error {
	if h.bus == nil {
		return nil
	}
	cancel, err := h.bus.Subscribe(h.deliver)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()
	return nil
}

// Close stops the bus subscription and disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	for id, room := range h.rooms {
		for _, c := range room {
			close(c.send)
		}
		delete(h.rooms, id)
	}
}

// Register adds a client to its seminar room.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.SeminarID] == nil {
		h.rooms[c.SeminarID] = make(map[string]*Client)
	}
	h.rooms[c.SeminarID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined", zap.String("client_id", c.ID), zap.String("seminar_id", c.SeminarID))
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if room, ok := h.rooms[c.SeminarID]; ok {
		if _, ok := room[c.ID]; ok {
			delete(room, c.ID)
			close(c.send)
		}
		if len(room) == 0 {
			delete(h.rooms, c.SeminarID)
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left", zap.String("client_id", c.ID), zap.String("seminar_id", c.SeminarID))
}

// ClientCount returns the number of clients watching a seminar room.
func (h *Hub) ClientCount(seminarID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[seminarID])
}

// Publish sends an event to the seminar's room and to the all-seminars room.
func (h *Hub) Publish(seminarID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("marshal realtime event", zap.String("event", event), zap.Error(err))
		return
	}
	ev := Event{SeminarID: seminarID, Event: event, Data: data, At: time.Now().Unix()}
	if h.bus != nil {
		err := h.bus.PublishEvent(ev)
		if err == nil {
			return
		}
		h.logger.Warn("bus publish failed, delivering locally", zap.Error(err))
	}
	h.deliver(ev)
}

func (h *Hub) deliver(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rooms := []string{ev.SeminarID}
	if ev.SeminarID != AllSeminars {
		rooms = append(rooms, AllSeminars)
	}
	for _, room := range rooms {
		for _, c := range h.rooms[room] {
			select {
			case c.send <- ev:
			default:
				h.logger.Debug("client buffer full, dropping event", zap.String("client_id", c.ID))
			}
		}
	}
}
