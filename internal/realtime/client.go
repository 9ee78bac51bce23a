package realtime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are filtered by the CORS middleware
	},
}

// inbound is what dashboards may send; only "ping" is answered.
type inbound struct {
	Event string `json:"event"`
}

// Client represents a single WebSocket connection watching one seminar (or all).
type Client struct {
	ID        string
	SeminarID string
	hub       *Hub
	conn      *websocket.Conn
	send      chan Event
	logger    *zap.Logger
}

// NewClient creates a client that is not yet attached to a connection.
func NewClient(hub *Hub, seminarID string, logger *zap.Logger) *Client {
	if seminarID == "" {
		seminarID = AllSeminars
	}
	return &Client{
		ID:        uuid.New().String(),
		SeminarID: seminarID,
		hub:       hub,
		send:      make(chan Event, 256),
		logger:    logger,
	}
}

// ServeWs handles GET /ws?seminar_id=... and runs the client loop.
// Without seminar_id the client receives events for every seminar.
func ServeWs(hub *Hub, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		client := NewClient(hub, c.Query("seminar_id"), logger)
		client.conn = conn
		hub.Register(client)
		go client.writePump()
		client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait))
		return nil
	})

	for {
		var msg inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait))
		if msg.Event == "ping" {
			select {
			case c.send <- Event{SeminarID: c.SeminarID, Event: "pong", At: time.Now().Unix()}:
			default:
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
