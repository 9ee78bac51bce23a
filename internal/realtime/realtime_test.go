package realtime

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev := <-c.send:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case ev := <-c.send:
		t.Fatalf("unexpected event %q", ev.Event)
	default:
	}
}

func TestHub_PublishRoutesToRoomAndAll(t *testing.T) {
	hub := NewHub(nil, nil)
	s1 := NewClient(hub, "seminar-1", nil)
	s2 := NewClient(hub, "seminar-2", nil)
	all := NewClient(hub, "", nil)
	for _, c := range []*Client{s1, s2, all} {
		hub.Register(c)
	}
	assert.Equal(t, AllSeminars, all.SeminarID)
	assert.Equal(t, 1, hub.ClientCount("seminar-1"))

	hub.Publish("seminar-1", "attendee.registered", map[string]string{"id": "attendee-3"})

	ev := receive(t, s1)
	assert.Equal(t, "attendee.registered", ev.Event)
	assert.Equal(t, "seminar-1", ev.SeminarID)
	assert.JSONEq(t, `{"id":"attendee-3"}`, string(ev.Data))
	assert.Equal(t, "attendee.registered", receive(t, all).Event)
	assertNothing(t, s2)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub(nil, nil)
	c := NewClient(hub, "seminar-1", nil)
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)

	_, ok := <-c.send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount("seminar-1"))

	hub.Publish("seminar-1", "seminar.created", nil)
}

type fakeBus struct {
	err     error
	handler func(Event)
	sent    []Event
}

func (b *fakeBus) PublishEvent(ev Event) error {
	if b.err != nil {
		return b.err
	}
	b.sent = append(b.sent, ev)
	b.handler(ev)
	return nil
}

func (b *fakeBus) Subscribe(handler func(Event)) (func(), error) {
	b.handler = handler
	return func() {}, nil
}

func TestHub_BusDeliversOnce(t *testing.T) {
	bus := &fakeBus{}
	hub := NewHub(nil, bus)
	require.NoError(t, hub.Start())
	c := NewClient(hub, "seminar-1", nil)
	hub.Register(c)

	hub.Publish("seminar-1", "certificates.sent", map[string]int{"sent": 2})
	require.Len(t, bus.sent, 1)
	assert.Equal(t, "certificates.sent", receive(t, c).Event)
	assertNothing(t, c)

	bus.err = errors.New("redis down")
	hub.Publish("seminar-1", "attendee.status_changed", nil)
	assert.Equal(t, "attendee.status_changed", receive(t, c).Event)
}

func TestRedisPubSub_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	bus := NewRedisPubSub(rdb, nil)
	got := make(chan Event, 1)
	cancel, err := bus.Subscribe(func(ev Event) { got <- ev })
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, bus.PublishEvent(Event{SeminarID: "seminar-2", Event: "seminar.created", Data: json.RawMessage(`{"ok":true}`)}))

	select {
	case ev := <-got:
		assert.Equal(t, "seminar-2", ev.SeminarID)
		assert.JSONEq(t, `{"ok":true}`, string(ev.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered through redis")
	}
}

func TestServeWs(t *testing.T) {
	hub := NewHub(nil, nil)
	r := gin.New()
	r.GET("/ws", ServeWs(hub, nil))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?seminar_id=seminar-1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount("seminar-1") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]string{"event": "ping"}))
	var pong Event
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong.Event)

	hub.Publish("seminar-1", "attendee.registered", map[string]string{"full_name": "Ana Santos"})
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "attendee.registered", ev.Event)
	assert.Contains(t, string(ev.Data), "Ana Santos")
}
