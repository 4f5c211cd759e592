package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newHubServer echoes every received message back to all connections.
func newHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConnection(raw, zerolog.Nop())
		hub.Register(conn)
		go conn.WritePump()
		conn.ReadPump(func(msg Message) error {
			return hub.BroadcastAll(msg)
		})
		hub.Unregister(conn.ID())
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastAll(t *testing.T) {
	hub, srv := newHubServer(t)
	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 5*time.Millisecond)

	msg, err := NewMessage(TypeThemeChanged, ThemePayload{Theme: "dark"})
	require.NoError(t, err)
	require.NoError(t, a.WriteJSON(msg))

	for _, c := range []*websocket.Conn{a, b} {
		require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got Message
		require.NoError(t, c.ReadJSON(&got))
		assert.Equal(t, TypeThemeChanged, got.Type)
		assert.JSONEq(t, `{"theme":"dark"}`, string(got.Payload))
	}
}

func TestHubUnregisterOnDisconnect(t *testing.T) {
	hub, srv := newHubServer(t)
	c := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHubSendToUnknown(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	assert.ErrorIs(t, hub.SendTo(uuid.New(), Message{Type: TypeTick}), ErrConnectionNotFound)
	assert.NoError(t, hub.BroadcastAll(Message{Type: TypeTick}))
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(TypeDiscard, nil)
	require.NoError(t, err)
	assert.Equal(t, TypeDiscard, msg.Type)
	assert.Empty(t, msg.Payload)

	msg, err = NewMessage(TypeSelectAnswer, SelectAnswerPayload{SessionID: "s", Question: 2, Option: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"s","question":2,"option":1}`, string(msg.Payload))
}
