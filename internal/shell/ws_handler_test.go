package shell

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/subject-quiz/internal/quiz"
	httperrors "github.com/gokatarajesh/subject-quiz/pkg/http/errors"
	ws "github.com/gokatarajesh/subject-quiz/pkg/http/ws"
)

func newWSTestServer(t *testing.T) (*httptest.Server, *Controller) {
	t.Helper()
	logger := zerolog.Nop()
	hub := ws.NewHub(logger)
	ctrl := NewController(testProvider(t), quiz.NewPreparer(3, 25), ControllerOptions{
		TotalSeconds: 300,
		TickInterval: time.Hour,
	}, NewHubListener(hub, logger), NewMetrics(prometheus.NewRegistry()), logger)
	t.Cleanup(ctrl.Close)

	srv := httptest.NewServer(http.HandlerFunc(NewWSHandler(ctrl, hub, logger).HandleWebSocket))
	t.Cleanup(srv.Close)
	return srv, ctrl
}

func dialSessionWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "websocket dial failed")
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	msg, err := ws.NewMessage(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

// waitForType reads until a message of the wanted type arrives, skipping everything else.
func waitForType(t *testing.T, conn *websocket.Conn, want string) ws.Message {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var msg ws.Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", want)
		if msg.Type == want {
			return msg
		}
	}
}

func TestWSSessionFlow(t *testing.T) {
	srv, _ := newWSTestServer(t)
	conn := dialSessionWS(t, srv)

	theme := waitForType(t, conn, ws.TypeThemeChanged)
	assert.JSONEq(t, `{"theme":"light"}`, string(theme.Payload))

	sendWS(t, conn, ws.TypeStartSession, ws.StartSessionPayload{Subject: "letters"})
	var started quiz.View
	require.NoError(t, json.Unmarshal(waitForType(t, conn, ws.TypeSessionState).Payload, &started))
	assert.Equal(t, quiz.StatusActive, started.Status)
	assert.Len(t, started.Questions, 3)

	sendWS(t, conn, ws.TypeSelectAnswer, ws.SelectAnswerPayload{SessionID: started.ID.String(), Question: 1, Option: 0})
	var selected quiz.View
	require.NoError(t, json.Unmarshal(waitForType(t, conn, ws.TypeSessionState).Payload, &selected))
	assert.Equal(t, map[int]int{1: 0}, selected.Answers)

	sendWS(t, conn, ws.TypeFinish, ws.SessionRefPayload{SessionID: started.ID.String()})
	var finished quiz.View
	require.NoError(t, json.Unmarshal(waitForType(t, conn, ws.TypeSessionFinished).Payload, &finished))
	assert.Equal(t, quiz.ReasonSubmitted, finished.Reason)
	require.NotNil(t, finished.Result)
	assert.Equal(t, 3, finished.Result.Total)

	sendWS(t, conn, ws.TypeDiscard, nil)
	var ref ws.SessionRefPayload
	require.NoError(t, json.Unmarshal(waitForType(t, conn, ws.TypeSessionDiscarded).Payload, &ref))
	assert.Equal(t, started.ID.String(), ref.SessionID)
}

func TestWSSnapshotOnConnect(t *testing.T) {
	srv, ctrl := newWSTestServer(t)

	v, err := ctrl.Start(t.Context(), "letters")
	require.NoError(t, err)

	conn := dialSessionWS(t, srv)
	var got quiz.View
	require.NoError(t, json.Unmarshal(waitForType(t, conn, ws.TypeSessionState).Payload, &got))
	assert.Equal(t, v.ID, got.ID)
}

func TestWSErrors(t *testing.T) {
	srv, _ := newWSTestServer(t)
	conn := dialSessionWS(t, srv)

	require.NoError(t, conn.WriteJSON(ws.Message{Type: "bogus", RequestID: "r1"}))
	msg := waitForType(t, conn, ws.TypeError)
	assert.Equal(t, "r1", msg.RequestID)
	var e ws.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &e))
	assert.Equal(t, httperrors.ErrCodeUnknownMessageType, e.Code)

	sendWS(t, conn, ws.TypeStartSession, ws.StartSessionPayload{Subject: "missing"})
	require.NoError(t, json.Unmarshal(waitForType(t, conn, ws.TypeError).Payload, &e))
	assert.Equal(t, httperrors.ErrCodeSubjectNotFound, e.Code)

	sendWS(t, conn, ws.TypeFinish, ws.SessionRefPayload{SessionID: "nope"})
	require.NoError(t, json.Unmarshal(waitForType(t, conn, ws.TypeError).Payload, &e))
	assert.Equal(t, httperrors.ErrCodeInvalidID, e.Code)
}

func TestWSThemeBroadcast(t *testing.T) {
	srv, _ := newWSTestServer(t)
	a := dialSessionWS(t, srv)
	b := dialSessionWS(t, srv)
	waitForType(t, a, ws.TypeThemeChanged)
	waitForType(t, b, ws.TypeThemeChanged)

	sendWS(t, a, ws.TypeToggleTheme, nil)
	assert.JSONEq(t, `{"theme":"dark"}`, string(waitForType(t, a, ws.TypeThemeChanged).Payload))
	assert.JSONEq(t, `{"theme":"dark"}`, string(waitForType(t, b, ws.TypeThemeChanged).Payload))
}
