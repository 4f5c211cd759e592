package shell

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/subject-quiz/pkg/http/errors"
	ws "github.com/gokatarajesh/subject-quiz/pkg/http/ws"
)

// WSHandler serves /ws/session: it pushes controller events and accepts the same intents as the HTTP API.
type WSHandler struct {
	ctrl   *Controller
	hub    *ws.Hub
	logger zerolog.Logger
}

func NewWSHandler(ctrl *Controller, hub *ws.Hub, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		ctrl:   ctrl,
		hub:    hub,
		logger: logger.With().Str("component", "shell_ws").Logger(),
	}
}

// HandleWebSocket upgrades the request and blocks until the client disconnects.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	h.HandleConnection(conn)
}

// HandleConnection registers the connection, sends the current state and runs the read loop.
func (h *WSHandler) HandleConnection(conn *websocket.Conn) {
	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.Register(wsConn)
	go wsConn.WritePump()

	h.sendSnapshot(wsConn)

	// intents from the socket are not tied to the upgrade request's lifetime
	ctx := context.Background()
	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(ctx, wsConn, msg)
	})

	h.hub.Unregister(wsConn.ID())
}

func (h *WSHandler) sendSnapshot(conn *ws.Connection) {
	h.sendTo(conn.ID(), ws.TypeThemeChanged, ws.ThemePayload{Theme: string(h.ctrl.Theme())})

	view, err := h.ctrl.View()
	if err != nil {
		return
	}
	h.sendTo(conn.ID(), ws.TypeSessionState, view)
}

func (h *WSHandler) sendTo(connID uuid.UUID, msgType string, payload interface{}) {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		h.logger.Warn().Err(err).Str("type", msgType).Msg("failed to encode snapshot")
		return
	}
	if err := h.hub.SendTo(connID, msg); err != nil {
		h.logger.Debug().Err(err).Str("conn_id", connID.String()).Str("type", msgType).Msg("snapshot not delivered")
	}
}

func (h *WSHandler) handleMessage(ctx context.Context, conn *ws.Connection, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeStartSession:
		var req ws.StartSessionPayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil || req.Subject == "" {
			return h.sendError(conn, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid start_session payload")
		}
		if _, err := h.ctrl.Start(ctx, req.Subject); err != nil {
			return h.sendControllerError(conn, msg.RequestID, err)
		}
		return nil

	case ws.TypeSelectAnswer:
		var req ws.SelectAnswerPayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return h.sendError(conn, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid select_answer payload")
		}
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			return h.sendError(conn, msg.RequestID, httperrors.ErrCodeInvalidID, "Invalid session id")
		}
		if _, err := h.ctrl.Select(id, req.Question, req.Option); err != nil {
			return h.sendControllerError(conn, msg.RequestID, err)
		}
		return nil

	case ws.TypeFinish:
		var req ws.SessionRefPayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return h.sendError(conn, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid finish payload")
		}
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			return h.sendError(conn, msg.RequestID, httperrors.ErrCodeInvalidID, "Invalid session id")
		}
		if _, err := h.ctrl.Finish(id); err != nil {
			return h.sendControllerError(conn, msg.RequestID, err)
		}
		return nil

	case ws.TypeDiscard:
		h.ctrl.Discard()
		return nil

	case ws.TypeToggleTheme:
		h.ctrl.ToggleTheme()
		return nil

	default:
		return h.sendError(conn, msg.RequestID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *WSHandler) sendControllerError(conn *ws.Connection, requestID string, err error) error {
	_, code, message := classifyError(err)
	return h.sendError(conn, requestID, code, message)
}

func (h *WSHandler) sendError(conn *ws.Connection, requestID, code, message string) error {
	msg, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return err
	}
	msg.RequestID = requestID
	return conn.Send(msg)
}
