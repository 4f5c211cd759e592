package ws

import "encoding/json"

// MessageType constants for the session WebSocket protocol.
const (
	// Client -> Server
	TypeStartSession = "start_session"
	TypeSelectAnswer = "select_answer"
	TypeFinish       = "finish"
	TypeDiscard      = "discard"
	TypeToggleTheme  = "toggle_theme"

	// Server -> Client
	TypeSessionState     = "session_state"
	TypeTick             = "tick"
	TypeSessionFinished  = "session_finished"
	TypeSessionDiscarded = "session_discarded"
	TypeThemeChanged     = "theme_changed"
	TypeError            = "error"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a typed message. A nil payload leaves Payload empty.
func NewMessage(msgType string, payload any) (Message, error) {
	msg := Message{Type: msgType}
	if payload == nil {
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Payload = raw
	return msg, nil
}

// Client Messages (incoming)

type StartSessionPayload struct {
	Subject string `json:"subject"`
}

type SelectAnswerPayload struct {
	SessionID string `json:"session_id"`
	Question  int    `json:"question"`
	Option    int    `json:"option"`
}

type SessionRefPayload struct {
	SessionID string `json:"session_id"`
}

// Server Messages (outgoing)

type TickPayload struct {
	SessionID        string `json:"session_id"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Remaining        string `json:"remaining"`
	Elapsed          string `json:"elapsed"`
}

type ThemePayload struct {
	Theme string `json:"theme"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
