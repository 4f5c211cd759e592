package shell

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/subject-quiz/internal/quiz"
	ws "github.com/gokatarajesh/subject-quiz/pkg/http/ws"
)

// EventKind names a state change pushed to clients. Values double as WebSocket message types.
type EventKind string

const (
	EventSessionState     EventKind = ws.TypeSessionState
	EventTick             EventKind = ws.TypeTick
	EventSessionFinished  EventKind = ws.TypeSessionFinished
	EventSessionDiscarded EventKind = ws.TypeSessionDiscarded
	EventThemeChanged     EventKind = ws.TypeThemeChanged
)

// Event is one state change. View is set for session events, Theme for theme events.
type Event struct {
	Kind      EventKind
	SessionID uuid.UUID
	View      *quiz.View
	Theme     Theme
}

// Listener receives controller events. Publish may be called from the timer goroutine and must not block.
type Listener interface {
	Publish(Event)
}

type nopListener struct{}

func (nopListener) Publish(Event) {}

// HubListener forwards controller events to every WebSocket client.
type HubListener struct {
	hub    *ws.Hub
	logger zerolog.Logger
}

func NewHubListener(hub *ws.Hub, logger zerolog.Logger) *HubListener {
	return &HubListener{
		hub:    hub,
		logger: logger.With().Str("component", "shell_events").Logger(),
	}
}

func (l *HubListener) Publish(evt Event) {
	msg, err := EventMessage(evt)
	if err != nil {
		l.logger.Warn().Err(err).Str("kind", string(evt.Kind)).Msg("failed to encode event")
		return
	}
	if err := l.hub.BroadcastAll(msg); err != nil {
		l.logger.Debug().Err(err).Str("kind", string(evt.Kind)).Msg("event not delivered to every client")
	}
}

// EventMessage converts an event into its wire form.
func EventMessage(evt Event) (ws.Message, error) {
	switch evt.Kind {
	case EventTick:
		payload := ws.TickPayload{SessionID: evt.SessionID.String()}
		if evt.View != nil {
			payload.RemainingSeconds = evt.View.RemainingSeconds
			payload.Remaining = evt.View.Remaining
			payload.Elapsed = evt.View.Elapsed
		}
		return ws.NewMessage(ws.TypeTick, payload)
	case EventSessionDiscarded:
		return ws.NewMessage(ws.TypeSessionDiscarded, ws.SessionRefPayload{SessionID: evt.SessionID.String()})
	case EventThemeChanged:
		return ws.NewMessage(ws.TypeThemeChanged, ws.ThemePayload{Theme: string(evt.Theme)})
	default:
		return ws.NewMessage(string(evt.Kind), evt.View)
	}
}
