package shell

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/subject-quiz/internal/bank"
	"github.com/gokatarajesh/subject-quiz/internal/logging"
	"github.com/gokatarajesh/subject-quiz/internal/quiz"
	httperrors "github.com/gokatarajesh/subject-quiz/pkg/http/errors"
)

// HTTPHandlers exposes the controller as a JSON API.
type HTTPHandlers struct {
	ctrl   *Controller
	logger zerolog.Logger
}

func NewHTTPHandlers(ctrl *Controller, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		ctrl:   ctrl,
		logger: logger.With().Str("component", "shell_http").Logger(),
	}
}

// StartSessionRequest is the body of POST /v1/session.
type StartSessionRequest struct {
	Subject string `json:"subject"`
}

// SelectAnswerRequest is the body of POST /v1/session/{id}/answers.
type SelectAnswerRequest struct {
	Question *int `json:"question"`
	Option   *int `json:"option"`
}

// Register mounts the shell routes on mux.
func (h *HTTPHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/subjects", h.ListSubjects)
	mux.HandleFunc("POST /v1/session", h.StartSession)
	mux.HandleFunc("GET /v1/session", h.GetSession)
	mux.HandleFunc("DELETE /v1/session", h.DiscardSession)
	mux.HandleFunc("POST /v1/session/{id}/answers", h.SelectAnswer)
	mux.HandleFunc("POST /v1/session/{id}/finish", h.FinishSession)
	mux.HandleFunc("GET /v1/theme", h.GetTheme)
	mux.HandleFunc("POST /v1/theme/toggle", h.ToggleTheme)
}

// ListSubjects handles GET /v1/subjects
func (h *HTTPHandlers) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.ctrl.Subjects(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list subjects")
		httperrors.RespondError(w, http.StatusServiceUnavailable, httperrors.ErrCodeBankUnavailable, "Question banks are unavailable")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"subjects": subjects})
}

// StartSession handles POST /v1/session
func (h *HTTPHandlers) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "subject is required", "subject")
		return
	}

	view, err := h.ctrl.Start(r.Context(), req.Subject)
	if err != nil {
		h.respondControllerError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, view)
}

// GetSession handles GET /v1/session
func (h *HTTPHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.ctrl.View()
	if err != nil {
		h.respondControllerError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// DiscardSession handles DELETE /v1/session
func (h *HTTPHandlers) DiscardSession(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Discard()
	w.WriteHeader(http.StatusNoContent)
}

// SelectAnswer handles POST /v1/session/{id}/answers
func (h *HTTPHandlers) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req SelectAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Question == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "question is required", "question")
		return
	}
	if req.Option == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "option is required", "option")
		return
	}

	view, err := h.ctrl.Select(id, *req.Question, *req.Option)
	if err != nil {
		h.respondControllerError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// FinishSession handles POST /v1/session/{id}/finish
func (h *HTTPHandlers) FinishSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	view, err := h.ctrl.Finish(id)
	if err != nil {
		h.respondControllerError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// GetTheme handles GET /v1/theme
func (h *HTTPHandlers) GetTheme(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"theme": string(h.ctrl.Theme())})
}

// ToggleTheme handles POST /v1/theme/toggle
func (h *HTTPHandlers) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"theme": string(h.ctrl.ToggleTheme())})
}

func (h *HTTPHandlers) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidID, "Invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *HTTPHandlers) respondControllerError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classifyError(err)
	if status >= http.StatusInternalServerError {
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).Msg("request failed")
	}
	httperrors.RespondError(w, status, code, message)
}

// classifyError maps controller errors onto the HTTP error envelope.
func classifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, bank.ErrSubjectNotFound):
		return http.StatusNotFound, httperrors.ErrCodeSubjectNotFound, "Unknown subject"
	case errors.Is(err, ErrNoSession):
		return http.StatusNotFound, httperrors.ErrCodeNoActiveSession, "No active session"
	case errors.Is(err, ErrSessionMismatch):
		return http.StatusConflict, httperrors.ErrCodeSessionMismatch, "Session was replaced or discarded"
	case errors.Is(err, quiz.ErrQuestionOutOfRange), errors.Is(err, quiz.ErrOptionOutOfRange):
		return http.StatusUnprocessableEntity, httperrors.ErrCodeInvalidAnswer, err.Error()
	case errors.Is(err, bank.ErrInvalidTemplate):
		return http.StatusServiceUnavailable, httperrors.ErrCodeBankUnavailable, "Question bank is invalid"
	default:
		return http.StatusInternalServerError, httperrors.ErrCodeInternalError, "Internal error"
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn().Err(err).Msg("failed to encode response")
	}
}
