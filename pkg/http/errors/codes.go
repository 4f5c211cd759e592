package errors

// Error codes carried in the "error" field of every error response.
const (
	// Request validation
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"
	ErrCodeInvalidID      = "invalid_session_id"

	// Bank
	ErrCodeSubjectNotFound = "subject_not_found"
	ErrCodeBankUnavailable = "bank_unavailable"

	// Session
	ErrCodeNoActiveSession = "no_active_session"
	ErrCodeSessionMismatch = "session_mismatch"
	ErrCodeInvalidAnswer   = "invalid_answer"

	// WebSocket
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server
	ErrCodeInternalError = "internal_error"
)
