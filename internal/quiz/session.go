package quiz

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/subject-quiz/internal/quiz/scoring"
)

// DefaultTotalSeconds is the countdown a session starts with when none is configured.
const DefaultTotalSeconds = 3000

// Status of a session. Active -> Finished is the only transition.
type Status string

const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// FinishReason records what ended a session.
type FinishReason string

const (
	ReasonSubmitted FinishReason = "submitted"
	ReasonTimeout   FinishReason = "timeout"
)

// TickOutcome reports what a Tick did.
type TickOutcome int

const (
	// TickIgnored means the session was already finished.
	TickIgnored TickOutcome = iota
	// TickCounted means one second was taken off the clock.
	TickCounted
	// TickExpired means the clock reached zero and the session finished on this tick.
	TickExpired
)

var (
	ErrQuestionOutOfRange = errors.New("question index out of range")
	ErrOptionOutOfRange   = errors.New("option index out of range")
)

// Session is one timed attempt over a fixed list of prepared questions.
// All methods are safe for concurrent use; calls are serialized internally.
type Session struct {
	id           uuid.UUID
	subject      string
	questions    []PreparedQuestion
	totalSeconds int
	startedAt    time.Time

	mu         sync.Mutex
	answers    map[int]int
	remaining  int
	status     Status
	reason     FinishReason
	result     scoring.Result
	finishedAt time.Time
	done       chan struct{}
}

// NewSession starts an active session. totalSeconds <= 0 uses DefaultTotalSeconds.
func NewSession(subject string, questions []PreparedQuestion, totalSeconds int) *Session {
	if totalSeconds <= 0 {
		totalSeconds = DefaultTotalSeconds
	}
	if questions == nil {
		questions = []PreparedQuestion{}
	}
	return &Session{
		id:           uuid.New(),
		subject:      subject,
		questions:    questions,
		totalSeconds: totalSeconds,
		startedAt:    time.Now(),
		answers:      make(map[int]int),
		remaining:    totalSeconds,
		status:       StatusActive,
		done:         make(chan struct{}),
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Subject() string { return s.subject }

func (s *Session) TotalSeconds() int { return s.totalSeconds }

func (s *Session) QuestionCount() int { return len(s.questions) }

// Done is closed when the session finishes, by submission or timeout.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Finished() bool {
	return s.Status() == StatusFinished
}

func (s *Session) RemainingSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// ElapsedSeconds is derived from the countdown, never stored.
func (s *Session) ElapsedSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSeconds - s.remaining
}

// Answers returns a copy of the recorded selections.
func (s *Session) Answers() map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyAnswers(s.answers)
}

// Result returns the frozen score; ok is false while the session is active.
func (s *Session) Result() (scoring.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.status == StatusFinished
}

// SelectAnswer records or overwrites the selection for a question and reports whether it was recorded.
// Out-of-range indices are rejected without touching state. On a finished session it is a silent no-op.
func (s *Session) SelectAnswer(questionIndex, optionIndex int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusFinished {
		return false, nil
	}
	if questionIndex < 0 || questionIndex >= len(s.questions) {
		return false, fmt.Errorf("%w: %d of %d", ErrQuestionOutOfRange, questionIndex, len(s.questions))
	}
	if n := len(s.questions[questionIndex].Options); optionIndex < 0 || optionIndex >= n {
		return false, fmt.Errorf("%w: %d of %d", ErrOptionOutOfRange, optionIndex, n)
	}
	s.answers[questionIndex] = optionIndex
	return true, nil
}

// Tick takes one second off the clock. Reaching zero finishes the session in the same step,
// so a negative remaining time is never observable.
func (s *Session) Tick() TickOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusFinished {
		return TickIgnored
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.finishLocked(ReasonTimeout)
		return TickExpired
	}
	return TickCounted
}

// Finish scores the session and locks it. Later calls return the same result.
func (s *Session) Finish() scoring.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusFinished {
		s.finishLocked(ReasonSubmitted)
	}
	return s.result
}

func (s *Session) finishLocked(reason FinishReason) {
	s.result = scoring.Grade(s.keysLocked(), s.answers)
	s.status = StatusFinished
	s.reason = reason
	s.finishedAt = time.Now()
	close(s.done)
}

func (s *Session) keysLocked() []int {
	keys := make([]int, len(s.questions))
	for i, q := range s.questions {
		keys[i] = q.AnswerIndex
	}
	return keys
}

func copyAnswers(in map[int]int) map[int]int {
	out := make(map[int]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
