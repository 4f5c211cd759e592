package quiz

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/subject-quiz/internal/quiz/scoring"
)

// QuestionView is a question as shown to the player. The key is withheld until the session ends.
type QuestionView struct {
	Index   int      `json:"index"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// View is an immutable snapshot of a session for rendering.
type View struct {
	ID               uuid.UUID         `json:"id"`
	Subject          string            `json:"subject"`
	Status           Status            `json:"status"`
	Reason           FinishReason      `json:"reason,omitempty"`
	Questions        []QuestionView    `json:"questions"`
	Answers          map[int]int       `json:"answers"`
	TotalSeconds     int               `json:"total_seconds"`
	RemainingSeconds int               `json:"remaining_seconds"`
	ElapsedSeconds   int               `json:"elapsed_seconds"`
	Remaining        string            `json:"remaining"`
	Elapsed          string            `json:"elapsed"`
	StartedAt        time.Time         `json:"started_at"`
	FinishedAt       *time.Time        `json:"finished_at,omitempty"`
	Result           *scoring.Result   `json:"result,omitempty"`
	Review           []scoring.Outcome `json:"review,omitempty"`
}

// View snapshots the session. Clock strings are derived here on every call.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions := make([]QuestionView, len(s.questions))
	for i, q := range s.questions {
		questions[i] = QuestionView{
			Index:   i,
			Text:    q.Text,
			Options: append([]string(nil), q.Options...),
		}
	}

	elapsed := s.totalSeconds - s.remaining
	v := View{
		ID:               s.id,
		Subject:          s.subject,
		Status:           s.status,
		Reason:           s.reason,
		Questions:        questions,
		Answers:          copyAnswers(s.answers),
		TotalSeconds:     s.totalSeconds,
		RemainingSeconds: s.remaining,
		ElapsedSeconds:   elapsed,
		Remaining:        FormatClock(s.remaining),
		Elapsed:          FormatClock(elapsed),
		StartedAt:        s.startedAt,
	}
	if s.status == StatusFinished {
		res := s.result
		finishedAt := s.finishedAt
		v.Result = &res
		v.FinishedAt = &finishedAt
		v.Review = scoring.Review(s.keysLocked(), s.answers)
	}
	return v
}

// FormatClock renders seconds as M:SS. Negative input renders as 0:00.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
