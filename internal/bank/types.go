package bank

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSubjectNotFound is returned when a provider has no bank for the subject.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrInvalidTemplate marks a question record that breaks the bank contract.
	ErrInvalidTemplate = errors.New("invalid question template")
)

// Template is one immutable multiple-choice question as supplied by a bank.
type Template struct {
	Text        string   `json:"text" yaml:"text"`
	Options     []string `json:"options" yaml:"options"`
	AnswerIndex int      `json:"answer" yaml:"answer"`
}

// Subject describes a selectable bank.
type Subject struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"question_count"`
}

// Provider supplies question banks per subject. Banks may be empty.
type Provider interface {
	Subjects(ctx context.Context) ([]Subject, error)
	Bank(ctx context.Context, subjectID string) ([]Template, error)
}

// Validate checks the bank contract: non-empty text, at least two options, answer in range.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Text) == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidTemplate)
	}
	if len(t.Options) < 2 {
		return fmt.Errorf("%w: %q has %d options, need at least 2", ErrInvalidTemplate, t.Text, len(t.Options))
	}
	if t.AnswerIndex < 0 || t.AnswerIndex >= len(t.Options) {
		return fmt.Errorf("%w: %q answer %d out of range [0,%d)", ErrInvalidTemplate, t.Text, t.AnswerIndex, len(t.Options))
	}
	return nil
}

// CorrectOption returns the text of the correct option.
func (t Template) CorrectOption() string {
	return t.Options[t.AnswerIndex]
}

// ValidateAll validates every template and reports the first failing position.
func ValidateAll(templates []Template) error {
	for i, t := range templates {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

func cloneTemplates(in []Template) []Template {
	out := make([]Template, len(in))
	for i, t := range in {
		out[i] = Template{
			Text:        t.Text,
			Options:     append([]string(nil), t.Options...),
			AnswerIndex: t.AnswerIndex,
		}
	}
	return out
}
