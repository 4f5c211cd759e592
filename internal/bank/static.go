package bank

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// StaticBank is a subject bundled with its questions.
type StaticBank struct {
	Subject   Subject
	Questions []Template
}

// Static serves banks held in memory. Callers get copies, never the backing slices.
type Static struct {
	mu    sync.RWMutex
	banks map[string]StaticBank
}

var _ Provider = (*Static)(nil)

// NewStatic validates and indexes the given banks by subject ID.
func NewStatic(banks ...StaticBank) (*Static, error) {
	s := &Static{banks: make(map[string]StaticBank, len(banks))}
	for _, b := range banks {
		if err := s.add(b); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Static) add(b StaticBank) error {
	if b.Subject.ID == "" {
		return fmt.Errorf("subject id is required")
	}
	if _, exists := s.banks[b.Subject.ID]; exists {
		return fmt.Errorf("duplicate subject %q", b.Subject.ID)
	}
	if err := ValidateAll(b.Questions); err != nil {
		return fmt.Errorf("subject %q: %w", b.Subject.ID, err)
	}
	if b.Subject.Title == "" {
		b.Subject.Title = b.Subject.ID
	}
	b.Subject.QuestionCount = len(b.Questions)
	b.Questions = cloneTemplates(b.Questions)
	s.banks[b.Subject.ID] = b
	return nil
}

// Subjects lists subjects ordered by ID.
func (s *Static) Subjects(_ context.Context) ([]Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Subject, 0, len(s.banks))
	for _, b := range s.banks {
		out = append(out, b.Subject)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Bank returns a copy of the subject's questions in bank order.
func (s *Static) Bank(_ context.Context, subjectID string) ([]Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.banks[subjectID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSubjectNotFound, subjectID)
	}
	return cloneTemplates(b.Questions), nil
}
