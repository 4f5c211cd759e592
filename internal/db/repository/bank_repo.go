package repository

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a subject row does not exist.
var ErrNotFound = errors.New("not found")

// SubjectRow mirrors quiz_subjects joined with its question count.
type SubjectRow struct {
	Slug          string `db:"slug"`
	Title         string `db:"title"`
	QuestionCount int32  `db:"question_count"`
}

// QuestionRow mirrors quiz_questions.
type QuestionRow struct {
	SubjectSlug string   `db:"subject_slug"`
	Position    int32    `db:"position"`
	Prompt      string   `db:"prompt"`
	Options     []string `db:"options"`
	AnswerIndex int32    `db:"answer_index"`
}

type bankStore interface {
	ListSubjects(ctx context.Context) ([]SubjectRow, error)
	GetSubject(ctx context.Context, slug string) (SubjectRow, error)
	ListQuestions(ctx context.Context, slug string) ([]QuestionRow, error)
	ReplaceSubject(ctx context.Context, subject SubjectRow, questions []QuestionRow) error
}

// BankRepository wraps the SQL store for curated question bank access.
type BankRepository struct {
	store bankStore
}

func NewBankRepository(store bankStore) *BankRepository {
	return &BankRepository{store: store}
}

// Subjects lists every subject with its question count.
func (r *BankRepository) Subjects(ctx context.Context) ([]SubjectRow, error) {
	return r.store.ListSubjects(ctx)
}

// Questions returns a subject's questions ordered by position. ErrNotFound when the subject is unknown;
// a known subject without questions yields an empty slice.
func (r *BankRepository) Questions(ctx context.Context, slug string) ([]QuestionRow, error) {
	if _, err := r.store.GetSubject(ctx, slug); err != nil {
		return nil, err
	}
	rows, err := r.store.ListQuestions(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return rows, nil
}

// Replace swaps a subject's full question set, renumbering positions from 1.
func (r *BankRepository) Replace(ctx context.Context, slug, title string, questions []QuestionRow) error {
	if slug == "" {
		return fmt.Errorf("subject slug is required")
	}
	numbered := make([]QuestionRow, len(questions))
	for i, q := range questions {
		q.SubjectSlug = slug
		q.Position = int32(i + 1)
		numbered[i] = q
	}
	return r.store.ReplaceSubject(ctx, SubjectRow{Slug: slug, Title: title}, numbered)
}
