package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	listSubjectsSQL = `
SELECT s.slug, s.title, COUNT(q.question_id)::int AS question_count
FROM quiz_subjects s
LEFT JOIN quiz_questions q ON q.subject_slug = s.slug
GROUP BY s.slug, s.title
ORDER BY s.slug`

	getSubjectSQL = `
SELECT s.slug, s.title, COUNT(q.question_id)::int AS question_count
FROM quiz_subjects s
LEFT JOIN quiz_questions q ON q.subject_slug = s.slug
WHERE s.slug = $1
GROUP BY s.slug, s.title`

	listQuestionsSQL = `
SELECT subject_slug, position, prompt, options, answer_index
FROM quiz_questions
WHERE subject_slug = $1
ORDER BY position`

	upsertSubjectSQL = `
INSERT INTO quiz_subjects (slug, title) VALUES ($1, $2)
ON CONFLICT (slug) DO UPDATE SET title = EXCLUDED.title, updated_at = now()`

	deleteQuestionsSQL = `DELETE FROM quiz_questions WHERE subject_slug = $1`

	insertQuestionSQL = `
INSERT INTO quiz_questions (subject_slug, position, prompt, options, answer_index)
VALUES ($1, $2, $3, $4, $5)`
)

// PGStore implements the bank store on a pgx pool.
type PGStore struct {
	pool *pgxpool.Pool
}

var _ bankStore = (*PGStore)(nil)

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) ListSubjects(ctx context.Context) ([]SubjectRow, error) {
	rows, err := s.pool.Query(ctx, listSubjectsSQL)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[SubjectRow])
}

func (s *PGStore) GetSubject(ctx context.Context, slug string) (SubjectRow, error) {
	rows, err := s.pool.Query(ctx, getSubjectSQL, slug)
	if err != nil {
		return SubjectRow{}, fmt.Errorf("query subject: %w", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[SubjectRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return SubjectRow{}, fmt.Errorf("subject %s: %w", slug, ErrNotFound)
	}
	return row, err
}

func (s *PGStore) ListQuestions(ctx context.Context, slug string) ([]QuestionRow, error) {
	rows, err := s.pool.Query(ctx, listQuestionsSQL, slug)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[QuestionRow])
}

func (s *PGStore) ReplaceSubject(ctx context.Context, subject SubjectRow, questions []QuestionRow) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertSubjectSQL, subject.Slug, subject.Title); err != nil {
			return fmt.Errorf("upsert subject: %w", err)
		}
		if _, err := tx.Exec(ctx, deleteQuestionsSQL, subject.Slug); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}

		batch := &pgx.Batch{}
		for _, q := range questions {
			batch.Queue(insertQuestionSQL, q.SubjectSlug, q.Position, q.Prompt, q.Options, q.AnswerIndex)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		return nil
	})
}
