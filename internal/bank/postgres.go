package bank

import (
	"context"
	"errors"
	"fmt"

	"github.com/gokatarajesh/subject-quiz/internal/db/repository"
)

type bankRepository interface {
	Subjects(ctx context.Context) ([]repository.SubjectRow, error)
	Questions(ctx context.Context, slug string) ([]repository.QuestionRow, error)
}

// PostgresProvider serves banks curated in Postgres.
type PostgresProvider struct {
	repo bankRepository
}

var _ Provider = (*PostgresProvider)(nil)

func NewPostgresProvider(repo bankRepository) *PostgresProvider {
	return &PostgresProvider{repo: repo}
}

func (p *PostgresProvider) Subjects(ctx context.Context) ([]Subject, error) {
	rows, err := p.repo.Subjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	out := make([]Subject, len(rows))
	for i, row := range rows {
		out[i] = Subject{ID: row.Slug, Title: row.Title, QuestionCount: int(row.QuestionCount)}
	}
	return out, nil
}

// Bank converts stored rows to templates. Rows violating the bank contract fail the whole bank.
func (p *PostgresProvider) Bank(ctx context.Context, subjectID string) ([]Template, error) {
	rows, err := p.repo.Questions(ctx, subjectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSubjectNotFound, subjectID)
	}
	if err != nil {
		return nil, err
	}

	templates := make([]Template, len(rows))
	for i, row := range rows {
		templates[i] = Template{
			Text:        row.Prompt,
			Options:     row.Options,
			AnswerIndex: int(row.AnswerIndex),
		}
	}
	if err := ValidateAll(templates); err != nil {
		return nil, fmt.Errorf("subject %s: %w", subjectID, err)
	}
	return templates, nil
}

// ToRows converts templates for storage, in bank order.
func ToRows(templates []Template) []repository.QuestionRow {
	rows := make([]repository.QuestionRow, len(templates))
	for i, t := range templates {
		rows[i] = repository.QuestionRow{
			Prompt:      t.Text,
			Options:     append([]string(nil), t.Options...),
			AnswerIndex: int32(t.AnswerIndex),
		}
	}
	return rows
}
