package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockBankStore struct {
	mock.Mock
}

func (m *mockBankStore) ListSubjects(ctx context.Context) ([]SubjectRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]SubjectRow), args.Error(1)
}

func (m *mockBankStore) GetSubject(ctx context.Context, slug string) (SubjectRow, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(SubjectRow), args.Error(1)
}

func (m *mockBankStore) ListQuestions(ctx context.Context, slug string) ([]QuestionRow, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).([]QuestionRow), args.Error(1)
}

func (m *mockBankStore) ReplaceSubject(ctx context.Context, subject SubjectRow, questions []QuestionRow) error {
	return m.Called(ctx, subject, questions).Error(0)
}

func TestBankRepository_Subjects(t *testing.T) {
	store := new(mockBankStore)
	repo := NewBankRepository(store)

	expect := []SubjectRow{{Slug: "history", Title: "History", QuestionCount: 3}}
	store.On("ListSubjects", mock.Anything).Return(expect, nil)

	got, err := repo.Subjects(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, expect, got)
	store.AssertExpectations(t)
}

func TestBankRepository_QuestionsUnknownSubject(t *testing.T) {
	store := new(mockBankStore)
	repo := NewBankRepository(store)

	store.On("GetSubject", mock.Anything, "missing").Return(SubjectRow{}, ErrNotFound)

	_, err := repo.Questions(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	store.AssertNotCalled(t, "ListQuestions", mock.Anything, mock.Anything)
}

func TestBankRepository_Questions(t *testing.T) {
	store := new(mockBankStore)
	repo := NewBankRepository(store)

	rows := []QuestionRow{
		{SubjectSlug: "math", Position: 1, Prompt: "2+2", Options: []string{"3", "4"}, AnswerIndex: 1},
	}
	store.On("GetSubject", mock.Anything, "math").Return(SubjectRow{Slug: "math"}, nil)
	store.On("ListQuestions", mock.Anything, "math").Return(rows, nil)

	got, err := repo.Questions(context.Background(), "math")
	assert.NoError(t, err)
	assert.Equal(t, rows, got)
	store.AssertExpectations(t)
}

func TestBankRepository_ReplaceRenumbers(t *testing.T) {
	store := new(mockBankStore)
	repo := NewBankRepository(store)

	in := []QuestionRow{
		{Prompt: "a", Options: []string{"x", "y"}, Position: 9},
		{Prompt: "b", Options: []string{"x", "y"}, AnswerIndex: 1},
	}
	want := []QuestionRow{
		{SubjectSlug: "s", Position: 1, Prompt: "a", Options: []string{"x", "y"}},
		{SubjectSlug: "s", Position: 2, Prompt: "b", Options: []string{"x", "y"}, AnswerIndex: 1},
	}
	store.On("ReplaceSubject", mock.Anything, SubjectRow{Slug: "s", Title: "S"}, want).Return(nil)

	assert.NoError(t, repo.Replace(context.Background(), "s", "S", in))
	store.AssertExpectations(t)

	assert.Error(t, repo.Replace(context.Background(), "", "S", in))
}
