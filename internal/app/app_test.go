package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/subject-quiz/internal/config"
)

func testConfig(t *testing.T) *config.App {
	t.Helper()
	dir := t.TempDir()
	bank := "title: Colours\nquestions:\n  - text: Sky?\n    options: [Blue, Green]\n    answer: 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "colours.yaml"), []byte(bank), 0o600))

	return &config.App{
		Name:                    "subject-quiz-test",
		Env:                     "test",
		LogLevel:                "error",
		HTTPAddr:                "127.0.0.1:0",
		GracefulShutdownTimeout: time.Second,
		DefaultTheme:            "light",
		Quiz: config.Quiz{
			TotalDuration: 30 * time.Second,
			QuestionLimit: 25,
			TickInterval:  time.Hour,
		},
		Bank: config.Bank{Source: config.BankSourceFile, Dir: dir},
	}
}

func TestNewWiresFileBanks(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer a.ctrl.Close()

	assert.Nil(t, a.pool)
	assert.Nil(t, a.redis)

	rec := httptest.NewRecorder()
	a.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/subjects", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"colours"`)

	rec = httptest.NewRecorder()
	a.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/session", strings.NewReader(`{"subject":"colours"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var view struct {
		TotalSeconds int `json:"total_seconds"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, 30, view.TotalSeconds)

	rec = httptest.NewRecorder()
	a.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `quiz_sessions_started_total{subject="colours"} 1`)
}

func TestNewFailsOnMissingBankDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Bank.Dir = filepath.Join(cfg.Bank.Dir, "missing")

	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "load banks")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
