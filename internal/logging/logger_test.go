package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "subject-quiz", "production", "warn")

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "app=subject-quiz")
}

func TestNewWithWriterUnknownLevel(t *testing.T) {
	logger := NewWithWriter(&bytes.Buffer{}, "a", "development", "chatty")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := IntoContext(context.Background(), logger)

	fromCtx := FromContext(ctx)
	fromCtx.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")

	nop := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, nop.GetLevel())
}
