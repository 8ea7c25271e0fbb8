package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, 60*time.Second, cfg.Ai.ModelTimeout)
	assert.Equal(t, "conversation.message.created", cfg.Jobs.MessageCreatedTopic)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 15*time.Second, cfg.Ai.ModelTimeout)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_TIMEOUT", time.Minute))
}
