package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LLM_TIMEOUT", "LLM_TEMPERATURE", "CHAT_READ_ONLY", "SCHEDULER_ENABLED", "SCHEDULER_INTERVAL"} {
		t.Setenv(key, "")
	}
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "gsk-test")

	cfg := Load()

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, ProviderGroq, cfg.LLM.Provider)
	assert.Equal(t, "gsk-test", cfg.LLM.APIKey)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-6)
	assert.True(t, cfg.Chat.ReadOnly)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("CHAT_READ_ONLY", "off")
	t.Setenv("LLM_TIMEOUT", "12")
	t.Setenv("SCHEDULER_INTERVAL", "15m")
	t.Setenv("CHAT_RATE_BURST", "not-a-number")
	t.Setenv("LOG_LEVEL", " DEBUG ")

	cfg := Load()

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.LLM.APIKey)
	assert.False(t, cfg.Chat.ReadOnly)
	assert.Equal(t, 12*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, 5, cfg.RateLimit.ChatBurst)
	assert.Equal(t, "debug", cfg.Telemetry.LogLevel)
}

func TestEnvironmentPredicates(t *testing.T) {
	assert.True(t, Config{Environment: "Production"}.IsProduction())
	assert.False(t, Config{Environment: "Production"}.IsDevelopment())
	assert.True(t, Config{Environment: "local"}.IsDevelopment())
	assert.False(t, Config{Environment: "staging"}.IsDevelopment())
}

func TestHasDatabase(t *testing.T) {
	assert.False(t, Config{DBType: "postgres"}.HasDatabase())
	assert.True(t, Config{DBType: "postgres", DBHost: "db"}.HasDatabase())
	assert.True(t, Config{DBURL: "postgres://x"}.HasDatabase())
	assert.True(t, Config{DBType: "sqlite"}.HasDatabase())
}
