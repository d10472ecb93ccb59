package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates a test from variables set in the outer environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "APP_ENV",
		"API_TOKEN", "PRACTICUM_TOKEN", "PRACTICUM_ENDPOINT", "REQUEST_TIMEOUT",
		"BOT_TOKEN", "TELEGRAM_TOKEN", "CHAT_ID", "TELEGRAM_CHAT_ID", "TELEGRAM_BASE_URL",
		"RETRY_PERIOD", "JOURNAL_CAPACITY", "DATABASE_URL", "REDIS_URL",
		"LOG_LEVEL", "LOG_FORMAT", "HTTP_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("API_TOKEN", "practicum-token")
	t.Setenv("BOT_TOKEN", "123:ABC")
	t.Setenv("CHAT_ID", "42")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "practicum-token", cfg.Practicum.Token)
	assert.Equal(t, "123:ABC", cfg.Telegram.Token)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "https://practicum.yandex.ru/api/user_api/homework_statuses/", cfg.Practicum.Endpoint)
	assert.Equal(t, 600*time.Second, cfg.Poller.RetryPeriod)
	assert.Equal(t, 100, cfg.Poller.JournalCapacity)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Empty(t, cfg.Observability.HTTPAddr)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Redis.URL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_LegacyVariableNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRACTICUM_TOKEN", "legacy-practicum")
	t.Setenv("TELEGRAM_TOKEN", "legacy-bot")
	t.Setenv("TELEGRAM_CHAT_ID", "-100500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "legacy-practicum", cfg.Practicum.Token)
	assert.Equal(t, "legacy-bot", cfg.Telegram.Token)
	assert.Equal(t, "-100500", cfg.Telegram.ChatID)
}

func TestLoad_PrimaryNamesWin(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("PRACTICUM_TOKEN", "legacy-practicum")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "practicum-token", cfg.Practicum.Token)
}

func TestLoad_MissingRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:ABC")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, ErrMissingRequired))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"CHAT_ID is required", "API_TOKEN is required"}, verr.Problems)
}

func TestValidate_InvalidPeriodIsNotMissing(t *testing.T) {
	cfg := Default()
	cfg.Practicum.Token = "p"
	cfg.Telegram.Token = "t"
	cfg.Telegram.ChatID = "1"
	cfg.Poller.RetryPeriod = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMissingRequired))
	assert.Contains(t, err.Error(), "RETRY_PERIOD must be positive")
}

func TestLoad_Durations(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("RETRY_PERIOD", "120")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Poller.RetryPeriod)
	assert.Equal(t, 5*time.Second, cfg.Practicum.RequestTimeout)
}

func TestLoad_FileOverlay(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
retry_period: 5m
journal:
  capacity: 10
lease:
  redis_url: redis://localhost:6379/0
log:
  level: info
http_addr: ":9090"
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5*time.Minute, cfg.Poller.RetryPeriod)
	assert.Equal(t, 10, cfg.Poller.JournalCapacity)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	// Environment overrides the file.
	assert.Equal(t, ":8080", cfg.Observability.HTTPAddr)
}

func TestLoad_FileMissing(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseFile(t *testing.T) {
	f, err := ParseFile(nil)
	require.NoError(t, err)
	assert.Empty(t, f.Endpoint)

	_, err = ParseFile([]byte("journal: [unclosed"))
	require.Error(t, err)
}
