package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	var cfg Config
	err := applyEnv(&cfg, envMap(map[string]string{
		"AVITO_CLIENT_ID":     "cid",
		"AVITO_CLIENT_SECRET": "secret",
		"AVITO_USER_ID":       "42",
		"TELEGRAM_TOKEN":      "tg",
		"TELEGRAM_CHAT_ID":    "-100123",
		"HTTP_PORT":           "9090",
	}))
	require.NoError(t, err)
	assert.Equal(t, "cid", cfg.Avito.ClientID)
	assert.Equal(t, "42", cfg.Avito.UserID)
	assert.Equal(t, int64(-100123), cfg.Telegram.ChatID)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvRejectsBadChatID(t *testing.T) {
	var cfg Config
	err := applyEnv(&cfg, envMap(map[string]string{"TELEGRAM_CHAT_ID": "channel"}))
	require.Error(t, err)
}

func TestValidateListsAllMissing(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"AVITO_CLIENT_ID", "AVITO_CLIENT_SECRET", "AVITO_USER_ID", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Avito: AvitoConfig{BaseURL: "http://localhost:1234/"}}
	applyDefaults(&cfg)

	assert.Equal(t, "http://localhost:1234", cfg.Avito.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Avito.Timeout)
	assert.Equal(t, 10000, cfg.Relay.SeenCapacity)
	assert.Equal(t, 3, cfg.Relay.AuthAlertLimit)
	assert.Equal(t, time.Hour, cfg.Relay.InitialLookback)
	assert.Equal(t, "ru", cfg.Telegram.Language)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestLoadConfigFromYAML(t *testing.T) {
	for _, key := range []string{"AVITO_CLIENT_ID", "AVITO_CLIENT_SECRET", "AVITO_USER_ID", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "HTTP_PORT"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
avito:
  client_id: cid
  client_secret: secret
  user_id: "7"
telegram:
  token: tg
  chat_id: 555
relay:
  seen_capacity: 50
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, "7", cfg.Avito.UserID)
	assert.Equal(t, int64(555), cfg.Telegram.ChatID)
	assert.Equal(t, 50, cfg.Relay.SeenCapacity)
	assert.True(t, cfg.Runtime.Dev)
}
