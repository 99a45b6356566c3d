// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type AvitoConfig struct {
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	UserID       string        `yaml:"user_id"` // account owner id
	BaseURL      string        `yaml:"base_url"`
	ProfileURL   string        `yaml:"profile_url"`   // sender link target in notifications
	AccountLabel string        `yaml:"account_label"` // shown in every notification
	Timeout      time.Duration `yaml:"timeout"`
}

type TelegramConfig struct {
	Token    string  `yaml:"token"`
	ChatID   int64   `yaml:"chat_id"` // destination channel
	Workers  int     `yaml:"workers"` // update handlers
	AdminIDs []int64 `yaml:"admin_ids"`
	Language string  `yaml:"language"` // ru | en
}

type RelayConfig struct {
	SeenCapacity        int           `yaml:"seen_capacity"`
	MaxDeliveryAttempts int           `yaml:"max_delivery_attempts"`
	AuthAlertLimit      int           `yaml:"auth_alert_limit"`
	InitialLookback     time.Duration `yaml:"initial_lookback"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type RedisConfig struct {
	URL        string        `yaml:"url"` // empty disables rate limiting
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	RateLimit  int           `yaml:"rate_limit"` // commands per window per chat
	RateWindow time.Duration `yaml:"rate_window"`
}

type Config struct {
	Avito    AvitoConfig    `yaml:"avito"`
	Telegram TelegramConfig `yaml:"telegram"`
	Relay    RelayConfig    `yaml:"relay"`
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Redis    RedisConfig    `yaml:"redis"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the optional YAML file at path, loads .env if present and
// applies environment overrides. A missing file is not an error when the
// environment carries the required settings.
func LoadConfig(path string, dev bool) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("AVITO_CLIENT_ID", &cfg.Avito.ClientID)
	str("AVITO_CLIENT_SECRET", &cfg.Avito.ClientSecret)
	str("AVITO_USER_ID", &cfg.Avito.UserID)
	str("AVITO_BASE_URL", &cfg.Avito.BaseURL)
	str("AVITO_PROFILE_URL", &cfg.Avito.ProfileURL)
	str("AVITO_ACCOUNT_LABEL", &cfg.Avito.AccountLabel)
	str("TELEGRAM_TOKEN", &cfg.Telegram.Token)
	str("BOT_LANGUAGE", &cfg.Telegram.Language)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("REDIS_URL", &cfg.Redis.URL)
	str("REDIS_PASSWORD", &cfg.Redis.Password)

	if v, ok := lookup("TELEGRAM_CHAT_ID"); ok && strings.TrimSpace(v) != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Telegram.ChatID = id
	}
	if v, ok := lookup("HTTP_PORT"); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		cfg.HTTP.Port = port
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Avito.BaseURL == "" {
		cfg.Avito.BaseURL = "https://api.avito.ru"
	}
	cfg.Avito.BaseURL = strings.TrimRight(cfg.Avito.BaseURL, "/")
	if cfg.Avito.ProfileURL == "" {
		cfg.Avito.ProfileURL = "https://www.avito.ru/brands/i121955125"
	}
	if cfg.Avito.AccountLabel == "" {
		cfg.Avito.AccountLabel = "Мой ноутбук"
	}
	if cfg.Avito.Timeout <= 0 {
		cfg.Avito.Timeout = 30 * time.Second
	}
	if cfg.Telegram.Workers <= 0 {
		cfg.Telegram.Workers = 4
	}
	if cfg.Telegram.Language == "" {
		cfg.Telegram.Language = "ru"
	}
	if cfg.Relay.SeenCapacity <= 0 {
		cfg.Relay.SeenCapacity = 10000
	}
	if cfg.Relay.MaxDeliveryAttempts <= 0 {
		cfg.Relay.MaxDeliveryAttempts = 3
	}
	if cfg.Relay.AuthAlertLimit <= 0 {
		cfg.Relay.AuthAlertLimit = 3
	}
	if cfg.Relay.InitialLookback <= 0 {
		cfg.Relay.InitialLookback = time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Redis.RateLimit <= 0 {
		cfg.Redis.RateLimit = 20
	}
	if cfg.Redis.RateWindow <= 0 {
		cfg.Redis.RateWindow = time.Minute
	}
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var missing []string
	if c.Avito.ClientID == "" {
		missing = append(missing, "AVITO_CLIENT_ID")
	}
	if c.Avito.ClientSecret == "" {
		missing = append(missing, "AVITO_CLIENT_SECRET")
	}
	if c.Avito.UserID == "" {
		missing = append(missing, "AVITO_USER_ID")
	}
	if c.Telegram.Token == "" {
		missing = append(missing, "TELEGRAM_TOKEN")
	}
	if c.Telegram.ChatID == 0 {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}
