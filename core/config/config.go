package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings that are common for all bots.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// StoreBackendFile persists the registry and credential as flat JSON files.
	StoreBackendFile = "file"
	// StoreBackendPostgres persists the registry and credential in Postgres.
	StoreBackendPostgres = "postgres"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// StoreConfig selects the persistence backend for the destination
// registry and the access credential.
type StoreConfig struct {
	Backend      string `yaml:"backend" envconfig:"STORE_BACKEND"`
	GroupsFile   string `yaml:"groups_file" envconfig:"STORE_GROUPS_FILE"`
	PasswordFile string `yaml:"password_file" envconfig:"STORE_PASSWORD_FILE"`
}

// DatabaseConfig holds Postgres settings used by the postgres store backend.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// MediaConfig points the lookup bot at its external read-only APIs.
type MediaConfig struct {
	LookupBaseURL     string `yaml:"lookup_base_url" envconfig:"MEDIA_LOOKUP_BASE_URL"`
	TranslateEndpoint string `yaml:"translate_endpoint" envconfig:"MEDIA_TRANSLATE_ENDPOINT"`
	SearchLimit       int    `yaml:"search_limit" envconfig:"MEDIA_SEARCH_LIMIT"`
}

// SessionConfig tunes conversation session housekeeping.
// An IdleTTLSeconds of 0 keeps abandoned conversations until restart.
type SessionConfig struct {
	IdleTTLSeconds int `yaml:"idle_ttl_seconds" envconfig:"SESSION_IDLE_TTL_SECONDS"`
}

// Config aggregates the configuration shared by both bots.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Store     StoreConfig     `yaml:"store"`
	Database  DatabaseConfig  `yaml:"database"`
	Media     MediaConfig     `yaml:"media"`
	Session   SessionConfig   `yaml:"session"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	backend := strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if backend == "" {
		backend = StoreBackendFile
	}
	switch backend {
	case StoreBackendFile:
		if strings.TrimSpace(cfg.Store.GroupsFile) == "" {
			cfg.Store.GroupsFile = "groups.json"
		}
		if strings.TrimSpace(cfg.Store.PasswordFile) == "" {
			cfg.Store.PasswordFile = "password.json"
		}
	case StoreBackendPostgres:
		if strings.TrimSpace(cfg.Database.Host) == "" {
			return fmt.Errorf("database.host is required when store.backend is 'postgres'")
		}
		if strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.name is required when store.backend is 'postgres'")
		}
	default:
		return fmt.Errorf("invalid store.backend %q; allowed: file, postgres", cfg.Store.Backend)
	}
	cfg.Store.Backend = backend

	if strings.TrimSpace(cfg.Media.LookupBaseURL) == "" {
		cfg.Media.LookupBaseURL = "https://api.jikan.moe/v4"
	}
	if strings.TrimSpace(cfg.Media.TranslateEndpoint) == "" {
		cfg.Media.TranslateEndpoint = "https://translate.googleapis.com/translate_a/single"
	}
	if cfg.Media.SearchLimit <= 0 {
		cfg.Media.SearchLimit = 10
	}

	if cfg.Session.IdleTTLSeconds < 0 {
		return fmt.Errorf("session.idle_ttl_seconds must be >= 0")
	}

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}
	return nil
}
