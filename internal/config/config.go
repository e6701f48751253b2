package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultPath is the configuration file read when CONFIG_PATH is not set.
const DefaultPath = "configs/config.yaml"

// Notifier modes.
const (
	ModeLogOnly     = "log_only"
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// Config is the main struct that holds all configuration for the application.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Watcher   WatcherConfig   `mapstructure:"watcher"`
	Source    SourceConfig    `mapstructure:"source"`
	Notifiers NotifiersConfig `mapstructure:"notifiers"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// LoggerConfig holds logging-specific settings.
type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

// HTTPConfig holds settings for the status server. An empty port disables it.
type HTTPConfig struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`
}

// WatcherConfig controls the polling loop.
type WatcherConfig struct {
	// PollInterval is the time between the end of one cycle and the start of the next.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// Tick is how often the loop wakes up to check for shutdown.
	Tick         time.Duration `mapstructure:"tick"`
	Parallel     bool          `mapstructure:"parallel"`
	RunOnStart   bool          `mapstructure:"run_on_start"`
	Stores       []StoreConfig `mapstructure:"stores"`
}

// StoreConfig maps a store code to its display name.
type StoreConfig struct {
	Code string `mapstructure:"code"`
	Name string `mapstructure:"name"`
}

// SourceConfig describes the upstream availability API and the request
// headers sent with every query.
type SourceConfig struct {
	BaseURL      string            `mapstructure:"base_url"`
	BranchPrefix string            `mapstructure:"branch_prefix"`
	Service      string            `mapstructure:"service"`
	UserAgent    string            `mapstructure:"user_agent"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	Headers      map[string]string `mapstructure:"headers"`
}

// NotifiersConfig holds configurations for all notification transports.
type NotifiersConfig struct {
	// Mode can be "log_only", "development" or "production".
	// Outside of "production" every message goes to the LogNotifier.
	Mode       string         `mapstructure:"mode"`
	RatePerSec float64        `mapstructure:"rate_per_sec"`
	Discord    DiscordConfig  `mapstructure:"discord"`
	Telegram   TelegramConfig `mapstructure:"telegram"`
	Slack      SlackConfig    `mapstructure:"slack"`
	Email      EmailConfig    `mapstructure:"email"`
	RabbitMQ   RabbitMQConfig `mapstructure:"rabbitmq"`
}

// DiscordConfig holds settings for the Discord notifier.
type DiscordConfig struct {
	BotToken  string `mapstructure:"bot_token"`
	ChannelID string `mapstructure:"channel_id"`
}

// TelegramConfig holds settings for the Telegram notifier.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// SlackConfig holds settings for the Slack notifier.
type SlackConfig struct {
	BotToken  string `mapstructure:"bot_token"`
	ChannelID string `mapstructure:"channel_id"`
}

// EmailConfig holds SMTP settings for the email notifier.
type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

// RabbitMQConfig holds settings for publishing messages to a broker.
type RabbitMQConfig struct {
	DSN      string `mapstructure:"dsn"`
	Exchange string `mapstructure:"exchange"`
}

// RedisConfig holds the Redis connection used for the status store.
// An empty Addr keeps the status in memory.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ConfigError reports a missing or invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// NewConfig loads the configuration from CONFIG_PATH (or DefaultPath) and validates it.
func NewConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load parses the YAML file at path and environment variables into a Config.
// A missing file is not an error: defaults and environment still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("http.port", ":8080")
	v.SetDefault("http.gin_mode", "release")

	v.SetDefault("watcher.poll_interval", 60*time.Second)
	v.SetDefault("watcher.tick", time.Second)
	v.SetDefault("watcher.parallel", false)
	v.SetDefault("watcher.run_on_start", false)
	v.SetDefault("watcher.stores", []map[string]any{
		{"code": "0885", "name": "Bonn city center"},
		{"code": "0103", "name": "Bonn Kölnstraße"},
	})

	v.SetDefault("source.base_url", "https://termine.fielmann.de")
	v.SetDefault("source.branch_prefix", "001")
	v.SetDefault("source.service", "CL_CF")
	v.SetDefault("source.user_agent", "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0")
	v.SetDefault("source.timeout", 15*time.Second)
	v.SetDefault("source.headers", map[string]any{
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.5",
		"Accept-Encoding": "gzip, deflate, br, zstd",
		"DNT":             "1",
		"Connection":      "keep-alive",
		"Referer":         "https://termine.fielmann.de/find-branch?service=CL_CF",
		"Sec-Fetch-Dest":  "empty",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Site":  "same-origin",
		"Sec-GPC":         "1",
	})

	// Every key that may come from the environment needs a default,
	// otherwise AutomaticEnv never sees it during Unmarshal.
	v.SetDefault("notifiers.mode", ModeLogOnly)
	v.SetDefault("notifiers.rate_per_sec", 1.0)
	v.SetDefault("notifiers.discord.bot_token", "")
	v.SetDefault("notifiers.discord.channel_id", "")
	v.SetDefault("notifiers.telegram.bot_token", "")
	v.SetDefault("notifiers.telegram.chat_id", 0)
	v.SetDefault("notifiers.slack.bot_token", "")
	v.SetDefault("notifiers.slack.channel_id", "")
	v.SetDefault("notifiers.email.host", "")
	v.SetDefault("notifiers.email.port", 587)
	v.SetDefault("notifiers.email.username", "")
	v.SetDefault("notifiers.email.password", "")
	v.SetDefault("notifiers.email.from", "")
	v.SetDefault("notifiers.email.to", "")
	v.SetDefault("notifiers.rabbitmq.dsn", "")
	v.SetDefault("notifiers.rabbitmq.exchange", "availability.exchange")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)
}

// Validate checks the values the watcher cannot run without.
func (c *Config) Validate() error {
	w := c.Watcher
	if w.PollInterval <= 0 {
		return &ConfigError{Field: "watcher.poll_interval", Reason: "must be positive"}
	}
	if w.Tick <= 0 {
		return &ConfigError{Field: "watcher.tick", Reason: "must be positive"}
	}
	if w.Tick > w.PollInterval {
		return &ConfigError{Field: "watcher.tick", Reason: "must not exceed watcher.poll_interval"}
	}
	if len(w.Stores) == 0 {
		return &ConfigError{Field: "watcher.stores", Reason: "at least one store is required"}
	}
	seen := make(map[string]struct{}, len(w.Stores))
	for i, s := range w.Stores {
		code := strings.TrimSpace(s.Code)
		if code == "" {
			return &ConfigError{Field: fmt.Sprintf("watcher.stores[%d].code", i), Reason: "is empty"}
		}
		if _, dup := seen[code]; dup {
			return &ConfigError{Field: fmt.Sprintf("watcher.stores[%d].code", i), Reason: fmt.Sprintf("duplicate store %q", code)}
		}
		seen[code] = struct{}{}
	}

	u, err := url.Parse(c.Source.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ConfigError{Field: "source.base_url", Reason: fmt.Sprintf("invalid url %q", c.Source.BaseURL)}
	}
	if c.Source.BranchPrefix == "" {
		return &ConfigError{Field: "source.branch_prefix", Reason: "is empty"}
	}
	if c.Source.Service == "" {
		return &ConfigError{Field: "source.service", Reason: "is empty"}
	}
	if c.Source.Timeout < 0 {
		return &ConfigError{Field: "source.timeout", Reason: "must not be negative"}
	}

	return c.Notifiers.validate()
}

func (n NotifiersConfig) validate() error {
	switch n.Mode {
	case ModeLogOnly, ModeDevelopment:
		return nil
	case ModeProduction:
	default:
		return &ConfigError{Field: "notifiers.mode", Reason: fmt.Sprintf("unknown mode %q", n.Mode)}
	}

	if n.RatePerSec < 0 {
		return &ConfigError{Field: "notifiers.rate_per_sec", Reason: "must not be negative"}
	}
	if n.Discord.BotToken != "" && n.Discord.ChannelID == "" {
		return &ConfigError{Field: "notifiers.discord.channel_id", Reason: "required when bot_token is set"}
	}
	if n.Telegram.BotToken != "" && n.Telegram.ChatID == 0 {
		return &ConfigError{Field: "notifiers.telegram.chat_id", Reason: "required when bot_token is set"}
	}
	if n.Slack.BotToken != "" && n.Slack.ChannelID == "" {
		return &ConfigError{Field: "notifiers.slack.channel_id", Reason: "required when bot_token is set"}
	}
	if n.Email.Host != "" && (n.Email.From == "" || n.Email.To == "") {
		return &ConfigError{Field: "notifiers.email", Reason: "from and to are required when host is set"}
	}
	if !n.anyTransport() {
		return &ConfigError{Field: "notifiers", Reason: "production mode needs at least one configured transport"}
	}
	return nil
}

func (n NotifiersConfig) anyTransport() bool {
	return n.Discord.BotToken != "" ||
		n.Telegram.BotToken != "" ||
		n.Slack.BotToken != "" ||
		n.Email.Host != "" ||
		n.RabbitMQ.DSN != ""
}
