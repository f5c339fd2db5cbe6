// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs, loaded once at startup and
// threaded through constructors.
type Config struct {
	Target   TargetConfig   `mapstructure:"target"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Render   RenderConfig   `mapstructure:"render"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// TargetConfig describes the storefront page and the product being watched.
type TargetConfig struct {
	URL               string `mapstructure:"url"`
	Model             string `mapstructure:"model"`
	Variant           string `mapstructure:"variant"`
	WindowBytes       int    `mapstructure:"window_bytes"`
	FragmentClassHint string `mapstructure:"fragment_class_hint"`
	CurrencyPrefix    string `mapstructure:"currency_prefix"`
	Locale            string `mapstructure:"locale"`
}

// HTTPConfig configures the outbound storefront request.
type HTTPConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	AcceptLanguage string `mapstructure:"accept_language"`
	AcceptEncoding string `mapstructure:"accept_encoding"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// RenderConfig configures the headless rendering fallback.
type RenderConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	MinHTMLBytes   int      `mapstructure:"min_html_bytes"`
	Keywords       []string `mapstructure:"keywords"`
	SelectorMust   []string `mapstructure:"selector_must"`
}

// NotifyConfig holds the optional notification channels. A channel with an
// empty primary field is treated as unconfigured.
type NotifyConfig struct {
	Webhook WebhookConfig `mapstructure:"webhook"`
	Email   EmailConfig   `mapstructure:"email"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
}

// WebhookConfig points at a chat-style webhook endpoint.
type WebhookConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// EmailConfig configures SMTP delivery. APIKey is used as the SMTP password;
// providers like SendGrid expect the literal username "apikey".
type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	APIKey   string `mapstructure:"api_key"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

// PubSubConfig identifies a GCP Pub/Sub topic for machine-readable events.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// SnapshotConfig controls best-effort archiving of the fetched page body.
type SnapshotConfig struct {
	Provider string `mapstructure:"provider"`
	Dir      string `mapstructure:"dir"`
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

// ServerConfig controls the serve-mode HTTP listener.
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Auth AuthConfig `mapstructure:"auth"`
}

// AuthConfig defines API authentication toggles for serve mode.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REFURBWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("target.url", "https://www.apple.com/jp/shop/refurbished/mac/macbook-air")
	v.SetDefault("target.model", "MacBook Air")
	v.SetDefault("target.variant", "M4")
	v.SetDefault("target.window_bytes", 80)
	v.SetDefault("target.fragment_class_hint", "refurb")
	v.SetDefault("target.currency_prefix", "¥")
	v.SetDefault("target.locale", "Asia/Tokyo")
	v.SetDefault("http.user_agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	v.SetDefault("http.accept_language", "ja-JP,ja;q=0.9,en-US;q=0.8")
	v.SetDefault("http.timeout_seconds", 20)
	v.SetDefault("render.enabled", false)
	v.SetDefault("render.timeout_seconds", 25)
	v.SetDefault("render.min_html_bytes", 2048)
	v.SetDefault("render.keywords", []string{"loading"})
	v.SetDefault("notify.webhook.timeout_seconds", 10)
	v.SetDefault("notify.email.port", 587)
	v.SetDefault("notify.email.username", "apikey")
	v.SetDefault("snapshot.provider", "none")
	v.SetDefault("snapshot.prefix", "pages")
	v.SetDefault("snapshot.max_bytes", 8<<20)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Target.URL == "" {
		return fmt.Errorf("target.url must be set")
	}
	if c.Target.Model == "" || c.Target.Variant == "" {
		return fmt.Errorf("target.model and target.variant must be set")
	}
	if c.Target.WindowBytes <= 0 {
		return fmt.Errorf("target.window_bytes must be > 0")
	}
	if _, err := c.Target.Location(); err != nil {
		return fmt.Errorf("target.locale: %w", err)
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Render.Enabled && c.Render.TimeoutSeconds <= 0 {
		return fmt.Errorf("render.timeout_seconds must be > 0 when rendering is enabled")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.Auth.Enabled && c.Server.Auth.APIKey == "" {
		return fmt.Errorf("server.auth.api_key must be set when auth is enabled")
	}
	switch c.Snapshot.Provider {
	case "", "none":
	case "fs":
		if c.Snapshot.Dir == "" {
			return fmt.Errorf("snapshot.dir must be set when snapshot.provider is 'fs'")
		}
	case "gcs":
		if c.Snapshot.Bucket == "" {
			return fmt.Errorf("snapshot.bucket must be set when snapshot.provider is 'gcs'")
		}
	default:
		return fmt.Errorf("unknown snapshot provider: %s", c.Snapshot.Provider)
	}
	if c.Notify.Email.To != "" {
		if c.Notify.Email.Host == "" || c.Notify.Email.From == "" {
			return fmt.Errorf("notify.email.host and notify.email.from must be set when notify.email.to is set")
		}
		if c.Notify.Email.APIKey == "" {
			return fmt.Errorf("notify.email.api_key must be set when notify.email.to is set")
		}
	}
	if c.Notify.PubSub.TopicID != "" && c.Notify.PubSub.ProjectID == "" {
		return fmt.Errorf("notify.pubsub.project_id must be set when notify.pubsub.topic_id is set")
	}
	return nil
}

// Timeout converts the HTTP timeout into a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout converts the render timeout into a duration.
func (c RenderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout converts the webhook timeout into a duration.
func (c WebhookConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Location resolves the target locale into a *time.Location.
func (c TargetConfig) Location() (*time.Location, error) {
	if c.Locale == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Locale)
}
