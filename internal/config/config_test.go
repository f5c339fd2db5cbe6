package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Target.URL != "https://www.apple.com/jp/shop/refurbished/mac/macbook-air" {
		t.Fatalf("unexpected default target url %q", cfg.Target.URL)
	}
	if cfg.Target.Model != "MacBook Air" || cfg.Target.Variant != "M4" {
		t.Fatalf("unexpected default product %q %q", cfg.Target.Model, cfg.Target.Variant)
	}
	if cfg.Target.WindowBytes != 80 {
		t.Fatalf("unexpected default window %d", cfg.Target.WindowBytes)
	}
	if cfg.Target.CurrencyPrefix != "¥" {
		t.Fatalf("unexpected default currency prefix %q", cfg.Target.CurrencyPrefix)
	}
	if cfg.HTTP.Timeout() != 20*time.Second {
		t.Fatalf("unexpected default http timeout %v", cfg.HTTP.Timeout())
	}
	if cfg.Snapshot.Provider != "none" {
		t.Fatalf("unexpected default snapshot provider %q", cfg.Snapshot.Provider)
	}
	loc, err := cfg.Target.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if loc.String() != "Asia/Tokyo" {
		t.Fatalf("unexpected default locale %v", loc)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
target:
  url: https://store.example.com/refurbished
  model: MacBook Pro
  variant: M5
  window_bytes: 120
notify:
  webhook:
    url: https://hooks.example.com/T000/B000
server:
  port: 9090
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Target.URL != "https://store.example.com/refurbished" {
		t.Fatalf("target url not overridden: %q", cfg.Target.URL)
	}
	if cfg.Target.Model != "MacBook Pro" || cfg.Target.Variant != "M5" {
		t.Fatalf("product not overridden: %q %q", cfg.Target.Model, cfg.Target.Variant)
	}
	if cfg.Target.WindowBytes != 120 {
		t.Fatalf("window not overridden: %d", cfg.Target.WindowBytes)
	}
	if cfg.Notify.Webhook.URL != "https://hooks.example.com/T000/B000" {
		t.Fatalf("webhook url not overridden: %q", cfg.Notify.Webhook.URL)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("server port not overridden: %d", cfg.Server.Port)
	}
	// Untouched sections keep their defaults.
	if cfg.Target.FragmentClassHint != "refurb" {
		t.Fatalf("default fragment hint lost: %q", cfg.Target.FragmentClassHint)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing target url",
			mutate:  func(c *Config) { c.Target.URL = "" },
			wantErr: "target.url",
		},
		{
			name:    "missing variant",
			mutate:  func(c *Config) { c.Target.Variant = "" },
			wantErr: "target.variant",
		},
		{
			name:    "non-positive window",
			mutate:  func(c *Config) { c.Target.WindowBytes = 0 },
			wantErr: "window_bytes",
		},
		{
			name:    "bad locale",
			mutate:  func(c *Config) { c.Target.Locale = "Mars/Olympus" },
			wantErr: "target.locale",
		},
		{
			name:    "fs snapshot without dir",
			mutate:  func(c *Config) { c.Snapshot.Provider = "fs" },
			wantErr: "snapshot.dir",
		},
		{
			name:    "unknown snapshot provider",
			mutate:  func(c *Config) { c.Snapshot.Provider = "tape" },
			wantErr: "unknown snapshot provider",
		},
		{
			name: "email without host",
			mutate: func(c *Config) {
				c.Notify.Email.To = "me@example.com"
				c.Notify.Email.APIKey = "k"
			},
			wantErr: "notify.email.host",
		},
		{
			name:    "pubsub topic without project",
			mutate:  func(c *Config) { c.Notify.PubSub.TopicID = "stock-events" },
			wantErr: "notify.pubsub.project_id",
		},
		{
			name:    "auth enabled without key",
			mutate:  func(c *Config) { c.Server.Auth.Enabled = true },
			wantErr: "server.auth.api_key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
