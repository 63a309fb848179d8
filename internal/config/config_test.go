package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
		API:      APIConfig{URL: "https://api.example.com/v1", Key: "k"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want longpoll default", cfg.Telegram.RunMode)
	}
	if cfg.API.TimeoutSeconds != 10 {
		t.Fatalf("api timeout = %d, want 10", cfg.API.TimeoutSeconds)
	}
	if cfg.API.Currency != "NGN" {
		t.Fatalf("currency = %q, want NGN", cfg.API.Currency)
	}
	if cfg.Session.Backend != SessionBackendMemory {
		t.Fatalf("session backend = %q, want memory default", cfg.Session.Backend)
	}
	if cfg.SessionTTL() != 15*time.Minute {
		t.Fatalf("session ttl = %s, want 15m", cfg.SessionTTL())
	}
}

func TestNormalizeRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, "telegram token"},
		{"missing api url", func(c *Config) { c.API.URL = "" }, "api.url"},
		{"missing api key", func(c *Config) { c.API.Key = "" }, "api.key"},
		{"bad run mode", func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" }, "run_mode"},
		{"bad session backend", func(c *Config) { c.Session.Backend = "sqlite" }, "session.backend"},
		{"webhook without url", func(c *Config) { c.Telegram.RunMode = RunModeWebhook }, "webhook.url"},
		{"redis without addr", func(c *Config) { c.Session.Backend = SessionBackendRedis }, "redis.addr"},
	}
	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(cfg)
		err := Normalize(cfg)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: err = %v, want it to mention %q", tc.name, err, tc.want)
		}
	}
}

func TestNormalizeRunModeAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
}
